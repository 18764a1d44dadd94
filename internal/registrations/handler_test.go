package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charity-events/backend/internal/models"
	"github.com/charity-events/backend/internal/realtime"
	"github.com/charity-events/backend/pkg/queue"
	"github.com/charity-events/backend/pkg/response"
)

// memStore mimics the table's unique (activity_id, user_email) key.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	activities map[int64]string
	rows       []models.Registration
	calls      int
	failWith   error
}

func newMemStore(activityIDs ...int64) *memStore {
	s := &memStore{activities: map[int64]string{}}
	for _, id := range activityIDs {
		s.activities[id] = "Activity"
	}
	return s
}

func (s *memStore) Create(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.activities[reg.ActivityID]; !ok {
		return ErrActivityNotFound
	}
	for _, r := range s.rows {
		if r.ActivityID == reg.ActivityID && r.UserEmail == reg.UserEmail {
			return ErrDuplicateRegistration
		}
	}
	s.nextID++
	reg.ID = s.nextID
	reg.RegistrationDate = time.Now()
	s.rows = append(s.rows, *reg)
	return nil
}

func (s *memStore) List(ctx context.Context, activityID *int64) ([]models.RegistrationWithActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	list := []models.RegistrationWithActivity{}
	for i := len(s.rows) - 1; i >= 0; i-- {
		r := s.rows[i]
		if activityID != nil && r.ActivityID != *activityID {
			continue
		}
		item := models.RegistrationWithActivity{Registration: r}
		if title, ok := s.activities[r.ActivityID]; ok {
			item.ActivityTitle = &title
		}
		list = append(list, item)
	}
	return list, nil
}

func (s *memStore) Delete(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return r.ActivityID, nil
		}
	}
	return 0, ErrNotFound
}

func (s *memStore) count(activityID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.ActivityID == activityID {
			n++
		}
	}
	return n
}

type fakeQueue struct {
	jobs []queue.RegistrationConfirmationPayload
	err  error
}

func (q *fakeQueue) EnqueueRegistrationConfirmation(ctx context.Context, p queue.RegistrationConfirmationPayload) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, p)
	return nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(ctx context.Context, activityID int64, event string, payload interface{}) {
	n.events = append(n.events, event)
}

func setupRouter(store Store, q Enqueuer, n Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(store, q, n, nil)
	r.GET("/api/registrations", h.List)
	r.POST("/api/registrations", h.Create)
	r.DELETE("/api/registrations/:id", h.Delete)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Body {
	t.Helper()
	var b response.Body
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return b
}

const annBody = `{"activity_id":1,"user_name":"Ann","user_email":"ann@example.org","phone":"0400 000 000","ticket_quantity":2}`

func TestCreateRegistration(t *testing.T) {
	store := newMemStore(1)
	q := &fakeQueue{}
	n := &recordingNotifier{}
	r := setupRouter(store, q, n)

	w := do(r, http.MethodPost, "/api/registrations", annBody)
	if w.Code != http.StatusOK {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
	if b := decodeBody(t, w); !b.Success || b.Message == "" {
		t.Fatalf("unexpected body: %+v", b)
	}
	if store.count(1) != 1 {
		t.Fatalf("expected 1 row, got %d", store.count(1))
	}
	if len(q.jobs) != 1 || q.jobs[0].UserEmail != "ann@example.org" || q.jobs[0].RegistrationID == 0 {
		t.Fatalf("unexpected jobs: %+v", q.jobs)
	}
	if len(n.events) != 1 || n.events[0] != realtime.EventRegistrationCreated {
		t.Fatalf("unexpected events: %v", n.events)
	}
}

func TestDuplicateRegistrationAddsOneRow(t *testing.T) {
	store := newMemStore(1)
	r := setupRouter(store, nil, nil)

	if w := do(r, http.MethodPost, "/api/registrations", annBody); w.Code != http.StatusOK {
		t.Fatalf("first: got=%d body=%s", w.Code, w.Body.String())
	}
	// Same person with different casing and spacing.
	dup := strings.Replace(annBody, "ann@example.org", "  ANN@Example.org ", 1)
	w := do(r, http.MethodPost, "/api/registrations", dup)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: got=%d body=%s", w.Code, w.Body.String())
	}
	if b := decodeBody(t, w); b.Success || !strings.Contains(b.Error, "already registered") {
		t.Fatalf("unexpected duplicate body: %+v", b)
	}
	if store.count(1) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", store.count(1))
	}
}

func TestSameEmailDifferentActivities(t *testing.T) {
	store := newMemStore(1, 2)
	r := setupRouter(store, nil, nil)
	do(r, http.MethodPost, "/api/registrations", annBody)
	other := strings.Replace(annBody, `"activity_id":1`, `"activity_id":2`, 1)
	if w := do(r, http.MethodPost, "/api/registrations", other); w.Code != http.StatusOK {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateValidationRunsBeforeStore(t *testing.T) {
	cases := map[string]string{
		"quantity omitted":  `{"activity_id":1,"user_name":"Ann","user_email":"ann@example.org"}`,
		"quantity zero":     `{"activity_id":1,"user_name":"Ann","user_email":"ann@example.org","ticket_quantity":0}`,
		"quantity negative": `{"activity_id":1,"user_name":"Ann","user_email":"ann@example.org","ticket_quantity":-2}`,
		"email blank":       `{"activity_id":1,"user_name":"Ann","user_email":"  ","ticket_quantity":1}`,
		"name missing":      `{"activity_id":1,"user_email":"ann@example.org","ticket_quantity":1}`,
		"activity missing":  `{"user_name":"Ann","user_email":"ann@example.org","ticket_quantity":1}`,
		"activity string":   `{"activity_id":"one","user_name":"Ann","user_email":"ann@example.org","ticket_quantity":1}`,
		"empty body":        ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMemStore(1)
			r := setupRouter(store, nil, nil)
			w := do(r, http.MethodPost, "/api/registrations", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
			}
			if store.calls != 0 {
				t.Fatalf("store accessed %d times", store.calls)
			}
		})
	}
}

func TestCreateWithoutPhone(t *testing.T) {
	store := newMemStore(1)
	r := setupRouter(store, nil, nil)
	body := `{"activity_id":1,"user_name":"Bo","user_email":"bo@example.org","ticket_quantity":1}`
	if w := do(r, http.MethodPost, "/api/registrations", body); w.Code != http.StatusOK {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
	if store.rows[0].Phone != nil {
		t.Fatalf("expected nil phone, got %q", *store.rows[0].Phone)
	}
}

func TestCreateUnknownActivity(t *testing.T) {
	r := setupRouter(newMemStore(), nil, nil)
	if w := do(r, http.MethodPost, "/api/registrations", annBody); w.Code != http.StatusNotFound {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestEnqueueFailureDoesNotFailRequest(t *testing.T) {
	store := newMemStore(1)
	r := setupRouter(store, &fakeQueue{err: errors.New("redis down")}, nil)
	if w := do(r, http.MethodPost, "/api/registrations", annBody); w.Code != http.StatusOK {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateStoreFailure(t *testing.T) {
	store := newMemStore(1)
	store.failWith = errors.New("pq: relation does not exist")
	r := setupRouter(store, nil, nil)
	w := do(r, http.MethodPost, "/api/registrations", annBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got=%d", w.Code)
	}
	if strings.Contains(w.Body.String(), "relation") {
		t.Fatalf("store error leaked: %s", w.Body.String())
	}
}

func TestDeleteRegistration(t *testing.T) {
	store := newMemStore(1)
	n := &recordingNotifier{}
	r := setupRouter(store, nil, n)
	do(r, http.MethodPost, "/api/registrations", annBody)

	if w := do(r, http.MethodDelete, "/api/registrations/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: got=%d", w.Code)
	}
	w := do(r, http.MethodDelete, "/api/registrations/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got=%d body=%s", w.Code, w.Body.String())
	}
	if b := decodeBody(t, w); !b.Success {
		t.Fatalf("unexpected body: %+v", b)
	}
	if store.count(1) != 0 {
		t.Fatal("registration not removed")
	}
	if w := do(r, http.MethodDelete, "/api/registrations/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got=%d", w.Code)
	}
	if got := n.events; len(got) != 2 || got[1] != realtime.EventRegistrationDeleted {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestListRegistrations(t *testing.T) {
	store := newMemStore(1, 2)
	r := setupRouter(store, nil, nil)
	do(r, http.MethodPost, "/api/registrations", annBody)
	do(r, http.MethodPost, "/api/registrations", strings.Replace(annBody, `"activity_id":1`, `"activity_id":2`, 1))

	w := do(r, http.MethodGet, "/api/registrations", "")
	var all []models.RegistrationWithActivity
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 || all[0].ActivityID != 2 {
		t.Fatalf("expected newest first across activities: %+v", all)
	}

	w = do(r, http.MethodGet, "/api/registrations?activity_id=1", "")
	var one []models.RegistrationWithActivity
	_ = json.Unmarshal(w.Body.Bytes(), &one)
	if len(one) != 1 || one[0].ActivityID != 1 || one[0].ActivityTitle == nil {
		t.Fatalf("unexpected filtered list: %+v", one)
	}

	if w := do(r, http.MethodGet, "/api/registrations?activity_id=x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter: got=%d", w.Code)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ann@Example.ORG "); got != "ann@example.org" {
		t.Fatalf("got %q", got)
	}
}
