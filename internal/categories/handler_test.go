package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/charity-events/backend/internal/models"
)

type stubLister struct {
	list []models.Category
	err  error
}

func (s stubLister) List(ctx context.Context) ([]models.Category, error) {
	return s.list, s.err
}

func serve(l Lister) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/categories", NewHandler(l, nil).List)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	return w
}

func TestList(t *testing.T) {
	desc := "Clean-ups and tree planting"
	w := serve(stubLister{list: []models.Category{
		{ID: 1, CategoryName: "Environmental Protection", CategoryDesc: &desc},
		{ID: 2, CategoryName: "Fundraising"},
	}})
	if w.Code != http.StatusOK {
		t.Fatalf("got=%d", w.Code)
	}
	var got []models.Category
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].CategoryName != "Environmental Protection" || got[1].CategoryDesc != nil {
		t.Fatalf("unexpected categories: %+v", got)
	}
}

func TestListStoreError(t *testing.T) {
	w := serve(stubLister{err: errors.New("boom")})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got=%d", w.Code)
	}
}
