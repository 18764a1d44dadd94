package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/activities"
	"github.com/charity-events/backend/internal/analytics"
	"github.com/charity-events/backend/internal/categories"
	"github.com/charity-events/backend/internal/exports"
	"github.com/charity-events/backend/internal/realtime"
	"github.com/charity-events/backend/internal/registrations"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func testRoutes(db Pinger) routes {
	log := zap.NewNop()
	return routes{
		activities:    activities.NewHandler(nil, nil, nil, log),
		categories:    categories.NewHandler(nil, log),
		registrations: registrations.NewHandler(nil, nil, nil, log),
		analytics:     analytics.NewHandler(nil, log),
		exports:       exports.NewHandler(nil, nil, nil, log),
		hub:           realtime.NewHub(log, nil),
		db:            db,
		corsOrigins:   "*",
	}
}

func TestHealthAndReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		path string
		db   Pinger
		want int
	}{
		{"health", "/health", stubPinger{}, http.StatusOK},
		{"ready", "/ready", stubPinger{}, http.StatusOK},
		{"not ready", "/ready", stubPinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
		{"unknown route", "/api/nope", stubPinger{}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(testRoutes(tc.db), zap.NewNop())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.want {
				t.Fatalf("got=%d want=%d body=%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestValidationRejectedBeforeStores(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// Stores are nil: reaching one would panic and gin.Recovery would answer 500.
	r := newRouter(testRoutes(stubPinger{}), zap.NewNop())
	for _, path := range []string{"/api/activities/abc", "/api/activities/0"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: got=%d", path, w.Code)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/activities/5/registrations/export", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("export without storage: got=%d", w.Code)
	}
}
