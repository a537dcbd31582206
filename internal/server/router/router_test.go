package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mamadbah2/breakeven/internal/repository/memory"
	"github.com/mamadbah2/breakeven/internal/server/handlers"
	"github.com/mamadbah2/breakeven/internal/service/bep"
)

func TestRoutes(t *testing.T) {
	api := handlers.NewBepHandler(bep.NewService(memory.NewStore(), nil, nil), nil)
	r := New(api, nil, nil)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/restaurants/main/breakeven", http.StatusOK},
		{http.MethodGet, "/api/restaurants/main/config", http.StatusOK},
		{http.MethodGet, "/webhook", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
	}
}
