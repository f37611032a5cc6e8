package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type testRoutes struct{}

func (testRoutes) RegisterRoutes(e *echo.Echo) {
	e.GET("/boom", func(echo.Context) error { panic("boom") })
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
}

func serve(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestRecoverTurnsPanicsInto500(t *testing.T) {
	srv := NewServer(testRoutes{})
	if rec := serve(srv, "/boom"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRoutesServeThroughMiddleware(t *testing.T) {
	srv := NewServer(testRoutes{})
	if rec := serve(srv, "/ok"); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}
