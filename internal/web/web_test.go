package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesPages(t *testing.T) {
	h := Handler()
	cases := map[string]string{
		"/":               `id="loginForm"`,
		"/dashboard.html": `id="ticketList"`,
		"/login.js":       `"/login"`,
		"/dashboard.js":   `/tickets/export`,
	}
	for path, marker := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), marker) {
			t.Fatalf("GET %s: body lacks %q", path, marker)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.html", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing file status = %d, want 404", rec.Code)
	}
}
