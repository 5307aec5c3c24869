package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecover_PanicBecomesEnvelope(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != genericServerError {
		t.Errorf("expected %q, got %q", genericServerError, env.Error)
	}
	if env.Name != "Internal Server Error" {
		t.Errorf("expected name Internal Server Error, got %q", env.Name)
	}
}

func TestRecover_CleanHandlerUntouched(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}
