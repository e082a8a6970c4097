package observability

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterIsOptIn(t *testing.T) {
	mux := nethttp.NewServeMux()
	if Register(mux, Config{}) {
		t.Fatalf("expected nothing mounted when disabled")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/debug/pprof/", nil))
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("expected 404 when disabled, got %d", rec.Code)
	}

	mux = nethttp.NewServeMux()
	if !Register(mux, Config{EnablePprof: true}) {
		t.Fatalf("expected pprof to mount")
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/debug/pprof/", nil))
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("expected 200 from pprof index, got %d", rec.Code)
	}
}
