package httpstatus_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"goji.io"

	"github.com/nasa-jpl/grblsim/grbl"
	"github.com/nasa-jpl/grblsim/httpstatus"
)

func newTestMux(c *grbl.Controller) *goji.Mux {
	mux := goji.NewMux()
	httpstatus.NewServer(c).RouteTable().Bind(mux)
	return mux
}

func TestAxisPosReturnsCurrentPosition(t *testing.T) {
	c := grbl.NewController("test")
	mux := newTestMux(c)

	req := httptest.NewRequest(http.MethodGet, "/axis/x/pos", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		F64 float64 `json:"f64"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.F64 != 0 {
		t.Errorf("f64 = %v, want 0", body.F64)
	}
}

func TestAxisPosRejectsUnknownAxis(t *testing.T) {
	c := grbl.NewController("test")
	mux := newTestMux(c)

	req := httptest.NewRequest(http.MethodGet, "/axis/q/pos", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStateReturnsSupervisorState(t *testing.T) {
	c := grbl.NewController("test")
	mux := newTestMux(c)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var body struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.State != string(grbl.Idle) {
		t.Errorf("state = %q, want %q", body.State, grbl.Idle)
	}
}

func TestSettingsReturnsFullTable(t *testing.T) {
	c := grbl.NewController("test")
	mux := newTestMux(c)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var body map[string]float64
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != c.Settings().Len() {
		t.Errorf("got %d settings, want %d", len(body), c.Settings().Len())
	}
	if body["$130"] != 300 {
		t.Errorf("$130 = %v, want 300", body["$130"])
	}
}

func TestEndpointsListsRoutes(t *testing.T) {
	c := grbl.NewController("test")
	mux := newTestMux(c)

	req := httptest.NewRequest(http.MethodGet, "/endpoints", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var routes []string
	if err := json.Unmarshal(w.Body.Bytes(), &routes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(routes) != 3 {
		t.Errorf("got %d routes, want 3: %v", len(routes), routes)
	}
}

