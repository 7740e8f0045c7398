// Package httpstatus exposes the controller's observable state — position,
// supervisor state, and settings table — over HTTP, for a visualizer or
// dashboard that would rather poll a socket than share the serial line. It
// never touches the GRBL wire protocol or the controller's mutable state
// directly outside of grbl.Controller.Snapshot/Settings, so it cannot desync
// from what a serial sender sees.
//
// The route table and payload-encoding pattern are grounded on
// generichttp.go's HumanPayload/RouteTable and generichttp/motion's
// interface-wrapping handlers, adapted from many-interfaces-over-one-device
// to the single read-only grbl.Controller this system has.
package httpstatus

import (
	"encoding/json"
	"fmt"
	"go/types"
	"net/http"
	"sort"

	"goji.io"
	"goji.io/pat"

	"github.com/nasa-jpl/grblsim/grbl"
)

// RouteTable maps goji patterns to handlers, mirroring generichttp.RouteTable.
type RouteTable map[*pat.Pattern]http.HandlerFunc

// Endpoints returns the bound URL patterns, sorted for stable output.
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for ptrn := range rt {
		routes = append(routes, ptrn.String())
	}
	sort.Strings(routes)
	return routes
}

// Bind registers every route in the table on mux, plus a trailing
// /endpoints route listing them, exactly as generichttp.RouteTable.Bind
// does.
func (rt RouteTable) Bind(mux *goji.Mux) {
	for ptrn, h := range rt {
		mux.HandleFunc(ptrn, h)
	}
	mux.HandleFunc(pat.Get("/endpoints"), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rt.Endpoints())
	})
}

// humanPayload is a trimmed HumanPayload: this server only ever emits
// floats, strings and state names, never takes input, so the Uint16/Byte/
// Buffer/Int arms of the teacher's original are not needed here.
type humanPayload struct {
	t     types.BasicKind
	float float64
	str   string
}

func (hp humanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	switch hp.t {
	case types.Float64:
		writeJSON(w, struct {
			F64 float64 `json:"f64"`
		}{hp.float})
	default:
		writeJSON(w, struct {
			Str string `json:"str"`
		}{hp.str})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("error encoding response to JSON, %q", err), http.StatusInternalServerError)
	}
}

// Server wraps a grbl.Controller with a read-only HTTP view of its
// snapshot and settings.
type Server struct {
	controller *grbl.Controller
}

// NewServer returns a Server reporting on c.
func NewServer(c *grbl.Controller) *Server {
	return &Server{controller: c}
}

// RouteTable builds the full set of observable-state routes: per-axis
// position, overall state, and the settings table.
func (s *Server) RouteTable() RouteTable {
	table := RouteTable{}
	table[pat.Get("/axis/:axis/pos")] = s.axisPos()
	table[pat.Get("/state")] = s.state()
	table[pat.Get("/settings")] = s.settings()
	return table
}

// axisPos returns the handler for GET /axis/:axis/pos, mirroring
// generichttp/motion's GetPos.
func (s *Server) axisPos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axisParam := pat.Param(r, "axis")
		if len(axisParam) != 1 {
			http.Error(w, "axis must be X, Y, or Z", http.StatusBadRequest)
			return
		}
		axis := axisParam[0] &^ 0x20 // fold to uppercase without importing strings
		switch axis {
		case 'X', 'Y', 'Z':
		default:
			http.Error(w, "axis must be X, Y, or Z", http.StatusBadRequest)
			return
		}
		snap := s.controller.Snapshot()
		hp := humanPayload{t: types.Float64, float: snap.MPos.Axis(axis)}
		hp.EncodeAndRespond(w, r)
	}
}

// state returns the handler for GET /state: the supervisor state name
// (Idle, Run, Hold, Home, Alarm, or Jog) plus the full snapshot for
// convenience.
func (s *Server) state() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.controller.Snapshot()
		writeJSON(w, struct {
			State string  `json:"state"`
			MX    float64 `json:"mpos_x"`
			MY    float64 `json:"mpos_y"`
			MZ    float64 `json:"mpos_z"`
			WX    float64 `json:"wco_x"`
			WY    float64 `json:"wco_y"`
			WZ    float64 `json:"wco_z"`
			Feed  float64 `json:"feed"`
			Port  string  `json:"port"`
		}{
			State: string(snap.State),
			MX:    snap.MPos.X, MY: snap.MPos.Y, MZ: snap.MPos.Z,
			WX: snap.WCO.X, WY: snap.WCO.Y, WZ: snap.WCO.Z,
			Feed: snap.Feed, Port: snap.PortName,
		})
	}
}

// settings returns the handler for GET /settings: every $n=value pair as a
// JSON object keyed "$n". encoding/json writes the keys sorted as strings,
// not in the id order of a "$$" dump over the serial line.
func (s *Server) settings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := map[string]float64{}
		s.controller.Settings().Each(func(id int, v float64) {
			out[fmt.Sprintf("$%d", id)] = v
		})
		writeJSON(w, out)
	}
}
