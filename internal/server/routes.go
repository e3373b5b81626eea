package server

import (
	"net/http"
	"sort"
	"strings"
)

type RouteDoc struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Summary string `json:"summary,omitempty"`
	Example string `json:"example,omitempty"`
}

// Router registers handlers on a ServeMux and keeps a route listing for
// GET /api/routes.
type Router struct {
	mux    *http.ServeMux
	routes []RouteDoc
}

func NewRouter(mux *http.ServeMux) *Router {
	return &Router{mux: mux}
}

// Handle takes a "METHOD /pattern" ServeMux pattern.
func (rt *Router) Handle(methodAndPattern, summary, example string, h http.HandlerFunc) {
	method, pattern, ok := strings.Cut(methodAndPattern, " ")
	if !ok {
		method, pattern = "", methodAndPattern
	}
	rt.routes = append(rt.routes, RouteDoc{Method: method, Pattern: pattern, Summary: summary, Example: example})
	rt.mux.HandleFunc(methodAndPattern, h)
}

// Routes lists registered routes by pattern, then method.
func (rt *Router) Routes() []RouteDoc {
	out := append([]RouteDoc{}, rt.routes...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}
