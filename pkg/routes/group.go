package routes

import (
	"net/http"

	"github.com/JaimeStill/soundslike/pkg/middleware"
)

// Group organizes routes under a common prefix. Middleware wraps every route
// in the group and its children, outermost first.
type Group struct {
	Prefix     string
	Routes     []Route
	Children   []Group
	Middleware []middleware.Func
}

// With returns a copy of g with mws placed outside the middleware g already declares.
func (g Group) With(mws ...middleware.Func) Group {
	g.Middleware = append(append([]middleware.Func{}, mws...), g.Middleware...)
	return g
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "", nil)
	}
}

func (g Group) register(mux *http.ServeMux, parent string, inherited []middleware.Func) {
	prefix := parent + g.Prefix
	stack := append(append([]middleware.Func{}, inherited...), g.Middleware...)

	for _, r := range g.Routes {
		mux.Handle(r.Method+" "+prefix+r.Pattern, middleware.Chain(r.Handler, stack...))
	}
	for _, child := range g.Children {
		child.register(mux, prefix, stack)
	}
}
