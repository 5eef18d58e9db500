// Package router puts named routes and prefix groups over chi. Every route
// is recorded so it can be listed (route:list) or turned back into a URL.
package router

import (
	"fmt"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// Route describes one registered endpoint.
type Route struct {
	Method string
	Path   string
	Name   string
}

type Router struct {
	mux  chi.Router
	root *Group

	mu     sync.RWMutex
	table  []Route
	byName map[string]string
}

// Group registers routes under a shared prefix and middleware stack.
type Group struct {
	r      *Router
	prefix string
	stack  []Middleware
}

func New() *Router {
	r := &Router{mux: chi.NewRouter(), byName: map[string]string{}}
	r.root = &Group{r: r, prefix: "/"}
	return r
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use adds global middleware. It must be called before any route is added.
func (r *Router) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(m)
	}
}

func (r *Router) Group(prefix string, mw ...Middleware) *Group { return r.root.Group(prefix, mw...) }

func (r *Router) Get(p, name string, h http.HandlerFunc, mw ...Middleware) {
	r.root.Method(http.MethodGet, p, name, h, mw...)
}

func (r *Router) Post(p, name string, h http.HandlerFunc, mw ...Middleware) {
	r.root.Method(http.MethodPost, p, name, h, mw...)
}

func (r *Router) Patch(p, name string, h http.HandlerFunc, mw ...Middleware) {
	r.root.Method(http.MethodPatch, p, name, h, mw...)
}

func (r *Router) Delete(p, name string, h http.HandlerFunc, mw ...Middleware) {
	r.root.Method(http.MethodDelete, p, name, h, mw...)
}

// Handle mounts a plain http.Handler for GET, e.g. the metrics endpoint.
func (r *Router) Handle(p, name string, h http.Handler) {
	r.root.Method(http.MethodGet, p, name, h)
}

func (r *Router) NotFound(h http.HandlerFunc)         { r.mux.NotFound(h) }
func (r *Router) MethodNotAllowed(h http.HandlerFunc) { r.mux.MethodNotAllowed(h) }

// Routes returns every registered endpoint ordered by path, then method.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	out := make([]Route, len(r.table))
	copy(out, r.table)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path == out[j].Path {
			return out[i].Method < out[j].Method
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Path is the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

var placeholder = regexp.MustCompile(`\{([^}:]+)(:[^}]*)?\}`)

// URL fills the {placeholders} of the named route. Every placeholder must
// have a value.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	pattern, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("router: no route named %q", name)
	}
	var missing []string
	url := placeholder.ReplaceAllStringFunc(pattern, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		v, ok := params[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("router: route %q needs %s", name, strings.Join(missing, ", "))
	}
	return url, nil
}

func (r *Router) record(method, pattern, name string, h http.Handler) {
	r.mux.Method(method, pattern, h)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = append(r.table, Route{Method: method, Path: pattern, Name: name})
	if name != "" {
		r.byName[name] = pattern
	}
}

// Group nests prefix under g. The child runs g's middleware first.
func (g *Group) Group(prefix string, mw ...Middleware) *Group {
	return &Group{r: g.r, prefix: join(g.prefix, prefix), stack: g.with(mw)}
}

func (g *Group) Get(p, name string, h http.HandlerFunc, mw ...Middleware) {
	g.Method(http.MethodGet, p, name, h, mw...)
}

func (g *Group) Post(p, name string, h http.HandlerFunc, mw ...Middleware) {
	g.Method(http.MethodPost, p, name, h, mw...)
}

func (g *Group) Patch(p, name string, h http.HandlerFunc, mw ...Middleware) {
	g.Method(http.MethodPatch, p, name, h, mw...)
}

func (g *Group) Delete(p, name string, h http.HandlerFunc, mw ...Middleware) {
	g.Method(http.MethodDelete, p, name, h, mw...)
}

// Method registers h for method at p below the group prefix. Route-level
// middleware runs inside the group's.
func (g *Group) Method(method, p, name string, h http.Handler, mw ...Middleware) {
	stack := g.with(mw)
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	g.r.record(method, join(g.prefix, p), name, h)
}

func (g *Group) with(mw []Middleware) []Middleware {
	out := make([]Middleware, 0, len(g.stack)+len(mw))
	return append(append(out, g.stack...), mw...)
}

// join cleans and concatenates path segments; "/*" tails pass through.
func join(prefix, p string) string { return path.Join("/", prefix, p) }
