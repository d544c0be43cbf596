/*
 *    Copyright 2025 Jeff Galyan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

package talus

import (
	"net/http"
	"sync/atomic"
)

var nodeSeq atomic.Uint64

// Router is a node in the routing tree. Each node carries zero or more
// Filters that must all match for the node to be entered, zero or more
// hoops (middleware) that run if the node is entered, an optional goal
// Handler for requests that terminate at this node, and an ordered list of
// children. Matching is depth-first pre-order with declaration-order
// tie-breaking: the first child (in registration order) whose filters
// match wins, and nothing is nondeterministic about which route is chosen.
type Router struct {
	id       uint64
	filters  []Filter
	hoops    []Handler
	goal     Handler
	children []*Router
}

// NewRouter creates a root routing node with no filters, hoops, or goal.
func NewRouter() *Router {
	return &Router{id: nodeSeq.Add(1)}
}

// newChild allocates a child node, stably ordered after its siblings by
// registration order (append order on r.children already encodes this).
func (r *Router) newChild() *Router {
	child := &Router{id: nodeSeq.Add(1)}
	r.children = append(r.children, child)
	return child
}

// Filter appends match predicates to this node. A node with no filters of
// its own always matches, inheriting selectivity entirely from its path to
// the root.
func (r *Router) Filter(f ...Filter) *Router {
	r.filters = append(r.filters, f...)
	return r
}

// Hoop appends middleware that runs, root-to-leaf, for any request that
// passes through this node on the way to a goal.
func (r *Router) Hoop(h ...Handler) *Router {
	r.hoops = append(r.hoops, h...)
	return r
}

// Use is an alias for Hoop, matching the common "middleware as verb"
// vocabulary used elsewhere in the ecosystem.
func (r *Router) Use(h ...Handler) *Router { return r.Hoop(h...) }

// Goal sets the terminal handler for this node: a request whose path is
// fully consumed here is dispatched to goal.
func (r *Router) Goal(h Handler) *Router {
	r.goal = h
	return r
}

// Push registers a new child node with the given filters and returns it,
// for callers that want to build the tree directly rather than through the
// path-based convenience methods below.
func (r *Router) Push(f ...Filter) *Router {
	child := r.newChild()
	child.filters = f
	return child
}

// route is the shared implementation behind the per-method convenience
// methods: it creates a child filtered on path and method and assigns it
// the goal handler.
func (r *Router) route(method, pattern string, h Handler) *Router {
	child := r.newChild()
	child.filters = []Filter{NewPathFilter(pattern), NewMethodFilter(method)}
	child.goal = h
	return child
}

// GET registers a leaf matching GET requests to pattern.
func (r *Router) GET(pattern string, h Handler) *Router { return r.route(http.MethodGet, pattern, h) }

// POST registers a leaf matching POST requests to pattern.
func (r *Router) POST(pattern string, h Handler) *Router {
	return r.route(http.MethodPost, pattern, h)
}

// PUT registers a leaf matching PUT requests to pattern.
func (r *Router) PUT(pattern string, h Handler) *Router { return r.route(http.MethodPut, pattern, h) }

// DELETE registers a leaf matching DELETE requests to pattern.
func (r *Router) DELETE(pattern string, h Handler) *Router {
	return r.route(http.MethodDelete, pattern, h)
}

// PATCH registers a leaf matching PATCH requests to pattern.
func (r *Router) PATCH(pattern string, h Handler) *Router {
	return r.route(http.MethodPatch, pattern, h)
}

// OPTIONS registers a leaf matching OPTIONS requests to pattern.
func (r *Router) OPTIONS(pattern string, h Handler) *Router {
	return r.route(http.MethodOptions, pattern, h)
}

// HEAD registers a leaf matching HEAD requests to pattern.
func (r *Router) HEAD(pattern string, h Handler) *Router {
	return r.route(http.MethodHead, pattern, h)
}

// Group creates a child node scoped to the given path prefix, for attaching
// further routes and hoops underneath without repeating the prefix.
func (r *Router) Group(prefix string) *Router {
	child := r.newChild()
	child.filters = []Filter{NewPathFilter(prefix)}
	return child
}

// ServeFiles mounts an http.FileSystem under prefix, matching GET and HEAD
// for the rest-capture of everything beneath it.
func (r *Router) ServeFiles(prefix string, fs http.FileSystem) *Router {
	child := r.newChild()
	child.filters = []Filter{NewPathFilter(prefix + "/{**rest}"), NewMethodFilter(http.MethodGet, http.MethodHead)}
	fileServer := http.FileServer(fs)
	child.goal = HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		rest := req.Param("rest")
		raw := req.Raw().Clone(req.Context())
		raw.URL.Path = "/" + rest
		rw := &responseWriterAdapter{res: res}
		fileServer.ServeHTTP(rw, raw)
		res.Commit()
	})
	return child
}

// File serves a single file at an exact path.
func (r *Router) File(pattern, fpath string) *Router {
	child := r.newChild()
	child.filters = []Filter{NewPathFilter(pattern)}
	child.goal = HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		rw := &responseWriterAdapter{res: res}
		http.ServeFile(rw, req.Raw(), fpath)
		res.Commit()
	})
	return child
}

// detectResult is what detect() returns on a successful match: the chain of
// hoops collected root-to-leaf, the matched goal handler, and the captured
// path params.
type detectResult struct {
	hoops  []Handler
	goal   Handler
	params map[string]string
}

// detect walks the routing tree depth-first, pre-order, looking for a node
// whose path to the root fully matches the request and which carries a
// goal handler. Filters are evaluated transactionally against state: a
// node (or any of its descendants) that fails to match leaves state
// exactly as it found it, so a sibling can be tried next with no residue
// from the failed attempt. Ties between siblings are broken by declaration
// order: the first matching child wins, full stop.
func (r *Router) detect(req *Request, state *PathState) (detectResult, bool) {
	snap := state.snapshot()
	for _, f := range r.filters {
		if !f.Match(req, state) {
			state.restore(snap)
			return detectResult{}, false
		}
	}
	if r.goal != nil && state.Done() {
		return detectResult{hoops: append([]Handler{}, r.hoops...), goal: r.goal, params: state.Params()}, true
	}
	for _, child := range r.children {
		childSnap := state.snapshot()
		res, ok := child.detect(req, state)
		if ok {
			res.hoops = append(append([]Handler{}, r.hoops...), res.hoops...)
			return res, true
		}
		state.restore(childSnap)
	}
	state.restore(snap)
	return detectResult{}, false
}

// responseWriterAdapter lets stdlib handlers (http.FileServer,
// http.ServeFile) write into a buffered Response instead of a live
// http.ResponseWriter, so their output still passes through Service's
// single flush at the end of the chain.
type responseWriterAdapter struct {
	res        *Response
	statusCode int
	wrote      bool
}

func (a *responseWriterAdapter) Header() http.Header { return a.res.Header() }

func (a *responseWriterAdapter) Write(b []byte) (int, error) {
	if !a.wrote {
		a.WriteHeader(http.StatusOK)
	}
	a.res.body = append(a.res.body, b...)
	a.res.hasBody = true
	return len(b), nil
}

func (a *responseWriterAdapter) WriteHeader(code int) {
	if a.wrote {
		return
	}
	a.wrote = true
	a.statusCode = code
	a.res.status = code
	a.res.hasStatus = true
}
