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
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Filter is a predicate over (Request, PathState) used to decide whether a
// router node matches. A node matches iff all of its filters accept,
// evaluated left to right; only a PathFilter is allowed to mutate the
// PathState, and it must do so transactionally (see pathstate.go).
type Filter interface {
	Match(req *Request, state *PathState) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(req *Request, state *PathState) bool

// Match implements Filter.
func (f FilterFunc) Match(req *Request, state *PathState) bool { return f(req, state) }

// pathFilter wraps a compiled path pattern.
type pathFilter struct {
	segments []pathSegment
	pattern  string
}

// NewPathFilter compiles pattern and returns a Filter that consumes path
// segments against it. It panics on a malformed pattern, mirroring the
// teacher's route-registration panics for programmer errors caught at
// startup rather than at request time.
func NewPathFilter(pattern string) Filter {
	segs, err := parsePathPattern(pattern)
	if err != nil {
		panic("talus: " + err.Error())
	}
	return &pathFilter{segments: segs, pattern: pattern}
}

// Match implements Filter. It is transactional: on any failure the
// PathState is restored to exactly what it was before Match was called.
func (pf *pathFilter) Match(_ *Request, state *PathState) bool {
	snap := state.snapshot()
	for _, seg := range pf.segments {
		if seg.kind == segRest {
			rest := state.segments[state.cursor:]
			state.params[seg.name] = strings.Join(rest, "/")
			state.cursor = len(state.segments)
			state.ended = true
			continue
		}
		if state.cursor >= len(state.segments) {
			state.restore(snap)
			return false
		}
		val, ok := seg.match(state.segments[state.cursor])
		if !ok {
			state.restore(snap)
			return false
		}
		if seg.name != "" {
			state.params[seg.name] = val
		}
		state.cursor++
	}
	return true
}

// MethodSet is a set of HTTP methods matched case-insensitively.
type MethodSet map[string]struct{}

// Methods builds a MethodSet from a list of HTTP methods.
func Methods(methods ...string) MethodSet {
	set := make(MethodSet, len(methods))
	for _, m := range methods {
		set[strings.ToUpper(m)] = struct{}{}
	}
	return set
}

type methodFilter struct{ set MethodSet }

// NewMethodFilter matches requests whose method is in methods.
func NewMethodFilter(methods ...string) Filter {
	return methodFilter{set: Methods(methods...)}
}

func (f methodFilter) Match(req *Request, _ *PathState) bool {
	_, ok := f.set[strings.ToUpper(req.Method())]
	return ok
}

// Scheme is a URI scheme matched by SchemeFilter.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

type schemeFilter struct {
	want        Scheme
	lackDefault bool
}

// NewSchemeFilter matches when the request URI scheme equals want. If the
// request URI carries no scheme, lackDefault is returned instead.
func NewSchemeFilter(want Scheme, lackDefault bool) Filter {
	return schemeFilter{want: want, lackDefault: lackDefault}
}

func (f schemeFilter) Match(req *Request, _ *PathState) bool {
	scheme := req.URIScheme()
	if scheme == "" {
		return f.lackDefault
	}
	return Scheme(strings.ToLower(scheme)) == f.want
}

type hostFilter struct {
	want        string
	lackDefault bool
}

// NewHostFilter compares the request authority host against want, falling
// back to the Host header when the URI carries no authority, and to
// lackDefault when neither is present or the header fails basic token
// validation (guards against header-smuggled filter bypasses).
func NewHostFilter(want string, lackDefault bool) Filter {
	return hostFilter{want: want, lackDefault: lackDefault}
}

func (f hostFilter) Match(req *Request, _ *PathState) bool {
	host := req.URIHost()
	if host == "" {
		host = req.Raw().Host
	}
	if host == "" {
		return f.lackDefault
	}
	if !httpguts.ValidHostHeader(host) {
		return f.lackDefault
	}
	return strings.EqualFold(stripPort(host), f.want)
}

func stripPort(host string) string {
	if i := strings.LastIndexByte(host, ':'); i != -1 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}

type portFilter struct {
	want        uint16
	lackDefault bool
}

// NewPortFilter matches the numeric port of the request URI/Host header.
func NewPortFilter(want uint16, lackDefault bool) Filter {
	return portFilter{want: want, lackDefault: lackDefault}
}

func (f portFilter) Match(req *Request, _ *PathState) bool {
	host := req.URIHost()
	if host == "" {
		host = req.Raw().Host
	}
	_, portStr, err := net.SplitHostPort(host)
	if err != nil || portStr == "" {
		return f.lackDefault
	}
	p, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return f.lackDefault
	}
	return uint16(p) == f.want
}

// And composes two filters with logical AND.
func And(a, b Filter) Filter {
	return FilterFunc(func(req *Request, state *PathState) bool {
		return a.Match(req, state) && b.Match(req, state)
	})
}

// Or composes two filters with logical OR. If a matches, b is not
// evaluated (and so cannot mutate PathState); if a fails it is restored by
// its own Match before b is tried.
func Or(a, b Filter) Filter {
	return FilterFunc(func(req *Request, state *PathState) bool {
		return a.Match(req, state) || b.Match(req, state)
	})
}

// AndThen evaluates f, then applies predicate to the resulting bool to
// decide the final verdict. Lets a filter's result be inverted or
// short-circuited without a bespoke type.
func AndThen(f Filter, predicate func(bool) bool) Filter {
	return FilterFunc(func(req *Request, state *PathState) bool {
		return predicate(f.Match(req, state))
	})
}

// OrElse evaluates f; if f failed, predicate decides whether to treat the
// failure as a pass instead (e.g. "match unless X").
func OrElse(f Filter, predicate func(bool) bool) Filter {
	return FilterFunc(func(req *Request, state *PathState) bool {
		ok := f.Match(req, state)
		if ok {
			return true
		}
		return predicate(ok)
	})
}
