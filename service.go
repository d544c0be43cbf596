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
	"mime"
	"net/http"
	"strings"
)

// Service is the per-request entrypoint: it decodes the URL, runs
// Router.detect, drives the resulting handler chain, applies the
// media-type gate and catcher fallback, and finally flushes the buffered
// Response to the real connection. A Service is built once and is safe for
// concurrent use by many requests, matching the Router/Catchers/
// AllowedMediaTypes "immutable after startup" lifecycle.
type Service struct {
	Router            *Router
	Catchers          []Catcher
	AllowedMediaTypes []string
}

// NewService builds a Service around router with the default catcher set
// and no media-type restriction.
func NewService(router *Router) *Service {
	return &Service{Router: router, Catchers: DefaultCatchers()}
}

// ServeHTTP implements http.Handler, making a Service mountable directly on
// an http.Server or usable with httptest.
func (s *Service) ServeHTTP(w http.ResponseWriter, raw *http.Request) {
	req := newRequest(raw)
	res := newResponse()
	depot := NewDepot()

	segs := decodePathSegments(raw.URL.EscapedPath())
	state := newPathState(segs)

	if dm, ok := s.Router.detect(req, state); ok {
		req.setParams(dm.params)
		chain := make([]Handler, 0, len(dm.hoops)+1)
		chain = append(chain, dm.hoops...)
		chain = append(chain, dm.goal)
		ctrl := newFlowCtrl(chain)
		ctrl.Run(req, depot, res)
		if !res.Committed() {
			res.Commit()
		}
	} else {
		res.SetStatus(http.StatusNotFound)
	}

	// Status defaulting (spec: body is None -> 404, else 200). This runs
	// after the chain has already committed the response, so it must bypass
	// the public SetStatus's committed guard rather than be blocked by it.
	if res.Status() == 0 {
		if res.HasBody() {
			res.setStatus(http.StatusOK)
		} else {
			res.setStatus(http.StatusNotFound)
		}
	}

	s.applyMediaTypeGate(res)
	s.applyCatchers(req, res)

	res.flush(w)
}

// applyMediaTypeGate rejects a response whose Content-Type isn't in the
// allowed set (compared by type+subtype, ignoring parameters), switching
// its status to 415. A no-op when AllowedMediaTypes is empty or the
// response carries no Content-Type.
func (s *Service) applyMediaTypeGate(res *Response) {
	if len(s.AllowedMediaTypes) == 0 {
		return
	}
	ct := res.Header().Get("Content-Type")
	if ct == "" {
		return
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	}
	for _, allowed := range s.AllowedMediaTypes {
		if strings.EqualFold(mt, allowed) {
			return
		}
	}
	res.setStatus(http.StatusUnsupportedMediaType)
}

// applyCatchers runs the catcher list, in order, when the body is still
// empty and the status is a client or server error. The first catcher to
// return true wins; idempotent because Catcher.Catch itself refuses to
// re-fire once a body has been written.
func (s *Service) applyCatchers(req *Request, res *Response) {
	status := res.Status()
	if res.HasBody() || status < 400 || status > 599 {
		return
	}
	for _, c := range s.Catchers {
		if c.Catch(req, res) {
			return
		}
	}
}
