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
	"bytes"
	"encoding/json"
	"net/http"
)

// Response is the framework's mutable, buffered view of the HTTP response
// under construction. Nothing is written to the real connection until
// Service flushes it at the end of the chain, which is what lets a Catcher
// still install a body after the chain has run with an error status.
type Response struct {
	status    int
	hasStatus bool
	header    http.Header
	body      []byte
	hasBody   bool
	cookies   []*http.Cookie
	committed bool
}

func newResponse() *Response {
	return &Response{header: http.Header{}}
}

// Status returns the status set so far, or 0 if none has been set.
func (res *Response) Status() int {
	if !res.hasStatus {
		return 0
	}
	return res.status
}

// SetStatus records the response status without committing the response.
// It is a no-op once the response is committed.
func (res *Response) SetStatus(code int) {
	if res.committed {
		return
	}
	res.status = code
	res.hasStatus = true
}

// setStatus is the unguarded status setter used by Service's own
// post-chain bookkeeping (status defaulting, the media-type gate):
// "committed" stops a later *handler* in the chain from re-deciding the
// response, but it was never meant to block Service's own finishing steps,
// which by definition run after the chain (and thus after commit) has
// already happened.
func (res *Response) setStatus(code int) {
	res.status = code
	res.hasStatus = true
}

// writeBodyForced installs body unconditionally, overwriting any prior
// Content-Type, status, and body, and marks the response committed. Used
// only by Catcher.Catch, which by contract replaces whatever (possibly
// already-committed) state the chain left behind.
func (res *Response) writeBodyForced(code int, body []byte, contentType string) {
	if contentType != "" {
		res.header.Set("Content-Type", contentType)
	}
	res.status = code
	res.hasStatus = true
	res.body = body
	res.hasBody = true
	res.committed = true
}

// Header returns the response header map, mutable in place.
func (res *Response) Header() http.Header { return res.header }

// SetCookie appends a cookie to be emitted as Set-Cookie.
func (res *Response) SetCookie(c *http.Cookie) { res.cookies = append(res.cookies, c) }

// Cookies returns the cookies queued on this response.
func (res *Response) Cookies() []*http.Cookie { return res.cookies }

// HasBody reports whether a body has been written.
func (res *Response) HasBody() bool { return res.hasBody }

// Body returns the buffered response body, or nil if none was written.
func (res *Response) Body() []byte { return res.body }

// Committed reports whether the response is final: once true, Service
// stops invoking further handlers in the chain (spec: commit monotonicity).
func (res *Response) Committed() bool { return res.committed }

// Commit marks the response final even if no body has been written (e.g. a
// 204 No Content handler that never calls WriteBytes). It is idempotent.
func (res *Response) Commit() { res.committed = true }

// WriteBytes sets the status, content type (if ct != "" and none is set
// yet) and body, and commits the response. Calling it on an already
// committed response is a no-op, matching "later middleware skips its own
// logic" once committed.
func (res *Response) WriteBytes(code int, body []byte, contentType string) {
	if res.committed {
		return
	}
	if contentType != "" && res.header.Get("Content-Type") == "" {
		res.header.Set("Content-Type", contentType)
	}
	res.status = code
	res.hasStatus = true
	res.body = body
	res.hasBody = true
	res.committed = true
}

// WriteText writes a plain-text body.
func (res *Response) WriteText(code int, s string) {
	res.WriteBytes(code, []byte(s), "text/plain; charset=utf-8")
}

// WriteJSON serializes v as JSON and writes it as the response body. A
// marshal failure degrades to a 500 with no body rather than panicking.
func (res *Response) WriteJSON(code int, v any) error {
	if res.committed {
		return nil
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		res.WriteBytes(http.StatusInternalServerError, nil, "")
		return err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	res.WriteBytes(code, out, "application/json; charset=utf-8")
	return nil
}

// Redirect sets Location and a redirect status (defaulting to 302 Found).
func (res *Response) Redirect(code int, location string) {
	if res.committed {
		return
	}
	if code == 0 {
		code = http.StatusFound
	}
	res.header.Set("Location", location)
	res.WriteBytes(code, nil, "")
}

// NoContent commits a 204 response with no body.
func (res *Response) NoContent() { res.WriteBytes(http.StatusNoContent, nil, "") }

// flush writes the accumulated status, headers, cookies and body to w. It
// is called exactly once, by Service, after routing, middleware and the
// catcher have all run.
func (res *Response) flush(w http.ResponseWriter) {
	h := w.Header()
	for k, vals := range res.header {
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	for _, c := range res.cookies {
		http.SetCookie(w, c)
	}
	status := res.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(res.body) > 0 {
		_, _ = w.Write(res.body)
	}
}
