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
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
)

// bodyKind mirrors the {None, Once(bytes), Stream(frames)} body variant
// from the data model: a request body is either absent, fully buffered, or
// (for large/streamed uploads) left for the handler to read directly off
// the underlying connection.
type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyOnce
	bodyStream
)

// Request is the framework's immutable view of an incoming HTTP request:
// method, URI, headers, and lazily-parsed query/form/JSON are fixed at
// construction; only the path-capture params are mutated, by the router,
// exactly once per request.
type Request struct {
	raw    *http.Request
	header http.Header
	params map[string]string

	kind     bodyKind
	bodyOnce []byte
	bodyErr  error
	read     bool
}

// newRequest adapts an *http.Request arriving from the external HTTP
// engine boundary into the framework's Request.
func newRequest(r *http.Request) *Request {
	kind := bodyNone
	if r.Body != nil && r.Body != http.NoBody {
		kind = bodyStream
	}
	return &Request{raw: r, header: r.Header, params: map[string]string{}, kind: kind}
}

// Raw exposes the underlying *http.Request for code that needs to escape
// the framework's contract (e.g. to hand off to http.FileServer).
func (r *Request) Raw() *http.Request { return r.raw }

// Method returns the HTTP method, e.g. "GET".
func (r *Request) Method() string { return r.raw.Method }

// Param returns a captured path parameter by name, or "" if absent.
func (r *Request) Param(name string) string { return r.params[name] }

// Params returns all captured path parameters for this request.
func (r *Request) Params() map[string]string { return r.params }

// setParams installs the parameter map produced by a successful route
// match. Called once by Service before the middleware chain runs.
func (r *Request) setParams(p map[string]string) { r.params = p }

// Header returns a request header value by canonical key.
func (r *Request) Header(key string) string { return r.header.Get(key) }

// Headers returns the full request header set.
func (r *Request) Headers() http.Header { return r.header }

// URIPath returns the request URI's path component.
func (r *Request) URIPath() string { return r.raw.URL.Path }

// URIScheme returns the request URI's scheme, or "" if the URI carries
// none (as is typical for origin-form request targets).
func (r *Request) URIScheme() string { return r.raw.URL.Scheme }

// URIHost returns the request URI's authority host, or "" if absent.
func (r *Request) URIHost() string { return r.raw.URL.Host }

// RemoteAddr returns the client's network address as reported by the
// external HTTP engine.
func (r *Request) RemoteAddr() string { return r.raw.RemoteAddr }

// Context returns the request's context.Context, carrying cancellation
// from the underlying connection.
func (r *Request) Context() context.Context { return r.raw.Context() }

// WithContext replaces the request's context, e.g. to inject a request ID
// or deadline. Used by middleware that must thread a value through to
// extractors and handlers via context rather than the Depot.
func (r *Request) WithContext(ctx context.Context) {
	r.raw = r.raw.WithContext(ctx)
	r.header = r.raw.Header
}

// Query returns a single query string parameter value.
func (r *Request) Query(key string) string { return r.raw.URL.Query().Get(key) }

// QueryValues returns the full parsed query string.
func (r *Request) QueryValues() url.Values { return r.raw.URL.Query() }

// Form parses the request body/query as a form (if not already parsed)
// and returns a single value by key.
func (r *Request) Form(key string) (string, error) {
	if err := r.raw.ParseForm(); err != nil {
		return "", err
	}
	return r.raw.FormValue(key), nil
}

// FormValues parses and returns the full form value set.
func (r *Request) FormValues() (url.Values, error) {
	if err := r.raw.ParseForm(); err != nil {
		return nil, err
	}
	return r.raw.Form, nil
}

// FormFile returns the first uploaded file for the given form field,
// parsing the multipart form (up to maxMemory bytes held in memory) if
// necessary.
func (r *Request) FormFile(name string, maxMemory int64) (*multipart.FileHeader, error) {
	if err := r.raw.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}
	f, fh, err := r.raw.FormFile(name)
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	return fh, nil
}

// FormFiles returns every uploaded file for the given form field, parsing
// the multipart form (up to maxMemory bytes held in memory) if necessary.
func (r *Request) FormFiles(name string, maxMemory int64) ([]*multipart.FileHeader, error) {
	if err := r.raw.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}
	if r.raw.MultipartForm == nil || r.raw.MultipartForm.File == nil {
		return nil, http.ErrMissingFile
	}
	fhs, ok := r.raw.MultipartForm.File[name]
	if !ok || len(fhs) == 0 {
		return nil, http.ErrMissingFile
	}
	return fhs, nil
}

// Cookie retrieves a cookie value by name, path-unescaped, with an ok flag
// reporting whether it was present and well-formed.
func (r *Request) Cookie(name string) (string, bool) {
	ck, err := r.raw.Cookie(name)
	if err != nil {
		return "", false
	}
	v, err := url.PathUnescape(ck.Value)
	if err != nil {
		return "", false
	}
	return v, true
}

// Body returns the full request body, buffering it on first call (the
// {Once} body variant) so repeated calls are free. limit caps how many
// bytes are read; 0 means unbounded.
func (r *Request) Body(limit int64) ([]byte, error) {
	if r.read {
		return r.bodyOnce, r.bodyErr
	}
	r.read = true
	if r.raw.Body == nil || r.raw.Body == http.NoBody {
		r.kind = bodyNone
		return nil, nil
	}
	defer func() { _ = r.raw.Body.Close() }()
	var reader io.Reader = r.raw.Body
	if limit > 0 {
		reader = io.LimitReader(reader, limit)
	}
	b, err := io.ReadAll(reader)
	r.kind = bodyOnce
	r.bodyOnce, r.bodyErr = b, err
	return b, err
}

// SaveFile copies an uploaded file to dst on disk.
func SaveFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, src)
	return err
}

// BindJSON decodes the request body as JSON into dst, rejecting unknown
// fields and capping the body at limit bytes (0 means the 10 MiB default).
func (r *Request) BindJSON(dst any, limit int64) error {
	if limit <= 0 {
		limit = 10 << 20
	}
	body, err := r.Body(limit)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
