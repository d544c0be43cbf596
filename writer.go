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

import "net/http"

// Scribe is the synchronous half of the render contract: it only has
// access to the Response, not the Request or Depot. Anything that is a
// Scribe is automatically a Writer via ScribeWriter below.
type Scribe interface {
	Render(res *Response)
}

// Writer is the full render contract: any value handed back from a handler
// is written to the response by calling Write. Writer implementations may
// inspect the Request and Depot, unlike Scribe.
type Writer interface {
	Write(req *Request, depot *Depot, res *Response)
}

// ScribeWriter lifts any Scribe into a Writer, ignoring req and depot.
type ScribeWriter struct{ Scribe }

// Write implements Writer.
func (s ScribeWriter) Write(req *Request, depot *Depot, res *Response) { s.Scribe.Render(res) }

// PlainText renders a 200 text/plain body. Content-Type is set only if not
// already present on the response.
type PlainText string

// Render implements Scribe.
func (t PlainText) Render(res *Response) { res.WriteText(200, string(t)) }

// HTML renders a 200 text/html body.
type HTML string

// Render implements Scribe.
func (t HTML) Render(res *Response) { res.WriteBytes(200, []byte(t), "text/html; charset=utf-8") }

// Status renders an empty body with the given status code, useful as the
// sole return value of a handler that only needs to set a code.
type Status int

// Render implements Scribe.
func (s Status) Render(res *Response) { res.WriteBytes(int(s), nil, "") }

// Bytes renders an arbitrary byte slice with an explicit content type.
type Bytes struct {
	Code        int
	Body        []byte
	ContentType string
}

// Render implements Scribe.
func (b Bytes) Render(res *Response) {
	code := b.Code
	if code == 0 {
		code = 200
	}
	res.WriteBytes(code, b.Body, b.ContentType)
}

// Json wraps a value to be rendered as a JSON body with status 200.
type Json[T any] struct {
	Value T
}

// Render implements Scribe.
func (j Json[T]) Render(res *Response) { _ = res.WriteJSON(200, j.Value) }

// Write implements Writer directly (rather than through ScribeWriter) so
// Json[T] can be returned bare from a handler that returns Writer.
func (j Json[T]) Write(req *Request, depot *Depot, res *Response) { j.Render(res) }

// Redirect renders a redirect response; Code defaults to 302 if zero.
type Redirect struct {
	Code     int
	Location string
}

// Render implements Scribe.
func (r Redirect) Render(res *Response) { res.Redirect(r.Code, r.Location) }

// stringScribe and byteSliceScribe give the blanket string/[]byte Scribe
// impls the spec calls for ("primitive strings and byte slices").
type stringScribe string

func (s stringScribe) Render(res *Response) { res.WriteText(200, string(s)) }

type byteSliceScribe []byte

func (b byteSliceScribe) Render(res *Response) {
	res.WriteBytes(200, []byte(b), "application/octet-stream")
}

// WriteValue dispatches v to the Response using the Writer/Scribe contract:
// a Writer is called directly; a Scribe is adapted via ScribeWriter; a bare
// string or []byte gets the blanket impl; an Option (Some/None) or Result
// (Ok/Err) is itself a Writer and writes its active branch; an http.Header
// is added to the response headers; anything else is an internal error
// surfaced as 500, since the handler author should have returned a
// recognized shape.
func WriteValue(v any, req *Request, depot *Depot, res *Response) {
	switch t := v.(type) {
	case nil:
		return
	case Writer:
		t.Write(req, depot, res)
	case Scribe:
		ScribeWriter{t}.Write(req, depot, res)
	case string:
		stringScribe(t).Render(res)
	case []byte:
		byteSliceScribe(t).Render(res)
	case http.Header:
		for k, vals := range t {
			for _, hv := range vals {
				res.Header().Add(k, hv)
			}
		}
	default:
		res.WriteBytes(500, nil, "")
	}
}

// Option mirrors Option<T: Scribe>: writing a present value writes T;
// writing an absent value commits a 404.
type Option[T Scribe] struct {
	Value T
	Some  bool
}

// Some constructs a present Option.
func Some[T Scribe](v T) Option[T] { return Option[T]{Value: v, Some: true} }

// None constructs an absent Option.
func None[T Scribe]() Option[T] { return Option[T]{} }

// Write implements Writer.
func (o Option[T]) Write(req *Request, depot *Depot, res *Response) {
	if !o.Some {
		res.WriteBytes(404, nil, "")
		return
	}
	o.Value.Render(res)
}

// Result mirrors Result<T: Writer, E: Writer>: whichever branch is set gets
// written.
type Result[T Writer, E Writer] struct {
	Ok    T
	Err   E
	isErr bool
}

// Ok constructs a successful Result.
func Ok[T Writer, E Writer](v T) Result[T, E] { return Result[T, E]{Ok: v} }

// Err constructs a failed Result.
func Err[T Writer, E Writer](e E) Result[T, E] { return Result[T, E]{Err: e, isErr: true} }

// Write implements Writer.
func (r Result[T, E]) Write(req *Request, depot *Depot, res *Response) {
	if r.isErr {
		r.Err.Write(req, depot, res)
		return
	}
	r.Ok.Write(req, depot, res)
}
