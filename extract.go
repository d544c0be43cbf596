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
	"encoding/json"
	"fmt"
)

// ParseError is returned by an Extractor when it fails to produce a value.
// It implements Writer, so returning it (or a Result wrapping it) from a
// handler renders a 400 unless the handler already set a more specific
// status.
type ParseError struct {
	Arg    string
	Reason string
}

// Error implements error.
func (e *ParseError) Error() string { return fmt.Sprintf("extract %q: %s", e.Arg, e.Reason) }

// Write implements Writer.
func (e *ParseError) Write(req *Request, depot *Depot, res *Response) {
	if res.Status() == 0 {
		res.SetStatus(400)
	}
	_ = res.WriteJSON(res.Status(), map[string]string{"error": e.Error()})
}

// Extractor is the typed-parameter population protocol: the framework
// resolves a declared handler parameter by calling ExtractWithArg with the
// parameter's declared name.
type Extractor[T any] interface {
	ExtractWithArg(req *Request, argName string) (T, *ParseError)
}

// PathParam extracts a path capture by name.
type PathParam struct{}

// ExtractWithArg implements Extractor[string].
func (PathParam) ExtractWithArg(req *Request, argName string) (string, *ParseError) {
	v, ok := req.Params()[argName]
	if !ok {
		return "", &ParseError{Arg: argName, Reason: "no such path parameter"}
	}
	return v, nil
}

// QueryParam extracts a query string value by name.
type QueryParam struct{}

// ExtractWithArg implements Extractor[string].
func (QueryParam) ExtractWithArg(req *Request, argName string) (string, *ParseError) {
	vals := req.QueryValues()
	v, ok := vals[argName]
	if !ok || len(v) == 0 {
		return "", &ParseError{Arg: argName, Reason: "missing query parameter"}
	}
	return v[0], nil
}

// HeaderParam extracts a request header by canonical name.
type HeaderParam struct{}

// ExtractWithArg implements Extractor[string].
func (HeaderParam) ExtractWithArg(req *Request, argName string) (string, *ParseError) {
	v := req.Header(argName)
	if v == "" {
		return "", &ParseError{Arg: argName, Reason: "missing header"}
	}
	return v, nil
}

// FormParam extracts a body-form value by field name.
type FormParam struct{}

// ExtractWithArg implements Extractor[string].
func (FormParam) ExtractWithArg(req *Request, argName string) (string, *ParseError) {
	v, err := req.Form(argName)
	if err != nil {
		return "", &ParseError{Arg: argName, Reason: err.Error()}
	}
	if v == "" {
		return "", &ParseError{Arg: argName, Reason: "missing form field"}
	}
	return v, nil
}

// JSONBody decodes the full request body as JSON into T, ignoring argName
// (a JSON-body extractor has nothing to key by; it extracts the whole
// payload).
type JSONBody[T any] struct{}

// ExtractWithArg implements Extractor[T].
func (JSONBody[T]) ExtractWithArg(req *Request, argName string) (T, *ParseError) {
	var dst T
	if err := req.BindJSON(&dst, 0); err != nil {
		return dst, &ParseError{Arg: argName, Reason: err.Error()}
	}
	return dst, nil
}

// RawBody extracts the unparsed request body, capped at Limit bytes (0
// means no cap).
type RawBody struct{ Limit int64 }

// ExtractWithArg implements Extractor[[]byte].
func (b RawBody) ExtractWithArg(req *Request, argName string) ([]byte, *ParseError) {
	body, err := req.Body(b.Limit)
	if err != nil {
		return nil, &ParseError{Arg: argName, Reason: err.Error()}
	}
	return body, nil
}

// Extract resolves T from req using e, reading from source e declares,
// converting a failed extraction to the common ParseError/Writer shape
// handlers can return directly.
func Extract[T any](e Extractor[T], req *Request, argName string) (T, *ParseError) {
	return e.ExtractWithArg(req, argName)
}

// MustExtractJSON is a convenience wrapper used by handlers that want to
// bind the whole body without per-field source metadata. Like JSONBody it
// reports failures as a *ParseError; unlike JSONBody it reads the body
// with no size cap and accepts unknown JSON fields.
func MustExtractJSON[T any](req *Request, argName string) (T, *ParseError) {
	var dst T
	body, err := req.Body(0)
	if err != nil {
		var zero T
		return zero, &ParseError{Arg: argName, Reason: err.Error()}
	}
	if err := json.Unmarshal(body, &dst); err != nil {
		return dst, &ParseError{Arg: argName, Reason: err.Error()}
	}
	return dst, nil
}
