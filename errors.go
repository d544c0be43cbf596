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

import "errors"

// ErrorResponse is a consistent error payload for handler-level failures
// that don't go through the Catcher system (e.g. validation errors with a
// body of their own). It is a plain JSON object with error, message, code
// and details members; it is not an RFC 9457 problem+json document.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Sentinel errors for the error kinds named in the core's taxonomy that
// need a comparable value (callers use errors.Is against these).
var (
	ErrNotFound         = errors.New("talus: not found")
	ErrMethodNotAllowed = errors.New("talus: method not allowed")
	ErrMediaType        = errors.New("talus: unsupported media type")
)
