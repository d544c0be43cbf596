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

// BodyLimit returns a hoop that restricts the maximum size of the request
// body. If the client sends more than maxBytes, subsequent reads from the
// body return an error; the handler (or Request.Body's caller) is
// responsible for turning that into a 413 response.
//
// A maxBytes of 0 or negative means no limit is enforced.
func BodyLimit(maxBytes int64) Handler {
	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		if maxBytes > 0 {
			req.raw.Body = http.MaxBytesReader(nil, req.raw.Body, maxBytes)
		}
		ctrl.CallNext(req, depot, res)
	})
}
