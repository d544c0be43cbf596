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
	"compress/gzip"
	"strings"
)

// GzipConfig configures the Gzip hoop.
type GzipConfig struct {
	// Level is the gzip compression level (1-9, or gzip.DefaultCompression,
	// gzip.BestSpeed, gzip.BestCompression). Default: gzip.DefaultCompression.
	Level int

	// MinLength is the minimum response body size in bytes before
	// compression is applied. Default: 256.
	MinLength int
}

// Content types that are already compressed and should not be
// gzip-compressed again.
var skippedContentTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp", "image/avif",
	"video/", "audio/",
	"application/zip", "application/gzip", "application/x-gzip",
	"application/x-compressed", "application/x-bzip2", "application/x-xz",
	"application/zstd", "application/wasm",
}

func shouldSkipContentType(ct string) bool {
	ct = strings.ToLower(ct)
	for _, skip := range skippedContentTypes {
		if strings.HasPrefix(ct, skip) {
			return true
		}
	}
	return false
}

// Gzip returns a hoop that compresses the response body with gzip once the
// rest of the chain has run. Because Response buffers its whole body
// rather than streaming it, compression here is a straightforward
// post-processing rewrite of res.body instead of a wrapped
// http.ResponseWriter: the hoop calls CallNext first, then compresses
// whatever the chain produced if it qualifies.
func Gzip(cfg GzipConfig) Handler {
	if cfg.Level == 0 {
		cfg.Level = gzip.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = 256
	}
	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		ctrl.CallNext(req, depot, res)

		if !strings.Contains(req.Header("Accept-Encoding"), "gzip") {
			return
		}
		res.Header().Add("Vary", "Accept-Encoding")

		body := res.Body()
		if len(body) < cfg.MinLength {
			return
		}
		ct := res.Header().Get("Content-Type")
		if shouldSkipContentType(ct) {
			return
		}

		var buf bytes.Buffer
		gw, err := gzip.NewWriterLevel(&buf, cfg.Level)
		if err != nil {
			gw = gzip.NewWriter(&buf)
		}
		if _, err := gw.Write(body); err != nil {
			return
		}
		if err := gw.Close(); err != nil {
			return
		}

		res.header.Set("Content-Encoding", "gzip")
		res.body = buf.Bytes()
	})
}
