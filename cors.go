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
	"strconv"
	"strings"
)

// CORSConfig configures the CORS hoop.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	MaxAge           int
	AllowCredentials bool
}

// DefaultCORSConfig returns a CORSConfig with sensible defaults.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{},
		MaxAge:           86400,
		AllowCredentials: false,
	}
}

// CORS returns a hoop that handles Cross-Origin Resource Sharing, including
// preflight requests, configurable origins, credentials, and exposed
// headers.
func CORS(cfg CORSConfig) Handler {
	allowMethodsStr := strings.Join(cfg.AllowMethods, ", ")
	allowHeadersStr := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeadersStr := strings.Join(cfg.ExposeHeaders, ", ")
	maxAgeStr := strconv.Itoa(cfg.MaxAge)
	allowAll := len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*"

	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		origin := req.Header("Origin")
		if origin == "" {
			ctrl.CallNext(req, depot, res)
			return
		}
		if !allowAll && !originAllowed(origin, cfg.AllowOrigins) {
			ctrl.CallNext(req, depot, res)
			return
		}

		allowOriginValue := "*"
		if cfg.AllowCredentials || !allowAll {
			allowOriginValue = origin
		}

		if req.Method() == http.MethodOptions && req.Header("Access-Control-Request-Method") != "" {
			h := res.Header()
			h.Set("Access-Control-Allow-Origin", allowOriginValue)
			h.Set("Access-Control-Allow-Methods", allowMethodsStr)
			h.Set("Access-Control-Allow-Headers", allowHeadersStr)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAgeStr)
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Vary", "Origin, Access-Control-Request-Method, Access-Control-Request-Headers")
			res.NoContent()
			return
		}

		h := res.Header()
		h.Set("Access-Control-Allow-Origin", allowOriginValue)
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposeHeadersStr != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeadersStr)
		}
		h.Add("Vary", "Origin")
		ctrl.CallNext(req, depot, res)
	})
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
