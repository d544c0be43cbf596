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

package talus_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jrgalyan/talus"
)

func corsSvc(cfg talus.CORSConfig, handlerCalled *bool) *talus.Service {
	r := talus.NewRouter()
	r.Hoop(talus.CORS(cfg))
	goal := talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
		if handlerCalled != nil {
			*handlerCalled = true
		}
		res.WriteText(http.StatusOK, "ok")
	})
	r.GET("/api", goal)
	r.OPTIONS("/api", goal)
	return talus.NewService(r)
}

var _ = Describe("CORS", func() {
	It("sets the wildcard origin and Vary on a simple request", func() {
		svc := corsSvc(talus.DefaultCORSConfig(), nil)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodGet, "/api")
		req.Header.Set("Origin", "http://example.com")
		svc.ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(rr.Header().Get("Vary")).To(ContainSubstring("Origin"))
		Expect(rr.Body.String()).To(Equal("ok"))
	})

	It("answers a preflight OPTIONS request with 204 and never reaches the handler", func() {
		var called bool
		svc := corsSvc(talus.DefaultCORSConfig(), &called)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodOptions, "/api")
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		svc.ServeHTTP(rr, req)

		Expect(rr.Code).To(Equal(http.StatusNoContent))
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(rr.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("POST"))
		Expect(rr.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Content-Type"))
		Expect(called).To(BeFalse())
	})

	It("passes through requests without an Origin header untouched", func() {
		svc := corsSvc(talus.DefaultCORSConfig(), nil)
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/api"))
		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("reaches the handler but adds no CORS headers for a disallowed origin", func() {
		cfg := talus.DefaultCORSConfig()
		cfg.AllowOrigins = []string{"http://allowed.com"}
		var called bool
		svc := corsSvc(cfg, &called)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodGet, "/api")
		req.Header.Set("Origin", "http://evil.com")
		svc.ServeHTTP(rr, req)

		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		Expect(called).To(BeTrue())
	})

	It("reflects a specifically configured allowed origin", func() {
		cfg := talus.DefaultCORSConfig()
		cfg.AllowOrigins = []string{"http://allowed.com"}
		svc := corsSvc(cfg, nil)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodGet, "/api")
		req.Header.Set("Origin", "http://allowed.com")
		svc.ServeHTTP(rr, req)
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://allowed.com"))
	})

	It("reflects the origin and sets Allow-Credentials when credentials are enabled with a wildcard", func() {
		cfg := talus.DefaultCORSConfig()
		cfg.AllowCredentials = true
		svc := corsSvc(cfg, nil)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodGet, "/api")
		req.Header.Set("Origin", "http://example.com")
		svc.ServeHTTP(rr, req)
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://example.com"))
		Expect(rr.Header().Get("Access-Control-Allow-Credentials")).To(Equal("true"))
	})

	It("sets Access-Control-Max-Age on a preflight request", func() {
		cfg := talus.DefaultCORSConfig()
		cfg.MaxAge = 3600
		svc := corsSvc(cfg, nil)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodOptions, "/api")
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")
		svc.ServeHTTP(rr, req)
		Expect(rr.Header().Get("Access-Control-Max-Age")).To(Equal("3600"))
	})

	It("sets Access-Control-Expose-Headers on an actual request when configured", func() {
		cfg := talus.DefaultCORSConfig()
		cfg.ExposeHeaders = []string{"X-Custom-Header", "X-Other"}
		svc := corsSvc(cfg, nil)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodGet, "/api")
		req.Header.Set("Origin", "http://example.com")
		svc.ServeHTTP(rr, req)
		Expect(rr.Header().Get("Access-Control-Expose-Headers")).To(Equal("X-Custom-Header, X-Other"))
	})

	It("treats an OPTIONS request lacking Access-Control-Request-Method as a normal request", func() {
		var called bool
		svc := corsSvc(talus.DefaultCORSConfig(), &called)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodOptions, "/api")
		req.Header.Set("Origin", "http://example.com")
		svc.ServeHTTP(rr, req)
		Expect(called).To(BeTrue())
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("sets the full Vary header set on preflight", func() {
		svc := corsSvc(talus.DefaultCORSConfig(), nil)
		rr := httptest.NewRecorder()
		req := newReq(http.MethodOptions, "/api")
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")
		svc.ServeHTTP(rr, req)
		vary := rr.Header().Get("Vary")
		Expect(vary).To(ContainSubstring("Origin"))
		Expect(vary).To(ContainSubstring("Access-Control-Request-Method"))
		Expect(vary).To(ContainSubstring("Access-Control-Request-Headers"))
	})
})
