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

func securitySvc(cfg talus.SecurityHeadersConfig) *talus.Service {
	r := talus.NewRouter()
	r.Hoop(talus.SecurityHeaders(cfg))
	r.GET("/", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
		res.WriteText(http.StatusOK, "ok")
	}))
	return talus.NewService(r)
}

var _ = Describe("SecurityHeaders", func() {
	It("sets all default security headers", func() {
		svc := securitySvc(talus.DefaultSecurityHeadersConfig())
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/"))
		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(rr.Header().Get("Strict-Transport-Security")).To(Equal("max-age=63072000; includeSubDomains"))
		Expect(rr.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
		Expect(rr.Header().Get("X-Frame-Options")).To(Equal("DENY"))
		Expect(rr.Header().Get("Referrer-Policy")).To(Equal("strict-origin-when-cross-origin"))
	})

	It("omits HSTS when HSTSMaxAge is 0", func() {
		cfg := talus.DefaultSecurityHeadersConfig()
		cfg.HSTSMaxAge = 0
		svc := securitySvc(cfg)
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/"))
		Expect(rr.Header().Get("Strict-Transport-Security")).To(BeEmpty())
		Expect(rr.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
	})

	It("includes the preload directive when enabled", func() {
		cfg := talus.DefaultSecurityHeadersConfig()
		cfg.HSTSPreload = true
		svc := securitySvc(cfg)
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/"))
		Expect(rr.Header().Get("Strict-Transport-Security")).To(Equal("max-age=63072000; includeSubDomains; preload"))
	})

	It("uses a custom frame option", func() {
		cfg := talus.DefaultSecurityHeadersConfig()
		cfg.FrameOption = "SAMEORIGIN"
		svc := securitySvc(cfg)
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/"))
		Expect(rr.Header().Get("X-Frame-Options")).To(Equal("SAMEORIGIN"))
	})

	It("omits nosniff when disabled", func() {
		cfg := talus.DefaultSecurityHeadersConfig()
		cfg.ContentTypeNosniff = false
		svc := securitySvc(cfg)
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/"))
		Expect(rr.Header().Get("X-Content-Type-Options")).To(BeEmpty())
	})

	It("uses a custom referrer policy", func() {
		cfg := talus.DefaultSecurityHeadersConfig()
		cfg.ReferrerPolicy = "no-referrer"
		svc := securitySvc(cfg)
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/"))
		Expect(rr.Header().Get("Referrer-Policy")).To(Equal("no-referrer"))
	})
})
