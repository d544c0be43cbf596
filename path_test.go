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

func matchPattern(pattern, path string) (int, string) {
	r := talus.NewRouter()
	r.GET(pattern, talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
		res.WriteJSON(http.StatusOK, req.Params())
	}))
	svc := talus.NewService(r)
	rr := httptest.NewRecorder()
	svc.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr.Code, rr.Body.String()
}

var _ = Describe("Path pattern grammar", func() {
	It("matches a plain literal segment", func() {
		code, _ := matchPattern("/about", "/about")
		Expect(code).To(Equal(http.StatusOK))
	})

	It("supports escaped literal braces via {{ and }}", func() {
		code, body := matchPattern("/{{literal}}", "/{literal}")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal("{}"))
	})

	It("captures a bare {name} param", func() {
		code, body := matchPattern("/users/{id}", "/users/abc")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`{"id":"abc"}`))
	})

	It("enforces an exact digit count with num(N)", func() {
		okCode, _ := matchPattern("/pin/{p:num(4)}", "/pin/1234")
		Expect(okCode).To(Equal(http.StatusOK))

		badCode, _ := matchPattern("/pin/{p:num(4)}", "/pin/123")
		Expect(badCode).To(Equal(http.StatusNotFound))
	})

	It("supports an exclusive Rust-style range num(N..M)", func() {
		inRange, _ := matchPattern("/v/{n:num(1..3)}", "/v/12")
		Expect(inRange).To(Equal(http.StatusOK))

		atUpperExclusive, _ := matchPattern("/v/{n:num(1..3)}", "/v/123")
		Expect(atUpperExclusive).To(Equal(http.StatusNotFound))
	})

	It("supports an inclusive Rust-style range num(N..=M)", func() {
		atUpperInclusive, _ := matchPattern("/v/{n:num(1..=3)}", "/v/123")
		Expect(atUpperInclusive).To(Equal(http.StatusOK))
	})

	It("matches a regex-constrained segment", func() {
		code, body := matchPattern("/tag/{t|[a-z]+}", "/tag/admin")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`{"t":"admin"}`))

		badCode, _ := matchPattern("/tag/{t|[a-z]+}", "/tag/Admin1")
		Expect(badCode).To(Equal(http.StatusNotFound))
	})

	It("requires {**name} to be the last segment", func() {
		r := talus.NewRouter()
		Expect(func() {
			r.GET("/{**rest}/more", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {}))
		}).To(Panic())
	})

	It("a rest capture consumes everything remaining, including empty", func() {
		code, body := matchPattern("/assets/{**rest}", "/assets")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`{"rest":""}`))
	})
})
