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
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jrgalyan/talus"
)

var _ = Describe("Request", func() {
	It("round-trips a cookie set on the response to a Cookie read on a later request", func() {
		r := talus.NewRouter()
		r.GET("/set", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			res.SetCookie(&http.Cookie{Name: "n", Value: "v1", Path: "/"})
			res.SetStatus(http.StatusOK)
		}))
		r.GET("/get", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			v, ok := req.Cookie("n")
			if !ok {
				res.SetStatus(http.StatusNotFound)
				return
			}
			res.WriteText(http.StatusOK, v)
		}))
		svc := talus.NewService(r)

		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/set"))
		Expect(rr.Code).To(Equal(http.StatusOK))
		ck := rr.Header().Get("Set-Cookie")
		Expect(ck).To(ContainSubstring("n="))

		req := newReq(http.MethodGet, "/get")
		req.Header.Set("Cookie", ck)
		rr = httptest.NewRecorder()
		svc.ServeHTTP(rr, req)
		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(rr.Body.String()).To(Equal("v1"))
	})

	It("reports ok=false for a missing cookie", func() {
		r := talus.NewRouter()
		r.GET("/get", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			_, ok := req.Cookie("missing")
			Expect(ok).To(BeFalse())
			res.SetStatus(http.StatusOK)
		}))
		svc := talus.NewService(r)
		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, newReq(http.MethodGet, "/get"))
		Expect(rr.Code).To(Equal(http.StatusOK))
	})

	It("FormFiles returns every uploaded file under a shared field name", func() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for i, name := range []string{"a.txt", "b.txt"} {
			part, err := mw.CreateFormFile("docs", name)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte{byte('A' + i)})
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(mw.Close()).To(Succeed())

		r := talus.NewRouter()
		var count int
		r.POST("/upload", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			fhs, err := req.FormFiles("docs", 1<<20)
			Expect(err).NotTo(HaveOccurred())
			count = len(fhs)
			res.SetStatus(http.StatusOK)
		}))
		svc := talus.NewService(r)

		rr := httptest.NewRecorder()
		httpReq := httptest.NewRequest(http.MethodPost, "/upload", &buf)
		httpReq.Header.Set("Content-Type", mw.FormDataContentType())
		svc.ServeHTTP(rr, httpReq)

		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(count).To(Equal(2))
	})

	It("FormFiles reports http.ErrMissingFile when the field is absent", func() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		Expect(mw.Close()).To(Succeed())

		r := talus.NewRouter()
		var gotErr error
		r.POST("/upload", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			_, gotErr = req.FormFiles("missing", 1<<20)
			res.SetStatus(http.StatusOK)
		}))
		svc := talus.NewService(r)

		rr := httptest.NewRecorder()
		httpReq := httptest.NewRequest(http.MethodPost, "/upload", &buf)
		httpReq.Header.Set("Content-Type", mw.FormDataContentType())
		svc.ServeHTTP(rr, httpReq)

		Expect(gotErr).To(MatchError(http.ErrMissingFile))
	})

	It("SaveFile copies an uploaded file's contents to disk", func() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("doc", "hello.txt")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("hello, file"))
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.Close()).To(Succeed())

		dst := filepath.Join(GinkgoT().TempDir(), "out.txt")

		r := talus.NewRouter()
		r.POST("/upload", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			fh, err := req.FormFile("doc", 1<<20)
			Expect(err).NotTo(HaveOccurred())
			Expect(talus.SaveFile(fh, dst)).To(Succeed())
			res.SetStatus(http.StatusOK)
		}))
		svc := talus.NewService(r)

		rr := httptest.NewRecorder()
		httpReq := httptest.NewRequest(http.MethodPost, "/upload", &buf)
		httpReq.Header.Set("Content-Type", mw.FormDataContentType())
		svc.ServeHTTP(rr, httpReq)

		Expect(rr.Code).To(Equal(http.StatusOK))
		data, err := os.ReadFile(dst)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("hello, file"))
	})

	It("BindJSON rejects unknown fields", func() {
		type payload struct {
			A int `json:"a"`
		}
		r := talus.NewRouter()
		r.POST("/bind", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			var p payload
			if err := req.BindJSON(&p, 0); err != nil {
				res.WriteJSON(http.StatusBadRequest, talus.ErrorResponse{Error: "bad json"})
				return
			}
			res.SetStatus(http.StatusOK)
		}))
		svc := talus.NewService(r)

		rr := httptest.NewRecorder()
		svc.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"a":1,"b":2}`)))
		Expect(rr.Code).To(Equal(http.StatusBadRequest))
	})

	It("BindJSON enforces the provided byte limit", func() {
		type payload struct {
			A string `json:"a"`
		}
		r := talus.NewRouter()
		r.POST("/bind", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, ctrl *talus.FlowCtrl) {
			var p payload
			if err := req.BindJSON(&p, 8); err != nil {
				res.WriteJSON(http.StatusBadRequest, talus.ErrorResponse{Error: "too large"})
				return
			}
			res.SetStatus(http.StatusOK)
		}))
		svc := talus.NewService(r)

		rr := httptest.NewRecorder()
		body := `{"a":"this is definitely more than eight bytes"}`
		svc.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body)))
		Expect(rr.Code).To(Equal(http.StatusBadRequest))
	})
})
