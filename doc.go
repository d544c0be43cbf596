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

// Package talus is the core request-processing engine of a general-purpose
// HTTP server framework.
//
// It covers:
//   - A compiled router tree with typed path segments, wildcards, regex
//     constraints and per-node middleware ("hoops").
//   - A Service dispatcher that detects the matching route, runs the
//     middleware+handler chain, and falls back to a Catcher for error
//     statuses.
//   - A Handler/FlowCtrl execution model shared by endpoints and middleware.
//   - A Writer/Scribe contract for rendering handler results into a
//     Response, and an Extractor contract for typed handler parameters.
//
// TLS termination, ACME, HTTP wire parsing, and OpenAPI generation are left
// to callers; talus defines the contracts they plug into. The package does
// ship a small set of extractors (JSONBody, RawBody, FormParam, PathParam,
// QueryParam, HeaderParam).
//
// Getting started:
//
//	r := talus.NewRouter()
//	r.Use(talus.Recover(nil), talus.Logger(talus.LoggerConfig{}))
//	r.GET("/hello/{name}", talus.HandlerFunc(func(req *talus.Request, d *talus.Depot, res *talus.Response, _ *talus.FlowCtrl) {
//		res.WriteJSON(http.StatusOK, map[string]any{"hello": req.Param("name")})
//	}))
//
//	svc := talus.NewService(r)
//	srv := talus.NewServer(talus.ServerConfig{Addr: ":8080"}, svc, nil)
//	_ = srv.Start()
package talus
