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
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWTAuth hoop. Provide at least a Keyfunc to
// resolve the verification key. Optional fields enforce issuer/audience and
// clock skew. If Optional is true, requests without an Authorization
// header pass through unmodified. Only Bearer tokens are considered.
// Errors result in 401 with WWW-Authenticate and a JSON error payload.
type JWTConfig struct {
	Keyfunc  jwt.Keyfunc
	Issuer   string
	Audience string
	Skew     time.Duration
	Optional bool
}

// JWTAuth returns a hoop that validates Bearer JWTs and injects the parsed
// claims into the Depot via DepotInject, as a worked example of extractor
// sources that come from the Depot rather than the request itself.
func JWTAuth(cfg JWTConfig) Handler {
	if cfg.Skew == 0 {
		cfg.Skew = 30 * time.Second
	}
	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		authz := req.Header("Authorization")
		if authz == "" {
			if cfg.Optional {
				ctrl.CallNext(req, depot, res)
				return
			}
			unauthorized(res, "missing Authorization header")
			return
		}
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			unauthorized(res, "invalid Authorization scheme")
			return
		}
		tokStr := parts[1]

		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "RS384", "RS512", "ES256", "EdDSA"}),
			jwt.WithLeeway(cfg.Skew),
		}
		if cfg.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(cfg.Issuer))
		}
		if cfg.Audience != "" {
			opts = append(opts, jwt.WithAudience(cfg.Audience))
		}
		parser := jwt.NewParser(opts...)

		tok, err := parser.ParseWithClaims(tokStr, jwt.MapClaims{}, cfg.Keyfunc)
		if err != nil {
			unauthorized(res, fmt.Sprintf("token parse/verify failed: %v", err))
			return
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok || !tok.Valid {
			unauthorized(res, "invalid token claims")
			return
		}

		DepotInject(depot, claims)
		ctrl.CallNext(req, depot, res)
	})
}

// JWTClaims retrieves the claims a prior JWTAuth hoop injected into depot.
func JWTClaims(depot *Depot) (jwt.MapClaims, bool) {
	return DepotObtain[jwt.MapClaims](depot)
}

func unauthorized(res *Response, desc string) {
	res.Header().Set("WWW-Authenticate", "Bearer error=\"invalid_token\", error_description=\""+escapeAuthParam(desc)+"\"")
	_ = res.WriteJSON(401, ErrorResponse{Error: "unauthorized", Message: desc})
}

// escapeAuthParam escapes desc for safe inclusion in a WWW-Authenticate
// quoted-string parameter, per RFC 6750.
func escapeAuthParam(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
