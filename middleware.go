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
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

type requestIDKey struct{}

var requestIDContextKey = requestIDKey{}

// WithRequestID stores a request id into a context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext retrieves a request id from context, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(requestIDContextKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// LoggerConfig configures the Logger hoop.
type LoggerConfig struct {
	// Logger is the slog.Logger used for output. When set, Lumberjack is
	// ignored.
	Logger *slog.Logger

	// Lumberjack, when Logger is nil, directs log output to a rotating file
	// sink via gopkg.in/natefinch/lumberjack.v2. A zero value disables
	// rotation (falls through to slog.Default()).
	Lumberjack *lumberjack.Logger
}

// Logger returns a hoop that logs one structured line per request,
// attaching (and, if absent, generating) an X-Request-Id. IDs are
// google/uuid v4 rather than a hand-rolled random-hex scheme, so they are
// parseable and collision-resistant by construction.
func Logger(cfg LoggerConfig) Handler {
	logger := cfg.Logger
	if logger == nil {
		if cfg.Lumberjack != nil {
			logger = slog.New(slog.NewTextHandler(cfg.Lumberjack, nil))
		} else {
			logger = slog.Default()
		}
	}
	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		id := req.Header("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		req.WithContext(WithRequestID(req.Context(), id))
		depot.Set("request_id", id)
		start := time.Now()
		ctrl.CallNext(req, depot, res)
		dur := time.Since(start)
		status := res.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info("request",
			slog.String("id", id),
			slog.String("method", req.Method()),
			slog.String("path", req.URIPath()),
			slog.Int("status", status),
			slog.String("duration", dur.String()),
		)
	})
}

// Recover returns a hoop that converts a panic anywhere further down the
// chain into a 500 response instead of letting it escape Service.ServeHTTP.
func Recover(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", slog.Any("err", r), slog.String("stack", string(debug.Stack())))
				if !res.Committed() {
					_ = res.WriteJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
				}
			}
		}()
		ctrl.CallNext(req, depot, res)
	})
}

// Timeout returns a hoop that attaches a deadline of d to the request
// context before calling the rest of the chain. d <= 0 disables the
// timeout.
func Timeout(d time.Duration) Handler {
	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		if d > 0 {
			ctx, cancel := context.WithTimeout(req.Context(), d)
			defer cancel()
			req.WithContext(ctx)
		}
		ctrl.CallNext(req, depot, res)
	})
}
