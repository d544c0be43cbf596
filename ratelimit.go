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
	"math"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the RateLimit hoop.
type RateLimitConfig struct {
	Rate            float64
	Burst           int
	CleanupInterval time.Duration
	StaleAfter      time.Duration
	KeyFunc         func(*Request) string
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimit returns a hoop enforcing per-client rate limiting with a token
// bucket. When the limit is exceeded, it writes a 429 with Retry-After and
// stops the chain.
func RateLimit(cfg RateLimitConfig) Handler {
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}
	if cfg.Burst < 1 {
		cfg.Burst = 20
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 5 * time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = defaultKeyFunc
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*bucket)
	)

	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			now := time.Now()
			for k, b := range clients {
				if now.Sub(b.lastSeen) > cfg.StaleAfter {
					delete(clients, k)
				}
			}
			mu.Unlock()
		}
	}()

	return HandlerFunc(func(req *Request, depot *Depot, res *Response, ctrl *FlowCtrl) {
		key := cfg.KeyFunc(req)
		now := time.Now()

		mu.Lock()
		b, ok := clients[key]
		if !ok {
			b = &bucket{tokens: float64(cfg.Burst), lastSeen: now}
			clients[key] = b
		}

		elapsed := now.Sub(b.lastSeen).Seconds()
		b.tokens += elapsed * cfg.Rate
		if b.tokens > float64(cfg.Burst) {
			b.tokens = float64(cfg.Burst)
		}
		b.lastSeen = now

		if b.tokens < 1 {
			retryAfter := int(math.Ceil((1 - b.tokens) / cfg.Rate))
			mu.Unlock()
			res.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			_ = res.WriteJSON(429, ErrorResponse{Error: "rate limit exceeded"})
			return
		}

		b.tokens--
		mu.Unlock()
		ctrl.CallNext(req, depot, res)
	})
}

func defaultKeyFunc(req *Request) string {
	if xff := req.Header("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr())
	if err != nil {
		return req.RemoteAddr()
	}
	return host
}
