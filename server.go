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
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Server wraps http.Server around a Service, adding graceful shutdown on
// SIGINT/SIGTERM. The core's external-engine boundary (spec §6) is
// deliberately the stdlib net/http acceptor here; a real deployment swaps
// this for whatever HTTP/1/2/3 + TLS engine it needs without touching
// Service or Router.
type Server struct {
	HTTP            *http.Server
	Logger          *slog.Logger
	shutdownTimeout time.Duration
}

// ServerConfig configures a Server, defaulting every zero-value field in
// NewServer.
type ServerConfig struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	TLSConfig         *tls.Config
}

// DefaultServerConfig returns a ServerConfig with the defaults NewServer
// would otherwise apply field-by-field, for callers that want to start
// from a sane baseline and override a few fields.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8080",
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// NewServer builds a Server around svc, applying cfg defaults for any
// zero-valued field.
func NewServer(cfg ServerConfig, svc *Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           svc,
		ReadTimeout:       defaultDur(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      defaultDur(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:       defaultDur(cfg.IdleTimeout, 120*time.Second),
		ReadHeaderTimeout: defaultDur(cfg.ReadHeaderTimeout, 5*time.Second),
		TLSConfig:         cfg.TLSConfig,
	}
	return &Server{HTTP: hs, Logger: logger, shutdownTimeout: defaultDur(cfg.ShutdownTimeout, 30*time.Second)}
}

func defaultDur(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}

// Start runs the server and blocks until ListenAndServe(TLS) returns,
// returning its error, or nil when the server was closed by Shutdown.
// ListenAndServe returns as soon as a shutdown begins, so Start does not
// wait for the signal goroutine's Shutdown call to finish draining
// connections.
func (s *Server) Start() error {
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		s.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.HTTP.Shutdown(ctx); err != nil {
			s.Logger.Error("shutdown error", slog.Any("err", err))
		}
	}()
	s.Logger.Info("server starting", slog.String("addr", s.HTTP.Addr))
	var err error
	if s.HTTP.TLSConfig != nil {
		if len(s.HTTP.TLSConfig.Certificates) == 0 && s.HTTP.TLSConfig.GetCertificate == nil {
			return errors.New("talus: TLSConfig has no certificates and no GetCertificate function")
		}
		err = s.HTTP.ListenAndServeTLS("", "")
	} else {
		err = s.HTTP.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
