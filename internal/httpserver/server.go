package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
)

type Server struct {
	server          *http.Server
	shutDownTimeout time.Duration
	log             logrus.FieldLogger

	// drains run in order after the listener stops.
	drains []func(ctx context.Context) error
}

func New(conf config.HTTPServer, handler http.Handler, log logrus.FieldLogger) *Server {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		Addr:         fmt.Sprintf("%v:%v", conf.BindAddress, conf.BindPort),
	}

	s := &Server{
		server:          srv,
		shutDownTimeout: conf.ShutdownTimeout,
		log:             log.WithField("source", "httpserver"),
	}
	return s
}

// OnShutdown registers fn to run once in-flight requests have finished.
func (s *Server) OnShutdown(fn func(ctx context.Context) error) {
	s.drains = append(s.drains, fn)
}

// Run serves until SIGINT, SIGTERM or the end of ctx, then shuts down within
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("[HTTPSERVER] listening on: ", s.server.Addr)

	serveErr := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case <-sigCtx.Done():
	case runErr = <-serveErr:
		s.log.WithError(runErr).Error("[HTTPSERVER] http server error")
	}

	s.log.Info("[SHUTDOWN] http server shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutDownTimeout)
	defer cancel()

	errs := []error{runErr, s.server.Shutdown(shutdownCtx)}
	for _, drain := range s.drains {
		errs = append(errs, drain(shutdownCtx))
	}
	return errors.Join(errs...)
}
