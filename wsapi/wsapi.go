// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package wsapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/ipenkin/ex-timestamping/blockchain"
)

const (
	httpOK       = 200
	httpBad      = 400
	httpNotFound = 404
	httpError    = 500
)

// ServicesPrefix is where every service API is mounted, under the service
// name.
const ServicesPrefix = "/api/services"

const shutdownTimeout = 5 * time.Second

// Server is the public HTTP API of the node.
type Server struct {
	router *mux.Router
	server *http.Server
}

// NewServer wires the API of every service registered in ctx.Blockchain.
func NewServer(address string, ctx *blockchain.ApiContext) *Server {
	router := mux.NewRouter()
	router.Use(logRequests)

	api := router.PathPrefix(ServicesPrefix).Subrouter()
	for _, s := range ctx.Blockchain.Services() {
		wsLog.Debugf("Setting handlers for %s", s.Name())
		s.WireAPI(ctx, api.PathPrefix("/"+s.Name()).Subrouter())
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         address,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.server.Addr)
	}
	wsLog.Infof("Starting server on %s", ln.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- s.server.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	wsLog.Info("Stopping server")
	return s.server.Shutdown(sctx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		wsLog.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
