package server

import (
	"context"
	"net/http"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
)

// RPCNamespace prefixes every method name exposed by the agent, so a
// fund request calls "IPCAgent.Fund".
const RPCNamespace = "IPCAgent"

// Endpoint is the HTTP path the JSON-RPC handler is mounted on.
const Endpoint = "/json_rpc"

// Server serves the agent API over HTTP.
type Server struct {
	srv *http.Server
}

// NewServer mounts the handler and prepares an HTTP server on addr.
func NewServer(addr string, hnd *AgentAPI) *Server {
	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(RPCNamespace, hnd)

	m := mux.NewRouter()
	m.Handle(Endpoint, rpcServer)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 30 * time.Second,
		},
	}
}

// ListenAndServe blocks serving requests until Shutdown is called or
// the listener fails.
func (s *Server) ListenAndServe() error {
	log.Infow("agent listening", "addr", s.srv.Addr, "endpoint", Endpoint)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
