// Package server exposes the inspector: a WebSocket endpoint for live input
// state and remap commands, plus the static page that talks to it.
package server

import (
	"context"
	"io/fs"
	"log"
	"net/http"

	"github.com/soar/inputmap/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	engine      hub.Submitter
	frontendFS  fs.FS
	addr        string
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, engine hub.Submitter, frontendFS fs.FS, addr string) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		engine:      engine,
		frontendFS:  frontendFS,
		addr:        addr,
	}
}

// Handler returns the routes served by ListenAndServe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.engine))

	// Static files (frontend)
	fileServer := http.FileServer(http.FS(s.frontendFS))
	mux.Handle("/", minifier().Middleware(fileServer))

	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
