// Package server exposes the dispatcher over a local unix socket using
// length-prefixed frames. The server owns only the listener and
// connection lifecycles; each request line is handed to the dispatcher
// as-is and the response written back in one frame.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/qrow2022/wazuh/internal/wdb"
)

// Options configures a Server.
type Options struct {
	Logger *slog.Logger

	// MaxRequestSize bounds one request frame in bytes. Defaults to 64 KiB.
	MaxRequestSize int
}

const defaultMaxRequestSize = 64 * 1024

// Server accepts connections on a unix socket and serves request frames
// through the dispatcher, one goroutine per connection.
type Server struct {
	socketPath string
	dispatcher *wdb.Dispatcher
	logger     *slog.Logger
	maxRequest int
}

// New returns a Server listening (once started) on socketPath.
func New(socketPath string, dispatcher *wdb.Dispatcher, opts *Options) *Server {
	logger := slog.New(slog.DiscardHandler)
	maxRequest := defaultMaxRequestSize
	if opts != nil {
		if opts.Logger != nil {
			logger = opts.Logger
		}
		if opts.MaxRequestSize > 0 {
			maxRequest = opts.MaxRequestSize
		}
	}
	return &Server{
		socketPath: socketPath,
		dispatcher: dispatcher,
		logger:     logger,
		maxRequest: maxRequest,
	}
}

// ListenAndServe listens on the socket and serves until ctx is
// cancelled, then closes the listener and waits for in-flight
// connections to drain.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o750); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	// A previous unclean shutdown may have left the socket file behind.
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	s.logger.Info("listening", "socket", s.socketPath)

	var conns sync.WaitGroup
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return listener.Close()
	})
	g.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			conns.Add(1)
			go func() {
				defer conns.Done()
				// An idle connection would otherwise block in ReadFrame
				// forever and stall shutdown; closing it unblocks the
				// read with net.ErrClosed, which serveConn treats as a
				// clean exit.
				stop := context.AfterFunc(ctx, func() { conn.Close() })
				defer stop()
				s.serveConn(ctx, conn)
			}()
		}
	})

	err = g.Wait()
	conns.Wait()
	s.logger.Info("stopped", "socket", s.socketPath)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connID := uuid.New().String()
	logger := s.logger.With("conn", connID)
	logger.Debug("connection opened")

	for {
		request, err := ReadFrame(conn, s.maxRequest)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warn("read failed", "error", err)
			}
			logger.Debug("connection closed")
			return
		}

		// A request that reached the dispatcher runs to completion even
		// when the server is shutting down.
		status, response := s.dispatcher.Parse(context.WithoutCancel(ctx), request)
		logger.Debug("request served", "status", status)

		if err := WriteFrame(conn, response); err != nil {
			logger.Warn("write failed", "error", err)
			return
		}
	}
}
