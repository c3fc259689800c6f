// Package monitor streams the live pose to websocket clients.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cfoust/mocap/pkg/pose"
	"github.com/cfoust/mocap/pkg/utils"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

const WRITE_TIMEOUT = 5 * time.Second

// Server is an http.Handler that upgrades every request to a websocket and
// sends it CBOR-encoded pose snapshots.
type Server struct {
	snapshots *utils.Topic[pose.Snapshot]
	// latest is sent to clients as soon as they connect.
	latest func() pose.Snapshot
}

func NewServer(snapshots *utils.Topic[pose.Snapshot], latest func() pose.Snapshot) *Server {
	return &Server{
		snapshots: snapshots,
		latest:    latest,
	}
}

func Encode(snapshot pose.Snapshot) ([]byte, error) {
	return cbor.Marshal(snapshot)
}

func Decode(data []byte) (pose.Snapshot, error) {
	var snapshot pose.Snapshot
	err := cbor.Unmarshal(data, &snapshot)
	return snapshot, err
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to accept monitor client")
		return
	}

	defer c.Close(websocket.StatusInternalError, "operational fault during monitor")

	log.Debug().Str("remote", r.RemoteAddr).Msg("monitor client connected")

	err = s.Subscribe(r.Context(), c)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("monitor client disconnected")
		return
	}
}

// Subscribe sends the latest snapshot and then every published one until the
// client goes away or falls behind.
func (s *Server) Subscribe(ctx context.Context, c *websocket.Conn) error {
	ctx = c.CloseRead(ctx)

	subscriber := s.snapshots.Subscribe()
	defer subscriber.Done()

	if err := s.send(ctx, c, s.latest()); err != nil {
		return err
	}

	for {
		select {
		case snapshot := <-subscriber.Recv():
			if err := s.send(ctx, c, snapshot); err != nil {
				return err
			}
		case <-subscriber.Slow():
			c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) send(ctx context.Context, c *websocket.Conn, snapshot pose.Snapshot) error {
	data, err := Encode(snapshot)
	if err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}
	return WriteTimeout(ctx, WRITE_TIMEOUT, c, data)
}

func WriteTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

// Serve handles monitor clients on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler: s,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.Serve(listener)
	}()

	log.Info().Str("address", listener.Addr().String()).Msg("monitor listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
