package network

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/leterax/go-fpsview/internal/logger"
)

// Server publishes frame poses to every connected viewer
type Server struct {
	mu       sync.Mutex
	sessions map[uint32]*session
	closed   bool
	log      logger.Logger

	upgrader websocket.Upgrader
}

// session is one connected viewer
type session struct {
	id      uint32
	conn    io.ReadWriteCloser
	writeMu sync.Mutex

	mu     sync.Mutex
	name   string
	filter string
}

// NewServer creates a server with no sessions
func NewServer(log logger.Logger) *Server {
	return &Server{
		sessions: make(map[uint32]*session),
		log:      logger.Component(log, "pose-server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve accepts TCP viewers on l until it is closed
func (s *Server) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}
		go s.handle(conn)
	}
}

// ServeHTTP upgrades the request to a websocket session
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", logger.F("error", err))
		return
	}
	s.handle(newWSConn(ws))
}

// SessionCount returns the number of connected viewers
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handle(conn io.ReadWriteCloser) {
	sess := &session{id: uuid.New().ID(), conn: conn}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log := s.log.With(logger.F("session", sess.id))
	log.Info("viewer connected")

	defer func() {
		s.drop(sess)
		log.Info("viewer disconnected")
	}()

	if err := sess.write(EncodeIdentification(sess.id)); err != nil {
		log.Warn("failed to send identification", logger.F("error", err))
		return
	}

	if err := s.readPackets(sess, log); err != nil {
		log.Debug("session ended", logger.F("error", err))
	}
}

func (s *Server) readPackets(sess *session, log logger.Logger) error {
	var idBuf [1]byte
	for {
		if _, err := io.ReadFull(sess.conn, idBuf[:]); err != nil {
			return fmt.Errorf("failed to read packet ID: %w", err)
		}

		switch packetID := idBuf[0]; packetID {
		case PacketIDSubscribe:
			body := make([]byte, subscribeSize)
			if _, err := io.ReadFull(sess.conn, body); err != nil {
				return fmt.Errorf("failed to read subscription: %w", err)
			}
			sess.mu.Lock()
			sess.filter = fixedString(body)
			sess.mu.Unlock()
			log.Info("subscription changed", logger.F("frame", fixedString(body)))
		case PacketIDClientMetadata:
			body := make([]byte, clientMetadataSize)
			if _, err := io.ReadFull(sess.conn, body); err != nil {
				return fmt.Errorf("failed to read client metadata: %w", err)
			}
			sess.mu.Lock()
			sess.name = fixedString(body)
			sess.mu.Unlock()
			log.Info("viewer named", logger.F("name", fixedString(body)))
		default:
			return fmt.Errorf("%w: %d", ErrUnknownPacket, packetID)
		}
	}
}

func (sess *session) write(packet []byte) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_, err := sess.conn.Write(packet)
	return err
}

func (sess *session) wants(frame string) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.filter == "" || sess.filter == frame
}

func (s *Server) drop(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if ok {
		_ = sess.conn.Close()
	}
}

// broadcast sends packet to every session accepting frame; an empty frame
// reaches everyone
func (s *Server) broadcast(frame string, packet []byte) {
	s.mu.Lock()
	targets := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		targets = append(targets, sess)
	}
	s.mu.Unlock()

	for _, sess := range targets {
		if frame != "" && !sess.wants(frame) {
			continue
		}
		if err := sess.write(packet); err != nil {
			s.log.Warn("dropping viewer after write error",
				logger.F("session", sess.id), logger.F("error", err))
			s.drop(sess)
		}
	}
}

// BroadcastPose publishes a frame pose
func (s *Server) BroadcastPose(p FramePose) {
	s.broadcast(p.Frame, EncodeFramePose(p))
}

// BroadcastRemove tells viewers a frame is gone
func (s *Server) BroadcastRemove(frame string) {
	s.broadcast(frame, EncodeFrameName(PacketIDRemoveFrame, frame))
}

// BroadcastStatus sends a status line to all viewers
func (s *Server) BroadcastStatus(message string) {
	s.broadcast("", EncodeStatus(message))
}

// Close disconnects every viewer. Listeners passed to Serve are owned by
// the caller.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[uint32]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.conn.Close()
	}
	return nil
}
