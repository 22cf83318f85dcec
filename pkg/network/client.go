package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

// Client represents a connection to a pose publisher
type Client struct {
	conn      io.ReadWriteCloser
	writeMu   sync.Mutex
	sessionID uint32
	name      string

	OnIdentification func(sessionID uint32)
	OnFramePose      func(frame string, stamp time.Time, position mgl64.Vec3, orientation mgl64.Quat)
	OnFrameRemove    func(frame string)
	OnStatus         func(message string)
}

// NewClient creates a new client connected over TCP to the publisher at address
func NewClient(address string) (*Client, error) {
	if !strings.Contains(address, ":") {
		address = fmt.Sprintf("%s:%d", address, ServerPort)
	}

	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pose publisher: %w", err)
	}

	return NewClientConn(conn), nil
}

// DialWebSocket creates a new client connected to a websocket pose endpoint,
// e.g. ws://host:20101/poses
func DialWebSocket(url string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pose publisher: %w", err)
	}

	return NewClientConn(newWSConn(ws)), nil
}

// NewClientConn wraps an established connection
func NewClientConn(conn io.ReadWriteCloser) *Client {
	return &Client{conn: conn}
}

// Close closes the connection to the publisher
func (c *Client) Close() error {
	return c.conn.Close()
}

// SessionID returns the id assigned by the publisher, 0 before identification
func (c *Client) SessionID() uint32 {
	return c.sessionID
}

// SetName sets the name reported in client metadata
func (c *Client) SetName(name string) {
	c.name = name
}

func (c *Client) write(packet []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(packet)
	return err
}

// SendClientMetadata sends the client name to the publisher
func (c *Client) SendClientMetadata() error {
	// Packet structure: id(U8) + name(U8[64])
	return c.write(EncodeFrameName(PacketIDClientMetadata, c.name))
}

// SendSubscribe restricts the stream to one frame; an empty frame selects all
func (c *Client) SendSubscribe(frame string) error {
	// Packet structure: id(U8) + frame(U8[64])
	return c.write(EncodeFrameName(PacketIDSubscribe, frame))
}

// ProcessPackets reads packets until the connection fails or closes
func (c *Client) ProcessPackets() error {
	var idBuf [1]byte
	for {
		if _, err := io.ReadFull(c.conn, idBuf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("connection closed by publisher")
			}
			return fmt.Errorf("failed to read packet ID: %w", err)
		}

		var err error
		switch packetID := idBuf[0]; packetID {
		case PacketIDIdentification:
			err = c.handleIdentification()
		case PacketIDFramePose:
			err = c.handleFramePose()
		case PacketIDRemoveFrame:
			err = c.handleRemoveFrame()
		case PacketIDStatus:
			err = c.handleStatus()
		default:
			err = fmt.Errorf("%w: %d", ErrUnknownPacket, packetID)
		}
		if err != nil {
			return err
		}
	}
}

func (c *Client) readBody(size int, what string) ([]byte, error) {
	body := make([]byte, size)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", what, err)
	}
	return body, nil
}

func (c *Client) handleIdentification() error {
	body, err := c.readBody(identificationSize, "session ID")
	if err != nil {
		return err
	}

	c.sessionID = binary.BigEndian.Uint32(body)
	if c.OnIdentification != nil {
		c.OnIdentification(c.sessionID)
	}
	return nil
}

func (c *Client) handleFramePose() error {
	body, err := c.readBody(framePoseSize, "frame pose")
	if err != nil {
		return err
	}

	p := decodeFramePose(body)
	if c.OnFramePose != nil {
		c.OnFramePose(p.Frame, p.Stamp, p.Position, p.Orientation)
	}
	return nil
}

func (c *Client) handleRemoveFrame() error {
	body, err := c.readBody(removeFrameSize, "frame name")
	if err != nil {
		return err
	}

	if c.OnFrameRemove != nil {
		c.OnFrameRemove(fixedString(body))
	}
	return nil
}

func (c *Client) handleStatus() error {
	body, err := c.readBody(statusSize, "status message")
	if err != nil {
		return err
	}

	if c.OnStatus != nil {
		c.OnStatus(fixedString(body))
	}
	return nil
}
