// Package network implements the pose stream: a small big-endian binary
// protocol that carries frame poses from a publisher to viewers over TCP or
// websocket.
package network

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	ServerPort    = 20100
	WebSocketPath = "/poses"

	FrameNameSize = 64
	StatusSize    = 256
)

// ClientBound packet IDs
const (
	PacketIDIdentification uint8 = 0x00
	PacketIDFramePose      uint8 = 0x01
	PacketIDRemoveFrame    uint8 = 0x02
	PacketIDStatus         uint8 = 0x03
)

// ServerBound packet IDs
const (
	PacketIDSubscribe      uint8 = 0x00
	PacketIDClientMetadata uint8 = 0x01
)

// Body sizes, excluding the id byte
const (
	identificationSize = 4
	framePoseSize      = FrameNameSize + 8 + 3*8 + 4*8
	removeFrameSize    = FrameNameSize
	statusSize         = StatusSize
	subscribeSize      = FrameNameSize
	clientMetadataSize = FrameNameSize
)

// ErrUnknownPacket is returned when a packet id is not part of the protocol
var ErrUnknownPacket = errors.New("unknown packet ID")

// FramePose is the decoded body of a FramePose packet
type FramePose struct {
	Frame       string
	Stamp       time.Time
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// putFixedString copies s into dst, truncating at a rune boundary or
// padding with zeros
func putFixedString(dst []byte, s string) {
	b := []byte(s)
	if len(b) > len(dst) {
		cut := len(dst)
		for cut > 0 && !utf8.RuneStart(b[cut]) {
			cut--
		}
		b = b[:cut]
	}
	n := copy(dst, b)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// fixedString extracts a null-terminated string
func fixedString(src []byte) string {
	s := string(src)
	if idx := strings.IndexByte(s, 0); idx >= 0 {
		s = s[:idx]
	}
	return s
}

func putFloat64(dst []byte, f float64) {
	binary.BigEndian.PutUint64(dst, math.Float64bits(f))
}

func float64At(src []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(src))
}

// EncodeFramePose builds a FramePose packet
func EncodeFramePose(p FramePose) []byte {
	// Packet structure: id(U8) + frame(U8[64]) + stamp(I64 ns) + pos(F64[3]) + quat w,x,y,z(F64[4])
	packet := make([]byte, 1+framePoseSize)
	packet[0] = PacketIDFramePose
	putFixedString(packet[1:1+FrameNameSize], p.Frame)

	off := 1 + FrameNameSize
	var nanos int64
	if !p.Stamp.IsZero() {
		nanos = p.Stamp.UnixNano()
	}
	binary.BigEndian.PutUint64(packet[off:], uint64(nanos))
	off += 8
	for _, v := range []float64{
		p.Position[0], p.Position[1], p.Position[2],
		p.Orientation.W, p.Orientation.V[0], p.Orientation.V[1], p.Orientation.V[2],
	} {
		putFloat64(packet[off:], v)
		off += 8
	}
	return packet
}

// decodeFramePose parses a FramePose body
func decodeFramePose(body []byte) FramePose {
	var p FramePose
	p.Frame = fixedString(body[:FrameNameSize])

	off := FrameNameSize
	if nanos := int64(binary.BigEndian.Uint64(body[off:])); nanos != 0 {
		p.Stamp = time.Unix(0, nanos)
	}
	off += 8

	var vals [7]float64
	for i := range vals {
		vals[i] = float64At(body[off:])
		off += 8
	}
	p.Position = mgl64.Vec3{vals[0], vals[1], vals[2]}
	p.Orientation = mgl64.Quat{W: vals[3], V: mgl64.Vec3{vals[4], vals[5], vals[6]}}
	return p
}

// EncodeFrameName builds a packet whose body is a single frame name
func EncodeFrameName(id uint8, frame string) []byte {
	packet := make([]byte, 1+FrameNameSize)
	packet[0] = id
	putFixedString(packet[1:], frame)
	return packet
}

// EncodeStatus builds a Status packet
func EncodeStatus(message string) []byte {
	packet := make([]byte, 1+statusSize)
	packet[0] = PacketIDStatus
	putFixedString(packet[1:], message)
	return packet
}

// EncodeIdentification builds an Identification packet
func EncodeIdentification(sessionID uint32) []byte {
	packet := make([]byte, 1+identificationSize)
	packet[0] = PacketIDIdentification
	binary.BigEndian.PutUint32(packet[1:], sessionID)
	return packet
}
