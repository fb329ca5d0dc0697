// internal/ddc/packet.go
package ddc

import (
	"errors"
	"fmt"
)

// Bus geometry for DDC/CI. LOCKED by the protocol.
const (
	// SlaveAddress is the 7-bit DDC/CI address of a display.
	SlaveAddress uint16 = 0x37

	destAddrWrite byte = 0x6e // display, write direction (0x37 << 1)
	hostAddr      byte = 0x51 // source byte of host->display packets
	hostAddrRead  byte = 0x50 // virtual host address used in reply checksums

	lengthFlag byte = 0x80

	// MaxPayload is the largest payload one packet can carry.
	MaxPayload = 32

	// overhead is addr/source + length + checksum.
	overhead = 3
)

var (
	ErrNullResponse = errors.New("ddc: null response")
	ErrAllZero      = errors.New("ddc: reply is all zero")
	ErrChecksum     = errors.New("ddc: checksum mismatch")
	ErrMalformed    = errors.New("ddc: malformed reply")
)

// Encode frames payload as a host->display write packet.
// The slave address byte itself is sent by the bus layer.
//
// Layout:
//   0     source (0x51)
//   1     0x80 | len(payload)
//   2..   payload
//   last  xor checksum over 0x6e, source, length, payload
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("ddc: payload too long: %d > %d", len(payload), MaxPayload)
	}

	pkt := make([]byte, 0, len(payload)+overhead)
	pkt = append(pkt, hostAddr, lengthFlag|byte(len(payload)))
	pkt = append(pkt, payload...)
	pkt = append(pkt, checksum(destAddrWrite, pkt))
	return pkt, nil
}

// ReplySize is the number of bytes to read for a reply carrying n payload bytes.
func ReplySize(n int) int {
	return n + overhead
}

// Decode validates a display->host reply and returns its payload.
func Decode(reply []byte) ([]byte, error) {
	if len(reply) < overhead {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(reply))
	}
	if allZero(reply) {
		return nil, ErrAllZero
	}
	if reply[0] != destAddrWrite {
		return nil, fmt.Errorf("%w: source 0x%02x", ErrMalformed, reply[0])
	}
	if reply[1]&lengthFlag == 0 {
		return nil, fmt.Errorf("%w: length byte 0x%02x", ErrMalformed, reply[1])
	}

	n := int(reply[1] &^ lengthFlag)
	if n+overhead > len(reply) {
		return nil, fmt.Errorf("%w: length %d exceeds %d bytes read", ErrMalformed, n, len(reply))
	}

	body := reply[:2+n]
	if got, want := reply[2+n], checksum(hostAddrRead, body); got != want {
		return nil, fmt.Errorf("%w: got=0x%02x want=0x%02x", ErrChecksum, got, want)
	}
	if n == 0 {
		return nil, ErrNullResponse
	}

	out := make([]byte, n)
	copy(out, reply[2:2+n])
	return out, nil
}

func checksum(seed byte, b []byte) byte {
	c := seed
	for _, v := range b {
		c ^= v
	}
	return c
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Status codes for decode failures. They share the negative DDC range
// with bus statuses so one code can describe any failed exchange.
const (
	CodeNullResponse = -3007
	CodeChecksum     = -3008
	CodeAllZero      = -3009
	CodeMalformed    = -3010
)

// Code maps a Decode error to its status code. Unknown errors map to
// CodeMalformed; nil maps to 0.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNullResponse):
		return CodeNullResponse
	case errors.Is(err, ErrChecksum):
		return CodeChecksum
	case errors.Is(err, ErrAllZero):
		return CodeAllZero
	default:
		return CodeMalformed
	}
}
