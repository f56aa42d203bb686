package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Packet layout on the wire: a 4-byte big-endian length covering the rest,
// a 12-byte nonce whose low 8 bytes hold a per-direction send counter, then
// the ChaCha20-Poly1305 ciphertext.
const (
	nonceSize     = 12
	maxPacketSize = 2 * 1024 * 1024
)

// Conn encrypts a net.Conn packet-wise once the handshake has produced a
// session key. Each Write seals one packet; Read buffers decrypted plaintext
// so callers may read in arbitrary chunks.
type Conn struct {
	net.Conn
	aead    cipher.AEAD
	sendCtr uint64
	recvBuf bytes.Buffer
	mu      sync.Mutex
}

// WrapConn layers packet encryption over conn using the given session key.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead}, nil
}

func (s *Conn) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkt := make([]byte, 4+nonceSize, 4+nonceSize+len(p)+s.aead.Overhead())
	binary.BigEndian.PutUint64(pkt[4+nonceSize-8:], s.sendCtr)
	s.sendCtr++

	pkt = s.aead.Seal(pkt, pkt[4:4+nonceSize], p, nil)
	binary.BigEndian.PutUint32(pkt[:4], uint32(len(pkt)-4))

	if i, err := s.Conn.Write(pkt); err != nil {
		return i, err
	}
	return len(p), nil
}

func (s *Conn) Read(p []byte) (int, error) {
	if s.recvBuf.Len() == 0 {
		pt, err := s.readPacket()
		if err != nil {
			return 0, err
		}
		s.recvBuf.Write(pt)
	}
	return s.recvBuf.Read(p)
}

func (s *Conn) readPacket() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(s.Conn, hdr[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(hdr[:])
	if length < nonceSize || length > maxPacketSize {
		return nil, errors.New("auth: malformed packet length")
	}

	pkt := make([]byte, length)
	if _, err := io.ReadFull(s.Conn, pkt); err != nil {
		return nil, err
	}
	return s.aead.Open(nil, pkt[:nonceSize], pkt[nonceSize:], nil)
}
