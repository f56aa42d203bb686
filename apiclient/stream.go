package apiclient

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/kvmtools/pastekey/keymap"
)

// TargetStream is a long-lived connection registered as the paste target.
// The server writes keystroke packets into it until the stream closes or a
// new target replaces it.
type TargetStream struct {
	conn net.Conn
	r    *bufio.Reader
}

// AttachTarget connects to the server and registers this connection as the
// target device. The caller owns the stream and must Close it.
func (c *Client) AttachTarget(ctx context.Context) (*TargetStream, error) {
	conn, err := c.transport.dialStream(ctx, "target/attach")
	if err != nil {
		return nil, err
	}
	return &TargetStream{conn: conn, r: bufio.NewReader(conn)}, nil
}

// ReadState blocks until the next keystroke packet arrives.
func (s *TargetStream) ReadState() (keymap.InputState, error) {
	var st keymap.InputState
	header := make([]byte, 2)
	if _, err := io.ReadFull(s.r, header); err != nil {
		return st, err
	}
	body := make([]byte, int(header[1]))
	if _, err := io.ReadFull(s.r, body); err != nil {
		return st, err
	}
	if err := st.UnmarshalBinary(append(header, body...)); err != nil {
		return st, err
	}
	return st, nil
}

func (s *TargetStream) Close() error { return s.conn.Close() }

// CaptureStream is a long-lived connection feeding raw console keystrokes to
// the server, which forwards them to the target while capture is enabled.
type CaptureStream struct {
	conn net.Conn
}

// OpenCapture connects to the server's raw keystroke ingestion stream.
func (c *Client) OpenCapture(ctx context.Context) (*CaptureStream, error) {
	conn, err := c.transport.dialStream(ctx, "capture/stream")
	if err != nil {
		return nil, err
	}
	return &CaptureStream{conn: conn}, nil
}

// WriteState sends one keystroke packet.
func (s *CaptureStream) WriteState(st keymap.InputState) error {
	data, err := st.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = s.conn.Write(data)
	return err
}

func (s *CaptureStream) Close() error { return s.conn.Close() }

// dialStream dials the server, performs the auth handshake when a password
// is configured, and sends the stream path. The returned conn carries the
// stream payload from then on.
func (t *Transport) dialStream(ctx context.Context, path string) (net.Conn, error) {
	if t.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	d := &net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	if t.cfg.Password != "" {
		if t.cfg.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
		}
		wrapped, err := t.authenticate(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		conn = wrapped
		_ = conn.SetWriteDeadline(time.Time{})
	}

	if _, err := conn.Write([]byte(strings.ToLower(path) + "\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return conn, nil
}
