package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/kvmtools/pastekey/internal/server/injector"
	"github.com/kvmtools/pastekey/keymap"
)

// TargetAttachHandler returns a stream handler for the target device side.
// The connection stays attached to the injector and receives keystroke
// packets until the peer disconnects or a new target replaces it.
func TargetAttachHandler(inj *injector.Injector) StreamHandlerFunc {
	return func(conn net.Conn, logger *slog.Logger) error {
		defer conn.Close()

		inj.AttachTarget(conn)
		defer inj.DetachTarget(conn)
		logger.Info("target attached")

		// The target never sends payload data; a read unblocking means it
		// disconnected (or was replaced and closed by the injector).
		buf := make([]byte, 1)
		for {
			if _, err := conn.Read(buf); err != nil {
				if err == io.EOF || errors.Is(err, net.ErrClosed) {
					logger.Info("target detached")
					return nil
				}
				logger.Info("target detached", "reason", err)
				return nil
			}
		}
	}
}

// CaptureStreamHandler returns a stream handler for the console's raw
// keystroke stream. Packets use the keymap wire format and are forwarded to
// the target only while capture is enabled.
func CaptureStreamHandler(inj *injector.Injector) StreamHandlerFunc {
	return func(conn net.Conn, logger *slog.Logger) error {
		defer conn.Close()
		logger.Info("capture stream attached")

		for {
			// Read header (2 bytes: modifiers + key count)
			header := make([]byte, 2)
			if _, err := io.ReadFull(conn, header); err != nil {
				if err == io.EOF {
					logger.Info("capture stream closed")
					return nil
				}
				return fmt.Errorf("read header: %w", err)
			}

			keyCount := header[1]
			keys := make([]byte, keyCount)
			if keyCount > 0 {
				if _, err := io.ReadFull(conn, keys); err != nil {
					return fmt.Errorf("read keys: %w", err)
				}
			}

			var state keymap.InputState
			if err := state.UnmarshalBinary(append(header, keys...)); err != nil {
				return fmt.Errorf("unmarshal input state: %w", err)
			}
			if err := inj.ForwardRaw(state); err != nil {
				return fmt.Errorf("forward keystroke: %w", err)
			}
		}
	}
}
