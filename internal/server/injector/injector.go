// Package injector owns the virtual keyboard attached to the remote target:
// it replays pasted text as HID keystroke packets and gates the raw capture
// stream coming from the console.
package injector

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/log"
	"github.com/kvmtools/pastekey/keymap"
	"github.com/kvmtools/pastekey/layout"
)

// Injector forwards keystroke packets to the single attached target device.
// At most one target is attached at a time; a new attachment replaces the
// previous one.
type Injector struct {
	mu       sync.Mutex
	target   net.Conn
	capture  bool
	keyDelay time.Duration
	logger   *slog.Logger
	raw      log.RawLogger
}

// New creates an Injector. Capture starts enabled: raw console keystrokes
// flow to the target until a paste dialog suspends them.
func New(keyDelay time.Duration, logger *slog.Logger, rawLogger log.RawLogger) *Injector {
	return &Injector{
		capture:  true,
		keyDelay: keyDelay,
		logger:   logger,
		raw:      rawLogger,
	}
}

// AttachTarget registers conn as the target device stream. Any previously
// attached target is closed.
func (i *Injector) AttachTarget(conn net.Conn) {
	i.mu.Lock()
	prev := i.target
	i.target = conn
	i.mu.Unlock()
	if prev != nil {
		i.logger.Info("replacing attached target", "remote", prev.RemoteAddr())
		_ = prev.Close()
	}
}

// DetachTarget removes conn if it is still the attached target.
func (i *Injector) DetachTarget(conn net.Conn) {
	i.mu.Lock()
	if i.target == conn {
		i.target = nil
	}
	i.mu.Unlock()
}

// HasTarget reports whether a target device is currently attached.
func (i *Injector) HasTarget() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.target != nil
}

// SetCapture toggles forwarding of raw console keystrokes to the target.
func (i *Injector) SetCapture(enabled bool) {
	i.mu.Lock()
	i.capture = enabled
	i.mu.Unlock()
	i.logger.Info("keyboard capture", "enabled", enabled)
}

// Capture returns the current capture flag.
func (i *Injector) Capture() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.capture
}

// ForwardRaw sends a raw console keystroke packet to the target. Packets are
// dropped while capture is disabled (the console is typing into a local
// dialog, not the target).
func (i *Injector) ForwardRaw(st keymap.InputState) error {
	i.mu.Lock()
	if !i.capture {
		i.mu.Unlock()
		return nil
	}
	conn := i.target
	i.mu.Unlock()
	if conn == nil {
		return nil
	}
	return i.writeState(conn, st)
}

// Paste replays text as keystrokes on the attached target. Text must already
// be layout-translated to US characters. The returned response always
// carries a status code; a non-nil error is reserved for programming errors.
func (i *Injector) Paste(text string) (*apitypes.PasteResponse, error) {
	if utf8.RuneCountInString(text) > layout.MaxTextLen {
		return &apitypes.PasteResponse{
			Status:  apitypes.PasteTooLong,
			Message: fmt.Sprintf("text exceeds %d characters", layout.MaxTextLen),
		}, nil
	}
	for j := 0; j < len(text); j++ {
		if !keymap.Typeable(text[j]) {
			return &apitypes.PasteResponse{
				Status:  apitypes.PasteUntypeable,
				Message: fmt.Sprintf("character %q cannot be typed on a US layout", text[j]),
			}, nil
		}
	}

	i.mu.Lock()
	conn := i.target
	i.mu.Unlock()
	if conn == nil {
		return &apitypes.PasteResponse{
			Status:  apitypes.PasteNoTarget,
			Message: "no target device attached",
		}, nil
	}

	typed := 0
	for j := 0; j < len(text); j++ {
		press, release := keymap.TypeChar(text[j])
		if err := i.writeState(conn, press); err != nil {
			return i.writeFailure(conn, typed, err), nil
		}
		if err := i.writeState(conn, release); err != nil {
			return i.writeFailure(conn, typed, err), nil
		}
		typed++
		if i.keyDelay > 0 && j < len(text)-1 {
			time.Sleep(i.keyDelay)
		}
	}

	i.logger.Info("paste injected", "chars", typed)
	return &apitypes.PasteResponse{Status: apitypes.PasteOK, Typed: typed}, nil
}

func (i *Injector) writeFailure(conn net.Conn, typed int, err error) *apitypes.PasteResponse {
	i.logger.Error("target write failed", "error", err)
	i.DetachTarget(conn)
	_ = conn.Close()
	return &apitypes.PasteResponse{
		Status:  apitypes.PasteWriteFailure,
		Message: fmt.Sprintf("target write failed after %d characters: %v", typed, err),
		Typed:   typed,
	}
}

func (i *Injector) writeState(conn net.Conn, st keymap.InputState) error {
	data, err := st.MarshalBinary()
	if err != nil {
		return err
	}
	i.raw.Log(false, data)
	_, err = conn.Write(data)
	return err
}
