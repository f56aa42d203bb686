// Package dialog implements the paste-dialog state machine of the remote
// virtual keyboard. The controller is frontend-agnostic: a UI feeds it
// events (open, text change, language change, submit, cancel) and renders
// its Snapshot. Remote calls and keyboard-capture toggling are injected as
// capabilities so nothing here depends on global state.
package dialog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/layout"
)

// State enumerates the dialog lifecycle.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Paster is the remote paste operation consumed by the dialog.
type Paster interface {
	PasteCtx(ctx context.Context, text, language string) (*apitypes.PasteResponse, error)
}

// CaptureToggler suspends or resumes forwarding of raw keystrokes to the
// remote target while the dialog is open.
type CaptureToggler interface {
	CaptureSetCtx(ctx context.Context, enabled bool) (*apitypes.CaptureResponse, error)
}

// Localization keys for errors the controller generates itself. Remote
// rejections carry their own message text instead.
const (
	ErrKeyTransport = "paste.error.transport"
)

// Snapshot is an immutable view of the dialog for rendering.
type Snapshot struct {
	State    State
	Text     string
	Language layout.Language
	// Valid mirrors the validator against the current language. Invalid
	// text is flagged, never blocked.
	Valid bool
	// ErrorKey is a localization key for controller-generated errors;
	// ErrorMessage carries remote rejection text verbatim. At most one is
	// set.
	ErrorKey     string
	ErrorMessage string
}

// Busy reports whether a submission is in flight.
func (s Snapshot) Busy() bool { return s.State == StateSubmitting }

// Controller orchestrates dialog state. All methods are safe for concurrent
// use, though a UI normally drives it from a single event loop.
type Controller struct {
	mu      sync.Mutex
	paster  Paster
	capture CaptureToggler
	logger  *slog.Logger

	state    State
	text     string
	language layout.Language
	valid    bool
	errKey   string
	errMsg   string
}

// NewController creates a closed dialog defaulting to the English layout.
func NewController(paster Paster, capture CaptureToggler, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		paster:   paster,
		capture:  capture,
		logger:   logger,
		state:    StateClosed,
		language: layout.LangEN,
		valid:    true,
	}
}

// Open transitions the dialog to open, clearing any previous session's text
// and error, and suspends keyboard capture so typed keys stay local. A
// failure to suspend capture keeps the dialog closed.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := captureErr(c.capture.CaptureSetCtx(ctx, false)); err != nil {
		c.logger.Error("suspend keyboard capture", "error", err)
		return err
	}

	c.mu.Lock()
	c.state = StateOpen
	c.text = ""
	c.valid = true
	c.errKey = ""
	c.errMsg = ""
	c.mu.Unlock()
	return nil
}

// Close cancels the dialog and resumes keyboard capture. It is a no-op while
// a submission is in flight (the user waits for completion) or when already
// closed.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.mu.Unlock()

	if err := captureErr(c.capture.CaptureSetCtx(ctx, true)); err != nil {
		c.logger.Error("resume keyboard capture", "error", err)
		return err
	}
	return nil
}

// SetText replaces the dialog text, truncating at the paste length bound,
// and re-validates against the current language. Ignored unless the dialog
// is open and idle.
func (c *Controller) SetText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return
	}
	c.text = truncateRunes(s, layout.MaxTextLen)
	c.valid = layout.Valid(c.text, c.language)
}

// SetLanguage switches the input language and re-validates the current text.
func (c *Controller) SetLanguage(l layout.Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return
	}
	c.language = l
	c.valid = layout.Valid(c.text, l)
}

// Submit sends the current text through the paste operation. Russian text is
// first translated to the equivalent US-layout key sequence. Submitting with
// empty text, while closed, or while a submission is already pending is a
// no-op.
//
// A status 0 response clears the dialog and closes it (resuming capture);
// a non-zero status surfaces the response message and keeps text intact; a
// transport failure keeps text intact and surfaces a generic localized
// error.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateOpen || c.text == "" {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSubmitting
	c.errKey = ""
	c.errMsg = ""
	text := c.text
	lang := c.language
	c.mu.Unlock()

	sendText := text
	if lang == layout.LangRU {
		sendText = layout.TranslateRuToEn(text)
	}

	resp, err := c.paster.PasteCtx(ctx, sendText, string(lang))

	c.mu.Lock()
	c.state = StateOpen
	if err != nil {
		c.logger.Error("paste call failed", "error", err)
		if ae, ok := err.(*apitypes.ApiError); ok {
			c.errMsg = ae.Detail
		} else {
			c.errKey = ErrKeyTransport
		}
		c.mu.Unlock()
		return err
	}
	if resp.Status != apitypes.PasteOK {
		c.logger.Warn("paste rejected", "status", resp.Status, "message", resp.Message)
		c.errMsg = resp.Message
		c.mu.Unlock()
		return nil
	}

	c.text = ""
	c.valid = true
	c.state = StateClosed
	c.mu.Unlock()

	if cerr := captureErr(c.capture.CaptureSetCtx(ctx, true)); cerr != nil {
		c.logger.Error("resume keyboard capture", "error", cerr)
	}
	return nil
}

// Snapshot returns the current dialog state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:        c.state,
		Text:         c.text,
		Language:     c.language,
		Valid:        c.valid,
		ErrorKey:     c.errKey,
		ErrorMessage: c.errMsg,
	}
}

func captureErr(_ *apitypes.CaptureResponse, err error) error {
	return err
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
