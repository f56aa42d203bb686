package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/layout"
)

type fakePaster struct {
	lastText string
	lastLang string
	resp     *apitypes.PasteResponse
	err      error
	// when set, PasteCtx blocks until released
	block   chan struct{}
	started chan struct{}
	calls   int
}

func (f *fakePaster) PasteCtx(_ context.Context, text, language string) (*apitypes.PasteResponse, error) {
	f.calls++
	f.lastText = text
	f.lastLang = language
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

type fakeCapture struct {
	enabled bool
	err     error
	calls   []bool
}

func (f *fakeCapture) CaptureSetCtx(_ context.Context, enabled bool) (*apitypes.CaptureResponse, error) {
	f.calls = append(f.calls, enabled)
	if f.err != nil {
		return nil, f.err
	}
	f.enabled = enabled
	return &apitypes.CaptureResponse{Enabled: enabled}, nil
}

func newTestController(p *fakePaster, c *fakeCapture) *Controller {
	return NewController(p, c, nil)
}

func TestOpenSuspendsCaptureAndResetsState(t *testing.T) {
	p := &fakePaster{resp: &apitypes.PasteResponse{Status: apitypes.PasteNoTarget, Message: "no target"}}
	cap := &fakeCapture{enabled: true}
	c := newTestController(p, cap)

	require.NoError(t, c.Open(context.Background()))
	c.SetText("stale")
	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, "no target", c.Snapshot().ErrorMessage)
	require.NoError(t, c.Close(context.Background()))

	// reopening clears text and error from the previous session
	require.NoError(t, c.Open(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Empty(t, snap.Text)
	assert.Empty(t, snap.ErrorMessage)
	assert.Empty(t, snap.ErrorKey)
	assert.False(t, cap.enabled)
}

func TestOpenCaptureFailureKeepsDialogClosed(t *testing.T) {
	cap := &fakeCapture{err: errors.New("conn reset")}
	c := newTestController(&fakePaster{}, cap)

	require.Error(t, c.Open(context.Background()))
	assert.Equal(t, StateClosed, c.Snapshot().State)
}

func TestOpenWhileOpenIsNoop(t *testing.T) {
	cap := &fakeCapture{}
	c := newTestController(&fakePaster{}, cap)

	require.NoError(t, c.Open(context.Background()))
	c.SetText("keep me")
	require.NoError(t, c.Open(context.Background()))
	assert.Equal(t, "keep me", c.Snapshot().Text)
	assert.Len(t, cap.calls, 1)
}

func TestSetTextTruncatesAtLimit(t *testing.T) {
	c := newTestController(&fakePaster{}, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))

	c.SetText(strings.Repeat("a", layout.MaxTextLen+50))
	assert.Len(t, c.Snapshot().Text, layout.MaxTextLen)

	// limit counts runes, not bytes
	c.SetText(strings.Repeat("й", layout.MaxTextLen+1))
	c.SetLanguage(layout.LangRU)
	snap := c.Snapshot()
	assert.Equal(t, layout.MaxTextLen, len([]rune(snap.Text)))
	assert.True(t, snap.Valid)
}

func TestValidationFollowsLanguage(t *testing.T) {
	c := newTestController(&fakePaster{}, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))

	c.SetText("Привет")
	assert.False(t, c.Snapshot().Valid)

	c.SetLanguage(layout.LangRU)
	assert.True(t, c.Snapshot().Valid)

	c.SetLanguage(layout.LangEN)
	assert.False(t, c.Snapshot().Valid)
}

func TestSetTextIgnoredWhenClosed(t *testing.T) {
	c := newTestController(&fakePaster{}, &fakeCapture{})
	c.SetText("nope")
	assert.Empty(t, c.Snapshot().Text)
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	p := &fakePaster{}
	c := newTestController(p, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))

	require.NoError(t, c.Submit(context.Background()))
	assert.Zero(t, p.calls)
	assert.Equal(t, StateOpen, c.Snapshot().State)
}

func TestSubmitTranslatesRussianText(t *testing.T) {
	p := &fakePaster{resp: &apitypes.PasteResponse{Status: apitypes.PasteOK, Typed: 12}}
	c := newTestController(p, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))

	c.SetLanguage(layout.LangRU)
	c.SetText("Привет, мир!")
	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, "Ghbdtn? vbh!", p.lastText)
	assert.Equal(t, "ru", p.lastLang)
}

func TestSubmitEnglishTextPassesThrough(t *testing.T) {
	p := &fakePaster{resp: &apitypes.PasteResponse{Status: apitypes.PasteOK}}
	c := newTestController(p, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))

	c.SetText("hello world")
	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, "hello world", p.lastText)
	assert.Equal(t, "en", p.lastLang)
}

func TestSubmitSuccessClosesAndResumesCapture(t *testing.T) {
	p := &fakePaster{resp: &apitypes.PasteResponse{Status: apitypes.PasteOK, Typed: 5}}
	cap := &fakeCapture{enabled: true}
	c := newTestController(p, cap)
	require.NoError(t, c.Open(context.Background()))

	c.SetText("hello")
	require.NoError(t, c.Submit(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Empty(t, snap.Text)
	assert.True(t, cap.enabled)
}

func TestSubmitRejectionKeepsTextAndShowsMessage(t *testing.T) {
	p := &fakePaster{resp: &apitypes.PasteResponse{
		Status:  apitypes.PasteUntypeable,
		Message: "text contains characters the target cannot type",
	}}
	cap := &fakeCapture{}
	c := newTestController(p, cap)
	require.NoError(t, c.Open(context.Background()))

	c.SetText("hello")
	require.NoError(t, c.Submit(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, "hello", snap.Text)
	assert.Equal(t, "text contains characters the target cannot type", snap.ErrorMessage)
	// capture stays suspended while the dialog remains open
	assert.Equal(t, []bool{false}, cap.calls)
}

func TestSubmitTransportFailureSurfacesGenericError(t *testing.T) {
	p := &fakePaster{err: errors.New("dial tcp: connection refused")}
	c := newTestController(p, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))

	c.SetText("hello")
	require.Error(t, c.Submit(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, "hello", snap.Text)
	assert.Equal(t, ErrKeyTransport, snap.ErrorKey)
	assert.Empty(t, snap.ErrorMessage)
}

func TestSubmitApiErrorSurfacesDetail(t *testing.T) {
	p := &fakePaster{err: &apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: "invalid language"}}
	c := newTestController(p, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))

	c.SetText("hello")
	require.Error(t, c.Submit(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, "invalid language", snap.ErrorMessage)
	assert.Empty(t, snap.ErrorKey)
}

func TestSubmitWhileInFlightIsNoop(t *testing.T) {
	p := &fakePaster{
		resp:    &apitypes.PasteResponse{Status: apitypes.PasteOK},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	c := newTestController(p, &fakeCapture{})
	require.NoError(t, c.Open(context.Background()))
	c.SetText("hello")

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()

	select {
	case <-p.started:
	case <-time.After(time.Second):
		t.Fatal("paste call never started")
	}
	assert.Equal(t, StateSubmitting, c.Snapshot().State)

	// second submit and edits are ignored while pending
	require.NoError(t, c.Submit(context.Background()))
	c.SetText("changed")
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, StateSubmitting, c.Snapshot().State)

	close(p.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, StateClosed, c.Snapshot().State)
}
