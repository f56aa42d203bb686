package injector

import (
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/log"
	"github.com/kvmtools/pastekey/keymap"
	"github.com/kvmtools/pastekey/layout"
)

const (
	testWait = time.Second
	testTick = 5 * time.Millisecond
)

func newTestInjector() *Injector {
	return New(0, slog.Default(), log.NewRaw(nil))
}

// recordingTarget collects every wire packet the injector writes.
type recordingTarget struct {
	mu      sync.Mutex
	packets []keymap.InputState
	local   net.Conn
}

func attachRecorder(t *testing.T, inj *Injector) *recordingTarget {
	t.Helper()
	local, remote := net.Pipe()
	inj.AttachTarget(remote)
	rec := &recordingTarget{local: local}
	go func() {
		header := make([]byte, 2)
		for {
			if _, err := io.ReadFull(local, header); err != nil {
				return
			}
			body := make([]byte, int(header[1]))
			if _, err := io.ReadFull(local, body); err != nil {
				return
			}
			var st keymap.InputState
			if err := st.UnmarshalBinary(append(header, body...)); err != nil {
				return
			}
			rec.mu.Lock()
			rec.packets = append(rec.packets, st)
			rec.mu.Unlock()
		}
	}()
	t.Cleanup(func() { _ = local.Close() })
	return rec
}

func (r *recordingTarget) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packets)
}

func TestPasteNoTarget(t *testing.T) {
	inj := newTestInjector()
	resp, err := inj.Paste("hello")
	require.NoError(t, err)
	assert.Equal(t, apitypes.PasteNoTarget, resp.Status)
	assert.Zero(t, resp.Typed)
}

func TestPasteTooLong(t *testing.T) {
	inj := newTestInjector()
	resp, err := inj.Paste(strings.Repeat("a", layout.MaxTextLen+1))
	require.NoError(t, err)
	assert.Equal(t, apitypes.PasteTooLong, resp.Status)
}

func TestPasteAtLimitIsAccepted(t *testing.T) {
	inj := newTestInjector()
	attachRecorder(t, inj)
	resp, err := inj.Paste(strings.Repeat("a", layout.MaxTextLen))
	require.NoError(t, err)
	assert.Equal(t, apitypes.PasteOK, resp.Status)
	assert.Equal(t, layout.MaxTextLen, resp.Typed)
}

func TestPasteUntypeable(t *testing.T) {
	inj := newTestInjector()
	attachRecorder(t, inj)
	resp, err := inj.Paste("caf\x01")
	require.NoError(t, err)
	assert.Equal(t, apitypes.PasteUntypeable, resp.Status)
	assert.Zero(t, resp.Typed)
}

func TestPasteWritesPressReleasePairs(t *testing.T) {
	inj := newTestInjector()
	rec := attachRecorder(t, inj)

	resp, err := inj.Paste("Hi")
	require.NoError(t, err)
	require.Equal(t, apitypes.PasteOK, resp.Status)
	assert.Equal(t, 2, resp.Typed)

	// each character is a press followed by a release
	require.Eventually(t, func() bool { return rec.count() == 4 }, testWait, testTick)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, uint8(keymap.ModLeftShift), rec.packets[0].Modifiers)
	assert.Zero(t, rec.packets[1].Modifiers)
	assert.Zero(t, rec.packets[3].Modifiers)
}

func TestPasteWriteFailureDetaches(t *testing.T) {
	inj := newTestInjector()
	local, remote := net.Pipe()
	inj.AttachTarget(remote)
	require.NoError(t, local.Close())

	resp, err := inj.Paste("hello")
	require.NoError(t, err)
	assert.Equal(t, apitypes.PasteWriteFailure, resp.Status)
	assert.False(t, inj.HasTarget())
}

func TestAttachReplacesPreviousTarget(t *testing.T) {
	inj := newTestInjector()
	_, first := net.Pipe()
	_, second := net.Pipe()

	inj.AttachTarget(first)
	inj.AttachTarget(second)
	assert.True(t, inj.HasTarget())

	// detaching the stale conn must not remove the current one
	inj.DetachTarget(first)
	assert.True(t, inj.HasTarget())

	inj.DetachTarget(second)
	assert.False(t, inj.HasTarget())
}

func TestForwardRawDroppedWhileCaptureDisabled(t *testing.T) {
	inj := newTestInjector()
	rec := attachRecorder(t, inj)

	inj.SetCapture(false)
	require.NoError(t, inj.ForwardRaw(keymap.PressKeyWithMod(0, keymap.KeyA)))
	assert.Zero(t, rec.count())

	inj.SetCapture(true)
	require.NoError(t, inj.ForwardRaw(keymap.PressKeyWithMod(0, keymap.KeyA)))
	require.NoError(t, inj.ForwardRaw(keymap.Release()))
	assert.Eventually(t, func() bool { return rec.count() == 2 }, testWait, testTick)
}

func TestForwardRawWithoutTargetIsNoop(t *testing.T) {
	inj := newTestInjector()
	require.NoError(t, inj.ForwardRaw(keymap.PressKeyWithMod(0, keymap.KeyA)))
}
