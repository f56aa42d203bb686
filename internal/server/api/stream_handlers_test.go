package api_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvmtools/pastekey/apiclient"
	"github.com/kvmtools/pastekey/apitypes"
	"github.com/kvmtools/pastekey/internal/server/api"
	"github.com/kvmtools/pastekey/internal/server/api/handler"
	"github.com/kvmtools/pastekey/internal/server/injector"
	apiTest "github.com/kvmtools/pastekey/internal/testing"
	"github.com/kvmtools/pastekey/keymap"
)

func startStreamServer(t *testing.T) (string, *injector.Injector, func()) {
	t.Helper()
	return apiTest.StartAPIServer(t, func(r *api.Router, inj *injector.Injector, apiSrv *api.Server) {
		r.Register("paste", handler.Paste(inj))
		r.Register("capture/disable", handler.CaptureDisable(inj))
		r.RegisterStream("target/attach", api.TargetAttachHandler(inj))
		r.RegisterStream("capture/stream", api.CaptureStreamHandler(inj))
	})
}

func TestTargetAttachReceivesPaste(t *testing.T) {
	addr, inj, done := startStreamServer(t)
	defer done()

	c := apiclient.New(addr)
	target, err := c.AttachTarget(context.Background())
	require.NoError(t, err)
	defer target.Close()

	require.Eventually(t, inj.HasTarget, time.Second, 5*time.Millisecond)

	resp, err := c.Paste("Hi", "en")
	require.NoError(t, err)
	require.Equal(t, apitypes.PasteOK, resp.Status)
	assert.Equal(t, 2, resp.Typed)

	// press/release pair per character
	var states []keymap.InputState
	for i := 0; i < 4; i++ {
		st, err := target.ReadState()
		require.NoError(t, err)
		states = append(states, st)
	}
	assert.NotZero(t, states[0].KeyBitmap)
	assert.Equal(t, keymap.InputState{}, states[1])
	assert.Equal(t, uint8(keymap.ModLeftShift), states[0].Modifiers)
}

func TestCaptureStreamForwardsToTarget(t *testing.T) {
	addr, inj, done := startStreamServer(t)
	defer done()

	c := apiclient.New(addr)
	target, err := c.AttachTarget(context.Background())
	require.NoError(t, err)
	defer target.Close()
	require.Eventually(t, inj.HasTarget, time.Second, 5*time.Millisecond)

	capStream, err := c.OpenCapture(context.Background())
	require.NoError(t, err)
	defer capStream.Close()

	sent := keymap.PressKeyWithMod(0, keymap.KeyB)
	require.NoError(t, capStream.WriteState(sent))

	got, err := target.ReadState()
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestCaptureStreamPacketCoalescedWithPath(t *testing.T) {
	addr, inj, done := startStreamServer(t)
	defer done()

	c := apiclient.New(addr)
	target, err := c.AttachTarget(context.Background())
	require.NoError(t, err)
	defer target.Close()
	require.Eventually(t, inj.HasTarget, time.Second, 5*time.Millisecond)

	// Path and first packet arriving in one TCP segment must not lose the
	// packet to the server's request reader.
	sent := keymap.PressKeyWithMod(0, keymap.KeyD)
	packet, err := sent.MarshalBinary()
	require.NoError(t, err)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(append([]byte("capture/stream\x00"), packet...))
	require.NoError(t, err)

	got, err := target.ReadState()
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestCaptureStreamDroppedWhileDisabled(t *testing.T) {
	addr, inj, done := startStreamServer(t)
	defer done()

	c := apiclient.New(addr)
	target, err := c.AttachTarget(context.Background())
	require.NoError(t, err)
	defer target.Close()
	require.Eventually(t, inj.HasTarget, time.Second, 5*time.Millisecond)

	_, err = c.CaptureSet(false)
	require.NoError(t, err)

	capStream, err := c.OpenCapture(context.Background())
	require.NoError(t, err)
	defer capStream.Close()

	// dropped at the gate while capture is off
	require.NoError(t, capStream.WriteState(keymap.PressKeyWithMod(0, keymap.KeyA)))
	time.Sleep(50 * time.Millisecond)

	inj.SetCapture(true)
	sent := keymap.PressKeyWithMod(0, keymap.KeyC)
	require.NoError(t, capStream.WriteState(sent))

	got, err := target.ReadState()
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}
