package keymap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvmtools/pastekey/keymap"
)

func TestTypeStringShiftHandling(t *testing.T) {
	states := keymap.TypeString("Hi!")
	require.Len(t, states, 6)

	assert.Equal(t, uint8(keymap.ModLeftShift), states[0].Modifiers)
	assert.True(t, hasKey(states[0], keymap.KeyH))
	assert.Equal(t, keymap.InputState{}, states[1])

	assert.Equal(t, uint8(0), states[2].Modifiers)
	assert.True(t, hasKey(states[2], keymap.KeyI))

	assert.Equal(t, uint8(keymap.ModLeftShift), states[4].Modifiers)
	assert.True(t, hasKey(states[4], keymap.Key1))
}

func TestTypeStringSkipsUnsupported(t *testing.T) {
	// 0x01 is not a typeable character; only "ab" produces states.
	states := keymap.TypeString("a\x01b")
	assert.Len(t, states, 4)
}

func TestTranslatedTextIsTypeable(t *testing.T) {
	// Every value of the layout letter and punctuation maps must be
	// producible on the wire, otherwise pastes of translated Russian text
	// would silently drop keys.
	for _, c := range []byte("qwertyuiop[]asdfghjkl;'zxcvbnm,.`!@#$^&|?/") {
		assert.True(t, keymap.Typeable(c), "char %q", c)
	}
}

func TestInputStateWireRoundTrip(t *testing.T) {
	st := keymap.PressKeyWithMod(keymap.ModLeftShift, keymap.KeyA, keymap.KeySlash)
	data, err := st.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, uint8(keymap.ModLeftShift), data[0])
	require.Equal(t, uint8(2), data[1])

	var out keymap.InputState
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, st, out)
}

func TestUnmarshalShortPacket(t *testing.T) {
	var st keymap.InputState
	assert.Error(t, st.UnmarshalBinary([]byte{0x02}))
	assert.Error(t, st.UnmarshalBinary([]byte{0x00, 0x03, keymap.KeyA}))
}

func TestBuildReport(t *testing.T) {
	st := keymap.PressKeyWithMod(0, keymap.KeyZ)
	report := st.BuildReport()
	require.Len(t, report, 34)
	assert.Equal(t, uint8(0), report[0])
	assert.Equal(t, uint8(0), report[1])
	assert.NotEqual(t, uint8(0), report[2+keymap.KeyZ/8])
}

func hasKey(st keymap.InputState, key uint8) bool {
	return st.KeyBitmap[key/8]&(1<<uint(key%8)) != 0
}
