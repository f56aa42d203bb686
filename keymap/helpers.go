package keymap

// Typeable reports whether the given character can be produced with a single
// key press on a US layout.
func Typeable(c byte) bool {
	_, ok := CharToKey[c]
	return ok
}

// CharToHID converts an ASCII character to its HID usage code.
// Returns 0 if the character is not supported.
func CharToHID(c byte) uint8 {
	if code, ok := CharToKey[c]; ok {
		return code
	}
	return 0
}

// NeedsShift returns true if the character requires the Shift modifier.
func NeedsShift(c byte) bool {
	return ShiftChars[c]
}

// TypeString converts a string into a sequence of InputState press/release
// pairs, adding the Shift modifier where the character requires it.
// Unsupported characters are skipped.
//
// Example:
//
//	states := TypeString("Hi!")
//	// [Press Shift+H, Release, Press i, Release, Press Shift+1, Release]
func TypeString(s string) []InputState {
	var states []InputState
	for i := 0; i < len(s); i++ {
		if !Typeable(s[i]) {
			continue
		}
		press, release := TypeChar(s[i])
		states = append(states, press, release)
	}
	return states
}

// TypeChar converts a single character to a press/release InputState pair.
func TypeChar(c byte) (press, release InputState) {
	keyCode := CharToHID(c)
	if keyCode == 0 {
		return InputState{}, InputState{}
	}

	modifiers := uint8(0)
	if NeedsShift(c) {
		modifiers = ModLeftShift
	}

	press = PressKeyWithMod(modifiers, keyCode)
	release = Release()
	return
}

// PressKeyWithMod creates an InputState with modifiers and keys pressed.
func PressKeyWithMod(modifiers uint8, keys ...uint8) InputState {
	var state InputState
	state.Modifiers = modifiers
	for _, key := range keys {
		state.KeyBitmap[key/8] |= 1 << uint(key%8)
	}
	return state
}

// Release creates an empty InputState with all keys released.
func Release() InputState {
	return InputState{}
}
