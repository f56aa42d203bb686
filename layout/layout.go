// Package layout converts Cyrillic text typed on a Russian (ЙЦУКЕН) keyboard
// into the character sequence the same physical key presses produce on a US
// (QWERTY) layout, and validates text against a language's character set.
package layout

import (
	"strings"
	"unicode"
)

// MaxTextLen is the maximum number of runes accepted for a single paste.
const MaxTextLen = 1024

// ruToUSLetter maps each lowercase Russian letter to the character on the
// same physical key of a US layout. Values cover the full unshifted letter
// rows of a US keyboard including the punctuation keys sharing those rows.
var ruToUSLetter = map[rune]rune{
	'й': 'q', 'ц': 'w', 'у': 'e', 'к': 'r', 'е': 't', 'н': 'y', 'г': 'u',
	'ш': 'i', 'щ': 'o', 'з': 'p', 'х': '[', 'ъ': ']',
	'ф': 'a', 'ы': 's', 'в': 'd', 'а': 'f', 'п': 'g', 'р': 'h', 'о': 'j',
	'л': 'k', 'д': 'l', 'ж': ';', 'э': '\'',
	'я': 'z', 'ч': 'x', 'с': 'c', 'м': 'v', 'и': 'b', 'т': 'n', 'ь': 'm',
	'б': ',', 'ю': '.',
	'ё': '`',
}

// ruToUSPunct maps Russian-layout punctuation to the shifted US character on
// the same physical key. Characters identical on both layouts are omitted,
// except '!' which anchors the shifted digit row.
var ruToUSPunct = map[rune]rune{
	'!': '!',
	'"': '@',
	'№': '#',
	';': '$',
	':': '^',
	'?': '&',
	'/': '|',
	',': '?',
	'.': '/',
}

// TranslateRuToEn rewrites s as if its Russian-layout key presses had been
// made on a US layout. The result has the same rune count as the input;
// unmapped runes pass through unchanged. Uppercase Cyrillic letters produce
// the ASCII uppercase of the mapped character.
func TranslateRuToEn(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		lower := unicode.ToLower(r)
		if us, ok := ruToUSLetter[lower]; ok {
			if r != lower {
				us = unicode.ToUpper(us)
			}
			b.WriteRune(us)
			continue
		}
		if us, ok := ruToUSPunct[r]; ok {
			b.WriteRune(us)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Valid reports whether every rune of s can be typed on the virtual keyboard
// in the given language. The empty string is valid for any language.
//
// Russian accepts Cyrillic letters, the numero sign (a Russian-layout key,
// Shift+3) and printable ASCII without Latin letters; Latin letters are
// rejected so input is unambiguous between the two layouts. Every other
// language accepts only ASCII.
func Valid(s string, lang Language) bool {
	for _, r := range s {
		if !validRune(r, lang) {
			return false
		}
	}
	return true
}

func validRune(r rune, lang Language) bool {
	switch lang {
	case LangRU:
		switch {
		case r >= 'А' && r <= 'я': // U+0410..U+044F
			return true
		case r == 'Ё' || r == 'ё':
			return true
		case r == '№': // Shift+3 on the Russian layout, outside ASCII
			return true
		case r >= 0x20 && r <= 0x7E:
			return !isLatinLetter(r)
		default:
			return false
		}
	case LangEN:
		return r <= 0x7F
	default:
		return r <= 0x7F
	}
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
