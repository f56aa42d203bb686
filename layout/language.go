package layout

import "fmt"

// Language identifies a virtual-keyboard input language.
type Language string

const (
	LangEN Language = "en"
	LangRU Language = "ru"
)

// Languages lists all supported languages in display order.
// Adding a language here requires handling it in Valid (the switch there is
// exhaustive over this list).
var Languages = []Language{LangEN, LangRU}

// LabelKey returns the localization key for the language's display label.
func (l Language) LabelKey() string { return "language." + string(l) }

// ParseLanguage converts a language code into a Language.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangEN:
		return LangEN, nil
	case LangRU:
		return LangRU, nil
	default:
		return "", fmt.Errorf("unsupported language: %q", s)
	}
}
