// Package i18n holds the translation tables for user-visible strings.
// Lookups fall back to English, then to the key itself, so a missing
// translation degrades visibly instead of panicking.
package i18n

// Locale selects a translation table.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

var tables = map[Locale]map[string]string{
	LocaleEN: {
		"language.en": "English",
		"language.ru": "Russian",

		"paste.title":       "Paste text",
		"paste.placeholder": "Type or paste text to send to the remote machine",
		"paste.submit":      "Paste",
		"paste.cancel":      "Cancel",
		"paste.hint.layout": "Make sure the remote machine uses the US keyboard layout",

		"paste.error.transport":  "Could not reach the device, please try again",
		"paste.error.invalid":    "Text contains characters outside the selected layout",
		"paste.error.no_target":  "No remote target is attached",
		"paste.error.too_long":   "Text is too long to paste",
		"paste.error.untypeable": "Text contains characters that cannot be typed",
		"paste.error.write":      "Lost the connection to the remote target",
	},
	LocaleRU: {
		"language.en": "Английский",
		"language.ru": "Русский",

		"paste.title":       "Вставить текст",
		"paste.placeholder": "Введите или вставьте текст для отправки на удалённую машину",
		"paste.submit":      "Вставить",
		"paste.cancel":      "Отмена",
		"paste.hint.layout": "Убедитесь, что на удалённой машине выбрана раскладка US",

		"paste.error.transport":  "Не удалось связаться с устройством, попробуйте ещё раз",
		"paste.error.invalid":    "Текст содержит символы вне выбранной раскладки",
		"paste.error.no_target":  "Удалённая цель не подключена",
		"paste.error.too_long":   "Текст слишком длинный для вставки",
		"paste.error.untypeable": "Текст содержит символы, которые нельзя набрать",
		"paste.error.write":      "Потеряно соединение с удалённой целью",
	},
}

// T resolves key in the given locale.
func T(loc Locale, key string) string {
	if s, ok := tables[loc][key]; ok {
		return s
	}
	if s, ok := tables[LocaleEN][key]; ok {
		return s
	}
	return key
}

// Locales lists the supported locales.
func Locales() []Locale {
	return []Locale{LocaleEN, LocaleRU}
}
