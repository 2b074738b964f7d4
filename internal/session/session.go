// File: internal/session/session.go

// Package session holds the process-wide session state machine: current
// identity, authentication flag and the three preference fields. State is
// mutated only through Manager methods; the page layer reads snapshots.
package session

import (
	"nujum_backend/internal/prefs"
	"nujum_backend/internal/user"
)

// Language is the UI language preference.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// AccessibilityMode selects the accessibility rendering profile.
type AccessibilityMode string

const (
	AccessibilityStandard      AccessibilityMode = "standard"
	AccessibilityBlind         AccessibilityMode = "blind"
	AccessibilityDeaf          AccessibilityMode = "deaf"
	AccessibilityMotorImpaired AccessibilityMode = "motor-impaired"
)

// Theme is the color theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Session is the in-memory, process-lifetime record of the current user and
// preferences. Invariant: IsAuthenticated is true iff User is present.
type Session struct {
	User              *user.User        `json:"user"`
	IsAuthenticated   bool              `json:"is_authenticated"`
	Language          Language          `json:"language"`
	AccessibilityMode AccessibilityMode `json:"accessibility_mode"`
	Theme             Theme             `json:"theme"`
}

func defaultSession() Session {
	return Session{
		Language:          LanguageEnglish,
		AccessibilityMode: AccessibilityStandard,
		Theme:             ThemeLight,
	}
}

// parseLanguage validates a stored or requested language value.
func parseLanguage(v string) (Language, bool) {
	switch Language(v) {
	case LanguageEnglish, LanguageArabic:
		return Language(v), true
	}
	return "", false
}

func parseAccessibilityMode(v string) (AccessibilityMode, bool) {
	switch AccessibilityMode(v) {
	case AccessibilityStandard, AccessibilityBlind, AccessibilityDeaf, AccessibilityMotorImpaired:
		return AccessibilityMode(v), true
	}
	return "", false
}

func parseTheme(v string) (Theme, bool) {
	switch Theme(v) {
	case ThemeLight, ThemeDark:
		return Theme(v), true
	}
	return "", false
}

// prefKeys ties Session preference fields to their durable storage keys.
var prefKeys = []string{prefs.KeyLanguage, prefs.KeyAccessibilityMode, prefs.KeyTheme}
