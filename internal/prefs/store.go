// File: internal/prefs/store.go

// Package prefs is the durable preference store: three string keys persisted
// independently of authentication state, surviving logout.
package prefs

import "context"

// Well-known preference keys.
const (
	KeyLanguage          = "language"
	KeyAccessibilityMode = "accessibility_mode"
	KeyTheme             = "theme"
)

// Store is durable key/value persistence for preferences. Writes go through
// immediately on every change; reads happen once at session initialization.
// Storage being unavailable on read is treated as "no stored preference".
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
