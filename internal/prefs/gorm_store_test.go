// File: internal/prefs/gorm_store_test.go
package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *GORMStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return NewGORMStore(db)
}

func TestGORMStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	assert.False(t, ok, "missing key must report absent, not error")

	require.NoError(t, store.Set(ctx, KeyLanguage, "ar"))

	value, ok, err := store.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ar", value)
}

func TestGORMStoreSetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, KeyTheme, "light"))
	require.NoError(t, store.Set(ctx, KeyTheme, "dark"))

	value, ok, err := store.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)
}

func TestGORMStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, KeyLanguage, "ar"))
	require.NoError(t, store.Set(ctx, KeyAccessibilityMode, "blind"))
	require.NoError(t, store.Set(ctx, KeyTheme, "dark"))

	lang, _, err := store.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	mode, _, err := store.Get(ctx, KeyAccessibilityMode)
	require.NoError(t, err)
	theme, _, err := store.Get(ctx, KeyTheme)
	require.NoError(t, err)

	assert.Equal(t, "ar", lang)
	assert.Equal(t, "blind", mode)
	assert.Equal(t, "dark", theme)
}
