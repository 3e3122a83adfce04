package credstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/internal/repository/credstore"
)

func TestNew_RequiresPathAndPassphrase(t *testing.T) {
	_, err := credstore.New("", "secret")
	assert.Error(t, err)

	_, err = credstore.New(filepath.Join(t.TempDir(), "creds"), "")
	assert.Error(t, err)
}

func TestStore_LoadAbsent(t *testing.T) {
	store, err := credstore.New(filepath.Join(t.TempDir(), "creds"), "secret")
	require.NoError(t, err)

	_, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := credstore.New(filepath.Join(t.TempDir(), "creds"), "secret")
	require.NoError(t, err)
	ctx := context.Background()

	conn := models.ConnectionConfig{
		URL:      "https://odoo.example.com",
		Database: "prod",
		Username: "scanner",
		Password: "hunter2",
	}
	require.NoError(t, store.Save(ctx, conn))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, conn, got)
}

func TestStore_SaveReplacesWholesale(t *testing.T) {
	store, err := credstore.New(filepath.Join(t.TempDir(), "creds"), "secret")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.ConnectionConfig{
		URL: "https://old.example.com", Database: "old", Username: "a", Password: "b",
	}))
	// The replacement omits no field carry-over; nothing of the old record
	// survives.
	replacement := models.ConnectionConfig{
		URL: "https://new.example.com", Database: "new", Username: "c", Password: "d",
	}
	require.NoError(t, store.Save(ctx, replacement))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, replacement, got)
}

func TestStore_WrongPassphraseIsAnErrorNotAnAbsence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds")
	ctx := context.Background()

	store, err := credstore.New(path, "secret")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, models.ConnectionConfig{
		URL: "https://odoo.example.com", Database: "prod", Username: "u", Password: "p",
	}))

	other, err := credstore.New(path, "not-the-secret")
	require.NoError(t, err)

	_, ok, err := other.Load(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store, err := credstore.New(filepath.Join(t.TempDir(), "creds"), "secret")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.ConnectionConfig{
		URL: "https://odoo.example.com", Database: "prod", Username: "u", Password: "p",
	}))
	require.NoError(t, store.Clear(ctx))

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx))
}
