package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shopchat/internal/catalog"
	"shopchat/internal/config"
	"shopchat/internal/store"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupWorkspace points the global flags at a fresh workspace that uses the
// pure-Go SQLite driver.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	ws := t.TempDir()
	workspace = ws
	t.Setenv("SHOPCHAT_DB_DRIVER", store.DriverPure)

	seedOpts = catalog.SeedOptions{Categories: 3, Products: 6, Users: 2}
	seedValue = 7
	allCategories = false
	categorySlug = ""
	serveAddr = ""

	t.Cleanup(func() { workspace = "" })
	return ws
}

func newCmd(ctx context.Context) (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(ctx)
	return cmd, &buf
}

func TestHistoryCmd(t *testing.T) {
	setupWorkspace(t)
	cmd, out := newCmd(context.Background())

	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, out.String(), "Chat with AI")
	assert.Contains(t, out.String(), "Let's explore that.")
	assert.Contains(t, out.String(), "Total: 3 conversations")
}

func TestSettingsCmd(t *testing.T) {
	setupWorkspace(t)

	cmd, out := newCmd(context.Background())
	require.NoError(t, runSettingsShow(cmd, nil))
	assert.Contains(t, out.String(), "appearance:          light")
	assert.Contains(t, out.String(), "notification_sound:  on")

	cmd, out = newCmd(context.Background())
	require.NoError(t, runSettingsSet(cmd, []string{"appearance", "dark"}))
	assert.Contains(t, out.String(), "dark")

	cmd, _ = newCmd(context.Background())
	require.NoError(t, runSettingsSet(cmd, []string{"sound", "off"}))

	cmd, out = newCmd(context.Background())
	require.NoError(t, runSettingsShow(cmd, nil))
	assert.Contains(t, out.String(), "appearance:          dark")
	assert.Contains(t, out.String(), "notification_sound:  off")

	cmd, _ = newCmd(context.Background())
	assert.Error(t, runSettingsSet(cmd, []string{"appearance", "sepia"}))
	assert.Error(t, runSettingsSet(cmd, []string{"volume", "11"}))
}

func TestCatalogSeedAndBrowse(t *testing.T) {
	ws := setupWorkspace(t)
	ctx := context.Background()

	cmd, out := newCmd(ctx)
	require.NoError(t, runCatalogSeed(cmd, nil))
	assert.Contains(t, out.String(), "categories:   3")
	assert.Contains(t, out.String(), "products:     6")

	dbPath := config.DefaultConfig().DatabasePath(ws)
	assert.Equal(t, filepath.Join(ws, ".shopchat", "shop.db"), dbPath)

	st, err := store.Open(store.DriverPure, dbPath)
	require.NoError(t, err)
	cats, err := st.ListCategories(ctx, false)
	require.NoError(t, err)
	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, cats, 3)
	require.Len(t, users, 2)

	allCategories = true
	cmd, out = newCmd(ctx)
	require.NoError(t, runCatalogCategories(cmd, nil))
	for _, c := range cats {
		assert.Contains(t, out.String(), c.Slug)
	}

	cmd, out = newCmd(ctx)
	require.NoError(t, runCatalogProducts(cmd, nil))
	assert.Contains(t, out.String(), "Total: 6 products")

	categorySlug = cats[0].Slug
	cmd, out = newCmd(ctx)
	require.NoError(t, runCatalogProducts(cmd, nil))
	assert.NotContains(t, out.String(), "Total: 0")

	categorySlug = "no-such-category"
	cmd, _ = newCmd(ctx)
	assert.ErrorIs(t, runCatalogProducts(cmd, nil), store.ErrNotFound)

	cmd, out = newCmd(ctx)
	require.NoError(t, runCatalogUsers(cmd, nil))
	assert.Contains(t, out.String(), users[0].Email)

	cmd, out = newCmd(ctx)
	require.NoError(t, runCatalogOrders(cmd, []string{"1"}))
	assert.Contains(t, out.String(), "Order #")
	assert.Contains(t, out.String(), "payment=cash/")

	cmd, _ = newCmd(ctx)
	assert.ErrorIs(t, runCatalogOrders(cmd, []string{"999"}), store.ErrNotFound)
	assert.Error(t, runCatalogOrders(cmd, []string{"abc"}))
}

func TestCatalogEmpty(t *testing.T) {
	setupWorkspace(t)
	cmd, out := newCmd(context.Background())
	require.NoError(t, runCatalogCategories(cmd, nil))
	assert.Contains(t, out.String(), "No categories")
}

func TestInvalidConfigRejected(t *testing.T) {
	setupWorkspace(t)
	t.Setenv("SHOPCHAT_DB_DRIVER", "postgres")

	cmd, _ := newCmd(context.Background())
	err := runCatalogCategories(cmd, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid store driver"), err.Error())
}

func TestServeStopsOnCancel(t *testing.T) {
	setupWorkspace(t)
	serveAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cmd, out := newCmd(ctx)

	done := make(chan error, 1)
	go func() { done <- runServe(cmd, nil) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	assert.Contains(t, out.String(), "listening on 127.0.0.1:0")
}
