package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/echoes/savestore"
)

func TestNewGameReleasesStoreOnBadLevel(t *testing.T) {
	dir := t.TempDir()

	_, err := NewGame(Options{Level: "no_such_level", LevelDir: t.TempDir(), SavePath: dir})
	require.Error(t, err)

	// badger locks its directory, so this only opens if the failed game closed it.
	store, err := savestore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
