package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeArticle(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func testLibrary(t *testing.T) *Library {
	t.Helper()
	dir := t.TempDir()
	writeArticle(t, dir, "1__welcome.md", "# Welcome\n\nHello.")
	writeArticle(t, dir, "2__getting-ahead.md", "## Getting ahead\n\nMore.")
	writeArticle(t, dir, "4__legends-only.md", "# Legends only\n\nSecret.")
	writeArticle(t, dir, "notes.txt", "not an article")
	writeArticle(t, dir, "broken-name.md", "# No rank prefix")
	return NewLibrary(dir)
}

func TestListFiltersByLevel(t *testing.T) {
	lib := testLibrary(t)

	list, err := lib.List(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "welcome", list[0].ID)
	require.Equal(t, "Welcome", list[0].Title)

	list, err = lib.List(2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "welcome", list[0].ID)
	require.Equal(t, "getting-ahead", list[1].ID)
	require.Equal(t, "Getting ahead", list[1].Title)

	list, err = lib.List(4)
	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestGetEnforcesGate(t *testing.T) {
	lib := testLibrary(t)

	a, err := lib.Get("legends-only", 4)
	require.NoError(t, err)
	require.Contains(t, a.Content, "Secret.")

	_, err = lib.Get("legends-only", 3)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = lib.Get("nope", 4)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListMissingDir(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "missing"))
	_, err := lib.List(1)
	require.Error(t, err)
}
