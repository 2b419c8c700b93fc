package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func collect(t *testing.T, root, name string) []string {
	t.Helper()
	seq, err := Discover(root, name)
	require.NoError(t, err)
	var paths []string
	for p, err := range seq {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"route.ts":                 "",
		"users/route.ts":           "",
		"users/[id]/route.ts":      "",
		"users/[id]/page.tsx":      "",
		"auth/login/route.ts":      "",
		"auth/login/route.ts.bak":  "",
		"auth/route.tsx":           "",
		"deep/a/b/c/d/route.ts":    "",
		"deep/a/b/c/d/notroute.ts": "",
	})

	got := collect(t, root, "route.ts")
	assert.Equal(t, []string{
		"auth/login/route.ts",
		"deep/a/b/c/d/route.ts",
		"route.ts",
		"users/[id]/route.ts",
		"users/route.ts",
	}, got)

	// Deterministic for an unchanged tree.
	assert.Equal(t, got, collect(t, root, "route.ts"))
}

func TestDiscoverSkipsDirectoriesNamedLikeTarget(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "route.ts"), 0o755))
	writeTree(t, root, map[string]string{"route.ts/route.ts": ""})

	assert.Equal(t, []string{"route.ts/route.ts"}, collect(t, root, "route.ts"))
}

func TestDiscoverIsSingleUse(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/route.ts": "", "b/route.ts": ""})

	seq, err := Discover(root, "route.ts")
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
	}
	assert.Equal(t, 2, n)

	for range seq {
		t.Fatal("second iteration must yield nothing")
	}
}

func TestDiscoverStopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/route.ts": "", "b/route.ts": "", "c/route.ts": ""})

	seq, err := Discover(root, "route.ts")
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestDiscoverSymlinkRoot(t *testing.T) {
	tree := t.TempDir()
	writeTree(t, tree, map[string]string{"users/route.ts": "", "posts/route.ts": ""})

	link := filepath.Join(t.TempDir(), "api")
	require.NoError(t, os.Symlink(tree, link))

	seq, err := Discover(link, "route.ts")
	require.NoError(t, err)
	var paths []string
	for p, err := range seq {
		require.NoError(t, err)
		paths = append(paths, p)
	}
	assert.Equal(t, []string{
		filepath.Join(link, "posts", "route.ts"),
		filepath.Join(link, "users", "route.ts"),
	}, paths)
}

func TestDiscoverSkipsNestedSymlinks(t *testing.T) {
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"route.ts": ""})

	root := t.TempDir()
	writeTree(t, root, map[string]string{"users/route.ts": ""})
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "route.ts"), filepath.Join(root, "route.ts")))

	assert.Equal(t, []string{"users/route.ts"}, collect(t, root, "route.ts"))
}

func TestDiscoverInvalidRoot(t *testing.T) {
	root := t.TempDir()

	_, err := Discover(filepath.Join(root, "missing"), "route.ts")
	var de *DiscoveryError
	require.ErrorAs(t, err, &de)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Discover(file, "route.ts")
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestReadFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing"))
	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "route.ts")
	require.NoError(t, os.WriteFile(p, []byte("old"), 0o640))

	require.NoError(t, WriteAtomic(p, []byte("new content")))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteAtomicFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()

	// A directory cannot be opened for writing, even by root.
	target := filepath.Join(dir, "route.ts")
	require.NoError(t, os.Mkdir(target, 0o755))

	err := WriteAtomic(target, []byte("new"))
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, target, we.Path)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicMissingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gone.ts")
	err := WriteAtomic(p, []byte("x"))
	var we *WriteError
	require.ErrorAs(t, err, &we)
	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteAtomicReadOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	p := filepath.Join(t.TempDir(), "route.ts")
	require.NoError(t, os.WriteFile(p, []byte("old"), 0o444))

	err := WriteAtomic(p, []byte("new"))
	var we *WriteError
	require.ErrorAs(t, err, &we)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}
