package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// MakeLibrary builds an artist/album directory tree under root and returns
// root. Artists mapped to an empty slice get a folder with no album
// subdirectories.
func MakeLibrary(t testing.TB, root string, artists map[string][]string) string {
	t.Helper()

	for artist, albums := range artists {
		artistDir := filepath.Join(root, artist)
		if err := os.MkdirAll(artistDir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", artistDir, err)
		}
		for _, album := range albums {
			albumDir := filepath.Join(artistDir, album)
			if err := os.MkdirAll(albumDir, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", albumDir, err)
			}
		}
	}
	return root
}

// WriteFile creates path (and parents) with the given content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
