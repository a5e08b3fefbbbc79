package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cryptYAML = `name: crypt
cellSize: 4
corridor: corridor
tiles:
  - name: room_a
    weight: 0.6
  - name: room_b
    weight: 0.4
props:
  - name: barrel
    weight: 0.2
`

func writeTheme(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTheme(t *testing.T) {
	path := writeTheme(t, t.TempDir(), "crypt.yaml", cryptYAML)

	th, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "crypt" {
		t.Errorf("name: got %q, want %q", th.Name, "crypt")
	}
	if len(th.Tiles) != 2 || len(th.Props) != 1 {
		t.Errorf("catalog sizes: got %d tiles %d props, want 2 and 1", len(th.Tiles), len(th.Props))
	}
	if th.Tiles[0].Name != "room_a" || th.Tiles[0].Weight != 0.6 {
		t.Errorf("first tile: got %+v", th.Tiles[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeTheme(t, t.TempDir(), "broken.yaml", "name: [unclosed")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse theme file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadInvalidTheme(t *testing.T) {
	path := writeTheme(t, t.TempDir(), "empty.yaml", "name: hollow\ncellSize: 4\ncorridor: c\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "tiles cannot be empty") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "crypt.yaml", cryptYAML)
	writeTheme(t, dir, "sewer.yml", strings.Replace(cryptYAML, "name: crypt", "name: sewer", 1))
	writeTheme(t, dir, "notes.txt", "not a theme")

	r, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 {
		t.Fatalf("registry size: got %d, want 2", r.Len())
	}

	names := r.Names()
	if names[0] != "crypt" || names[1] != "sewer" {
		t.Errorf("names: got %v, want [crypt sewer]", names)
	}
	if _, ok := r.Get("crypt"); !ok {
		t.Error("crypt not registered")
	}
	if _, ok := r.Get("absent"); ok {
		t.Error("lookup of unknown theme succeeded")
	}
}

func TestLoadDirMissingDirectory(t *testing.T) {
	r, err := LoadDir(filepath.Join(t.TempDir(), "nowhere"))
	if err != nil {
		t.Fatalf("missing dir should yield empty registry, got %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("registry size: got %d, want 0", r.Len())
	}
}

func TestLoadDirDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "a.yaml", cryptYAML)
	writeTheme(t, dir, "b.yaml", cryptYAML)

	if _, err := LoadDir(dir); err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
}
