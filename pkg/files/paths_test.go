package files

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/dump", filepath.Join(home, "dump")},
		{"/tmp/dump", "/tmp/dump"},
		{"relative/dump", "relative/dump"},
		{"~alice/dump", "~alice/dump"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHome(tt.in)
			if err != nil {
				t.Fatalf("ExpandHome(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestListRegularSkipsNonRegular(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.png"), "aaaa")
	mustWrite(t, filepath.Join(dir, "b.txt"), "bb")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(dir, "nested", "c.txt"), "c")
	if err := os.Symlink(filepath.Join(dir, "a.png"), filepath.Join(dir, "link.png")); err != nil {
		t.Fatal(err)
	}

	entries, err := ListRegular(dir)
	if err != nil {
		t.Fatalf("ListRegular error: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if want := []string{"a.png", "b.txt"}; !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
	if entries[0].Size != 4 {
		t.Errorf("Expected size 4, got %d", entries[0].Size)
	}
}

func TestListRegularMissingDir(t *testing.T) {
	if _, err := ListRegular(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("Expected an error for a missing directory")
	}
}

func TestListSubdirsHidesDotEntries(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"dump", ".git", "files"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite(t, filepath.Join(dir, "notes.txt"), "x")

	got := ListSubdirs(dir)
	if want := []string{"dump", "files"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
