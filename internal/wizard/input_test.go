package wizard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		answer    string
		def       bool
		wantValue bool
		wantOK    bool
	}{
		{"", true, true, true},
		{"", false, false, true},
		{"Y", false, true, true},
		{" yes ", false, true, true},
		{"n", true, false, true},
		{"NO", true, false, true},
		{"maybe", true, false, false},
	}
	for _, tt := range tests {
		value, ok := parseYesNo(tt.answer, tt.def)
		if value != tt.wantValue || ok != tt.wantOK {
			t.Errorf("parseYesNo(%q, %v) = %v, %v, want %v, %v", tt.answer, tt.def, value, ok, tt.wantValue, tt.wantOK)
		}
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		answer string
		want   int
		wantOK bool
	}{
		{"1", 0, true},
		{" 3 ", 2, true},
		{"0", 0, false},
		{"4", 0, false},
		{"two", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseChoice(tt.answer, 3)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseChoice(%q) = %d, %v, want %d, %v", tt.answer, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCompleteDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"dump", "dumps", "files", ".git"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "dump.tar"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	sep := string(filepath.Separator)
	got := completeDirectory(dir + sep + "du")
	want := []string{dir + sep + "dump" + sep, dir + sep + "dumps" + sep}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("completeDirectory() = %v, want %v", got, want)
	}

	for _, c := range completeDirectory(dir + sep) {
		if filepath.Base(c) == ".git" {
			t.Errorf("Hidden directory offered: %s", c)
		}
	}
}

func TestDefaultFilesPath(t *testing.T) {
	cwd := t.TempDir()
	if got := defaultFilesPath(cwd); got != cwd {
		t.Errorf("Expected %s, got %s", cwd, got)
	}
	if err := os.Mkdir(filepath.Join(cwd, "files"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := defaultFilesPath(cwd); got != filepath.Join(cwd, "files") {
		t.Errorf("Expected files subdirectory, got %s", got)
	}
}
