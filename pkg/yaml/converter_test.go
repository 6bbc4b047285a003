package yaml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string   `yaml:"name"`
	Drop  bool     `yaml:"drop"`
	Items []string `yaml:"items"`
}

func TestUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		strict  bool
		want    sample
		wantErr bool
	}{
		{
			name: "Simple document",
			yaml: "name: MyApp\ndrop: true\nitems:\n  - a\n  - b\n",
			want: sample{Name: "MyApp", Drop: true, Items: []string{"a", "b"}},
		},
		{
			name: "Unknown field is ignored when lax",
			yaml: "name: MyApp\ncolour: blue\n",
			want: sample{Name: "MyApp"},
		},
		{
			name:    "Unknown field is rejected when strict",
			yaml:    "name: MyApp\ncolour: blue\n",
			strict:  true,
			wantErr: true,
		},
		{
			name:    "Invalid YAML",
			yaml:    "name: [unclosed\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			err := UnmarshalYAML([]byte(tt.yaml), &got, tt.strict)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalYAML() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Name != tt.want.Name || got.Drop != tt.want.Drop || strings.Join(got.Items, ",") != strings.Join(tt.want.Items, ",") {
				t.Errorf("UnmarshalYAML() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	data, err := MarshalYAML(sample{Name: "MyApp", Items: []string{"x"}})
	if err != nil {
		t.Fatalf("MarshalYAML() error = %v", err)
	}
	if !strings.Contains(string(data), "name: MyApp") {
		t.Errorf("Unexpected YAML output:\n%s", data)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	var got sample
	if err := ReadFile(path, &got); err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.Name != "MyApp" || len(got.Items) != 1 {
		t.Errorf("ReadFile() = %+v", got)
	}

	if err := ReadFile(filepath.Join(t.TempDir(), "absent.yaml"), &got); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestReadFileExpandsEnvironment(t *testing.T) {
	t.Setenv("M2B4A_TEST_APP", "FromEnv")
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte("name: ${M2B4A_TEST_APP}\nitems: [\"${M2B4A_TEST_MISSING:-x}\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var got sample
	if err := ReadFile(path, &got); err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.Name != "FromEnv" || len(got.Items) != 1 || got.Items[0] != "x" {
		t.Errorf("ReadFile() = %+v", got)
	}

	if err := os.WriteFile(path, []byte("name: ${M2B4A_TEST_MISSING:?set the app name}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ReadFile(path, &got); err == nil || !strings.Contains(err.Error(), "set the app name") {
		t.Errorf("ReadFile() error = %v, want the missing variable message", err)
	}
}
