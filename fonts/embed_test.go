package fonts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, src := range []string{Regular, "embed:" + Regular, "embed:" + Bold} {
		data, err := Load(src)
		if err != nil {
			t.Fatalf("Load(%q): %v", src, err)
		}
		if len(data) < 1024 {
			t.Fatalf("Load(%q) returned %d bytes", src, len(data))
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("empty source must fail")
	}
	if _, err := Load("embed:Missing"); err == nil {
		t.Fatalf("unknown builtin must fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.ttf")); err == nil {
		t.Fatalf("missing file must fail")
	}
}

func TestLoadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.ttf")
	if err := os.WriteFile(path, []byte("font bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "font bytes" {
		t.Fatalf("unexpected data %q", data)
	}
}
