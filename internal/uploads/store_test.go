package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndReadBack(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	stored, err := store.Save("report.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(stored, "-report.pdf") {
		t.Fatalf("stored=%q, want timestamp prefix + original name", stored)
	}

	b, err := os.ReadFile(filepath.Join(store.Dir(), stored))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "pdf bytes" {
		t.Fatalf("content=%q, want %q", b, "pdf bytes")
	}

	if got := PublicURL(stored); got != "/files/"+stored {
		t.Fatalf("PublicURL=%q, want /files/%s", got, stored)
	}
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	for _, name := range []string{"../../etc/passwd", `..\..\evil.txt`, "/abs/path.bin"} {
		stored, err := store.Save(name, strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Save(%q): %v", name, err)
		}
		if strings.ContainsAny(stored, `/\`) {
			t.Fatalf("stored=%q, contains path separators", stored)
		}
		if _, err := os.Stat(filepath.Join(store.Dir(), stored)); err != nil {
			t.Fatalf("stat stored file: %v", err)
		}
	}
}

func TestNewStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewStore(dir); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("upload dir not created: %v", err)
	}
}
