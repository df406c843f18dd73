package resume

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.resume")
	s := New(path, "http://example.test", 3)
	s.MarkCompleted("http://example.test/admin")
	s.MarkCompleted("http://example.test/admin")
	s.MarkCompleted("http://example.test/login")
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Len() = %d, want 2", loaded.Len())
	}
	if !loaded.IsCompleted("http://example.test/login") {
		t.Error("login should be completed")
	}
	if loaded.IsCompleted("http://example.test/backup") {
		t.Error("backup should not be completed")
	}
	if loaded.Total != 3 || loaded.BaseURL != "http://example.test" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope"))
	if err != nil || s != nil {
		t.Fatalf("Load = %v, %v; want nil, nil", s, err)
	}
}

func TestOpenIgnoresOtherTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.resume")
	old := New(path, "http://other.test", 1)
	old.MarkCompleted("http://other.test/admin")
	if err := old.Save(); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, "http://example.test", 5)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 || s.BaseURL != "http://example.test" {
		t.Errorf("expected a fresh state, got %+v", s)
	}

	same, err := Open(path, "http://other.test", 1)
	if err != nil {
		t.Fatal(err)
	}
	if same.Len() != 1 {
		t.Errorf("expected the saved state, got %d keys", same.Len())
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.resume")
	s := New(path, "http://example.test", 0)
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists: %v", err)
	}
	if err := s.Remove(); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.resume")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
