package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTrialLoadAcceptsValidHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.gguf")
	if err := os.WriteFile(path, ggufPayload(t), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := TrialLoad(path); err != nil {
		t.Errorf("TrialLoad: %v", err)
	}
}

func TestTrialLoadRejects(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.gguf")
	os.WriteFile(short, []byte("GGUF"), 0o644)

	garbage := filepath.Join(dir, "garbage.gguf")
	os.WriteFile(garbage, make([]byte, 4096), 0o644)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.gguf")},
		{"truncated file", short},
		{"wrong magic", garbage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := TrialLoad(tt.path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
