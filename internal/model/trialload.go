package model

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ggufMagic is the little-endian magic at the start of a GGUF weights file.
const ggufMagic = 0x46554747 // "GGUF"

// trialLoadMinSize rejects obviously truncated files without reading them.
const trialLoadMinSize = 1024

// TrialLoad performs a cheap structural validation of a model artifact:
// file size sanity plus the GGUF magic and a plausible container version.
// It detects corruption and partial writes without the cost of a full parse.
func TrialLoad(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if info.Size() < trialLoadMinSize {
		return fmt.Errorf("artifact too small: %d bytes", info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var header struct {
		Magic   uint32
		Version uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if header.Magic != ggufMagic {
		return fmt.Errorf("bad magic 0x%08x", header.Magic)
	}
	if header.Version == 0 || header.Version > 1024 {
		return fmt.Errorf("implausible container version %d", header.Version)
	}
	return nil
}
