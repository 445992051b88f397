package pipeline

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"carprice/pkg/data"
)

// Save gob-encodes p to path, creating parent directories. An existing file
// is replaced only once the new one is fully written.
func (p *Pipeline) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("artifact: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		tmp.Close()
		return fmt.Errorf("artifact: encode: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("artifact: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("artifact: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("artifact: replace %q: %w", path, err)
	}
	return nil
}

// Load decodes a pipeline written by Save.
func Load(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: model artifact %s", data.ErrMissingFile, path)
		}
		return nil, fmt.Errorf("artifact: open %q: %w", path, err)
	}
	defer f.Close()

	var p Pipeline
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&p); err != nil {
		return nil, fmt.Errorf("artifact: decode %q: %w", path, err)
	}
	if p.Preprocessor == nil || p.Regressor == nil {
		return nil, fmt.Errorf("artifact: %q holds no fitted pipeline", path)
	}
	p.Preprocessor.fillSteps()
	return &p, nil
}
