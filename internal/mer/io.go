package mer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadContextPack reads and decodes a context pack file.
func LoadContextPack(path string) (*ContextPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context pack %s: %w", path, err)
	}

	var pack ContextPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing context pack %s: %w", path, err)
	}

	return &pack, nil
}

// LoadMER reads and decodes a MER file.
func LoadMER(path string) (*MER, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MER %s: %w", path, err)
	}

	var m MER
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing MER %s: %w", path, err)
	}

	return &m, nil
}

// WriteMER writes the model as indented JSON, creating parent directories
// as needed. The write is a whole-document rewrite.
func WriteMER(m *MER, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding MER: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing MER %s: %w", path, err)
	}

	return nil
}

// WriteText writes a projected schema (or any text artifact), creating
// parent directories as needed.
func WriteText(text, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
