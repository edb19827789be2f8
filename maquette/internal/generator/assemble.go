package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write materializes the project under dir, creating parent directories as
// needed. Paths in the file map are already normalized by Generate.
func Write(dir string, proj *Project) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("generator: mkdir project root: %w", err)
	}
	for rel, content := range proj.Files {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("generator: mkdir %s: %w", rel, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return fmt.Errorf("generator: write %s: %w", rel, err)
		}
	}
	return nil
}
