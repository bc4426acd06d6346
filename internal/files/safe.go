package files

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveUnder joins name onto base and verifies the result stays inside
// base, defeating path traversal through crafted artifact names.
func ResolveUnder(base, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	joined := filepath.Clean(filepath.Join(absBase, name))
	if !strings.HasPrefix(joined, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("file name %q escapes the artifact directory", name)
	}
	return joined, nil
}
