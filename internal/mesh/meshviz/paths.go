package meshviz

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxStemLen bounds the name part of an artefact file name.
const maxStemLen = 96

// ArtefactStem turns an object index and free-form name into a file name
// stem. Anything outside ASCII letters, digits, '-' and '_' collapses to a
// single underscore; the index prefix keeps stems unique within a batch.
func ArtefactStem(index int, name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if b.Len() >= maxStemLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	stem := strings.Trim(b.String(), "_")
	if stem == "" {
		stem = "object"
	}
	return fmt.Sprintf("%03d_%s", index, stem)
}

// ArtefactPath joins dir with the stem of object index and ext, and refuses
// any result that resolves outside dir once symlinks in dir are followed.
func ArtefactPath(dir string, index int, name, ext string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve artefact dir: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	path := filepath.Join(root, ArtefactStem(index, name)+ext)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artefact %q escapes %s", name, dir)
	}
	return path, nil
}
