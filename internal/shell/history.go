// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/invowk/pansh/internal/lineedit"
)

// loadHistory appends the lines of path, oldest first, to h. A missing file
// is not an error.
func loadHistory(fsys afero.Fs, path string, h *lineedit.History) error {
	f, err := fsys.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		h.Add(strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	return nil
}

// saveHistory replaces path with the entries of h, creating its directory
// if needed.
func saveHistory(fsys afero.Fs, path string, h *lineedit.History) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	var sb strings.Builder
	for _, line := range h.Entries() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := afero.WriteFile(fsys, path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
