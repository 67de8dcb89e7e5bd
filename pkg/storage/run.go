package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	errs "sgyexport/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Category directories created under every export root. The orchestrator
// fills them in this order.
var Categories = []string{"school", "building", "updates", "messages", "users", "courses"}

// Run manages the destination directory tree of one export run. Every run
// writes into a fresh timestamped root; nothing is ever resumed or merged
// into an earlier tree.
type Run struct {
	root string
}

// NewRun creates the timestamped export root under baseDir along with the
// fixed top-level category directories.
func NewRun(baseDir string) (*Run, error) {
	root := filepath.Join(baseDir, fmt.Sprintf("export_%d", time.Now().UnixMilli()))
	if err := os.Mkdir(root, 0755); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeFilesystem,
			Message: fmt.Sprintf("failed to create export dir: %v", err),
		}
	}

	for _, category := range Categories {
		if err := os.Mkdir(filepath.Join(root, category), 0755); err != nil {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeFilesystem,
				Message: fmt.Sprintf("failed to create export %s dir: %v", category, err),
			}
		}
	}

	return &Run{root: root}, nil
}

// OpenRun wraps an existing directory as a run root. Tests use it to write
// into a temp dir without the timestamped layer.
func OpenRun(root string) *Run {
	return &Run{root: root}
}

// Root returns the export root directory.
func (r *Run) Root() string {
	return r.root
}

// Path joins path elements under the export root.
func (r *Run) Path(parts ...string) string {
	return filepath.Join(append([]string{r.root}, parts...)...)
}

// EnsureDir creates a directory, parents included. Sibling items whose
// sanitized titles collide map to the same directory; the export accepts
// the collision rather than disambiguating deterministically derived names.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeFilesystem,
			Message: fmt.Sprintf("failed to create directory %s: %v", path, err),
		}
	}
	return nil
}

// WriteJSON writes a record as pretty-printed JSON.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to encode %s: %v", filepath.Base(path), err),
		}
	}
	return WriteFile(path, data)
}

// WriteFile writes data to path atomically via a temporary file and rename,
// so an aborted run never leaves a half-written file behind.
func WriteFile(path string, data []byte) error {
	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeFilesystem,
			Message: fmt.Sprintf("failed to create temporary file: %v", err),
		}
	}

	_, writeErr := out.Write(data)
	closeErr := out.Close()

	if writeErr != nil {
		os.Remove(tempFile)
		return &errs.Error{
			Type:    errs.ErrorTypeFilesystem,
			Message: fmt.Sprintf("failed to write %s: %v", path, writeErr),
		}
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return &errs.Error{
			Type:    errs.ErrorTypeFilesystem,
			Message: fmt.Sprintf("failed to close %s: %v", path, closeErr),
		}
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return &errs.Error{
			Type:    errs.ErrorTypeFilesystem,
			Message: fmt.Sprintf("failed to rename temporary file: %v", err),
		}
	}

	return nil
}

// Sanitize neutralizes path separators in a name derived from remote data
// before it becomes a path component.
func Sanitize(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")
	return replacer.Replace(name)
}
