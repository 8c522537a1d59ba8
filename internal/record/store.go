package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/portkeep/internal/model"
)

// DefaultFileName is the sticky record file created at the project root.
// The leading dot keeps it out of the way; users are expected to add it
// to .gitignore alongside other local-only files.
const DefaultFileName = ".portkeep-port"

// recordFileMode is the permission mode for the record file. The port
// number is not sensitive, so world-readable is fine.
const recordFileMode = 0o644

// Store reads and writes the sticky port record for one project directory.
//
// The file format is a single decimal port number followed by a newline.
// Keeping it a plain scalar means the file stays trivially inspectable
// (`cat .portkeep-port`) and editable by hand.
//
// No locking is performed: the record is written by a single caller at a
// time in normal use, and concurrent invocations from the same project
// directory are outside the supported usage.
type Store struct {
	path string
}

// NewStore creates a Store for the record file at the given project
// directory, using DefaultFileName.
func NewStore(projectDir string) *Store {
	return &Store{path: filepath.Join(projectDir, DefaultFileName)}
}

// NewStoreWithPath creates a Store for an explicit record file path,
// honoring a record_file override from .portkeep.yml.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Path returns the record file path. Used by the status command and
// error messages.
func (s *Store) Path() string {
	return s.path
}

// Load reads the recorded port.
//
// Returns model.ErrRecordNotFound when the file does not exist, and
// model.ErrRecordCorrupt (wrapped with detail) when the contents are not
// a valid port number in 1-65535. Both are absorbed by the resolver;
// the distinction matters only for status output and verbose logging.
func (s *Store) Load() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, model.ErrRecordNotFound
		}
		return 0, fmt.Errorf("failed to read record file %s: %w", s.path, err)
	}

	text := strings.TrimSpace(string(data))
	port, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s holds %q", model.ErrRecordCorrupt, s.path, text)
	}
	if !model.ValidPort(port) {
		return 0, fmt.Errorf("%w: %s holds out-of-range port %d", model.ErrRecordCorrupt, s.path, port)
	}

	return port, nil
}

// Save overwrites the record with the given port. The port must be a
// valid TCP port; the resolver never hands an invalid one to Save, so a
// violation indicates a programming error and is rejected loudly.
func (s *Store) Save(port int) error {
	if !model.ValidPort(port) {
		return fmt.Errorf("refusing to record invalid port %d", port)
	}

	data := []byte(strconv.Itoa(port) + "\n")
	if err := os.WriteFile(s.path, data, recordFileMode); err != nil {
		return fmt.Errorf("failed to write record file %s: %w", s.path, err)
	}
	return nil
}

// Delete removes the record file. Deleting an absent record is not an
// error — release is idempotent.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove record file %s: %w", s.path, err)
	}
	return nil
}
