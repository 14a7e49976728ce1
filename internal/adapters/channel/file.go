package channel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"handoff/internal/domain"
	"handoff/internal/ports"
)

// ErrEmptyPath is returned by NewFile when no path is configured.
var ErrEmptyPath = errors.New("channel file path is empty")

// File is a shared channel stored in a single file so separate processes can
// exchange items. Each write replaces the file atomically.
type File struct {
	mu   sync.Mutex
	path string
}

var _ ports.SharedChannel = (*File)(nil)

// NewFile returns a channel backed by path. The file need not exist yet.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &File{path: path}, nil
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

// Write encodes items as CBOR and renames a temp file over the channel file.
func (f *File) Write(items domain.ChannelItems) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := cbor.Marshal(map[string][]byte(items))
	if err != nil {
		return fmt.Errorf("encode channel items: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create channel dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".channel-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace channel file %s: %w", f.path, err)
	}
	return nil
}

// Read returns the stored items. A missing file is an empty channel.
func (f *File) Read() (domain.ChannelItems, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read channel file %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items map[string][]byte
	if err := cbor.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode channel file %s: %w", f.path, err)
	}
	return domain.ChannelItems(items), nil
}
