package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var _ Backend = (*FileStore)(nil)

// FileStore keeps every record in one JSON document on disk.
// Each write replaces the file through a temp file and rename.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records map[string]json.RawMessage
	logger  *logrus.Logger
}

// OpenFileStore loads path, creating it when missing. A corrupt document is moved
// aside to "<path>.corrupt-<unix>" and the store starts empty.
func OpenFileStore(path string, logger *logrus.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	fs := &FileStore{path: path, records: map[string]json.RawMessage{}, logger: logger}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", fs.path, time.Now().Unix())
		fs.logger.WithFields(logrus.Fields{"module": "store", "path": fs.path, "moved_to": aside}).
			WithError(err).Warn("corrupt data file; starting empty")
		if rerr := os.Rename(fs.path, aside); rerr != nil {
			return rerr
		}
		return nil
	}
	if records != nil {
		fs.records = records
	}
	return nil
}

func (fs *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(fs.records, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, fs.path)
}

func (fs *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (fs *FileStore) Set(ctx context.Context, key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if !json.Valid(value) {
		return fmt.Errorf("store: value for %q is not valid JSON", key)
	}
	fs.records[key] = append(json.RawMessage(nil), value...)
	return fs.flushLocked()
}

func (fs *FileStore) Delete(_ context.Context, keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, k := range keys {
		delete(fs.records, k)
	}
	return fs.flushLocked()
}

func (fs *FileStore) Path() string { return fs.path }
