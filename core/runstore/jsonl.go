package runstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// JSONLStore stores runs as JSON lines with automatic rotation.
type JSONLStore struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewJSONLStore creates a store with rotation options in megabytes and days.
func NewJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return &JSONLStore{logger: lj, path: path}, nil
}

// Append writes the record and triggers rotation if needed.
func (s *JSONLStore) Append(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.NewEncoder(s.logger).Encode(rec)
}

// Query reads the active file and every rotated backup.
func (s *JSONLStore) Query(ctx context.Context, q RunQuery) ([]RunRecord, error) {
	var res []RunRecord
	err := s.scan(ctx, func(r RunRecord) bool {
		if q.match(r) {
			res = append(res, r)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return q.finish(res), nil
}

func (s *JSONLStore) Get(ctx context.Context, id string) (RunRecord, error) {
	var found *RunRecord
	err := s.scan(ctx, func(r RunRecord) bool {
		if r.ID == id {
			found = &r
			return false
		}
		return true
	})
	if err != nil {
		return RunRecord{}, err
	}
	if found == nil {
		return RunRecord{}, ErrNotFound
	}
	return *found, nil
}

// scan calls fn for every decodable line until fn returns false.
func (s *JSONLStore) scan(ctx context.Context, fn func(RunRecord) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := logFiles(s.path)
	if err != nil {
		return err
	}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := os.Open(name)
		if err != nil {
			continue
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
		cont := true
		for cont && sc.Scan() {
			var r RunRecord
			if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
				continue
			}
			cont = fn(r)
		}
		err = sc.Err()
		_ = f.Close()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// backupTimeFormat is the timestamp lumberjack puts in rotated file names.
const backupTimeFormat = "2006-01-02T15-04-05.000"

// logFiles returns the rotated backups of path, oldest first, followed by
// path itself. Other files sharing the prefix are ignored.
func logFiles(path string) ([]string, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	prefix := strings.TrimSuffix(name, ext) + "-"
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var backups []string
	current := false
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() {
			continue
		}
		if n == name {
			current = true
			continue
		}
		if !strings.HasPrefix(n, prefix) || !strings.HasSuffix(n, ext) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(n, prefix), ext)
		if _, err := time.Parse(backupTimeFormat, stamp); err != nil {
			continue
		}
		backups = append(backups, filepath.Join(dir, n))
	}
	sort.Strings(backups)
	if current {
		backups = append(backups, path)
	}
	return backups, nil
}

// Close closes the underlying writer.
func (s *JSONLStore) Close() error {
	return s.logger.Close()
}
