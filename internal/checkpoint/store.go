package checkpoint

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	ioutils "github.com/handiism/trackyear/internal/io"
	"github.com/handiism/trackyear/internal/model"
)

var (
	// ErrResume is returned when the result file cannot be aligned with
	// the snapshot.
	ErrResume = errors.New("checkpoint cannot be aligned with snapshot")

	// ErrLocked is returned when another process holds the result file.
	ErrLocked = errors.New("result file is locked by another process")
)

// Status describes which checkpoint files exist.
type Status struct {
	HasSnapshot bool
	HasResults  bool
}

// Fresh reports whether nothing has been written yet.
func (s Status) Fresh() bool {
	return !s.HasSnapshot && !s.HasResults
}

// Store owns the snapshot and result files of one pipeline.
//
// Example:
//
//	store, err := checkpoint.Open(resultPath, snapshotPath)
//	if errors.Is(err, checkpoint.ErrLocked) {
//	    log.Fatal("another run is active")
//	}
//	defer store.Close()
type Store struct {
	resultPath   string
	snapshotPath string
	lock         *flock.Flock

	mu  sync.Mutex
	out *os.File
}

// LockPath returns the lock file guarding resultPath.
func LockPath(resultPath string) string {
	return resultPath + ".lock"
}

// Open locks the result file and returns a Store. It fails with ErrLocked
// when another process holds the lock.
func Open(resultPath, snapshotPath string) (*Store, error) {
	if resultPath == "" || snapshotPath == "" {
		return nil, errors.New("checkpoint: result and snapshot paths are required")
	}
	if resultPath == snapshotPath {
		return nil, errors.New("checkpoint: result and snapshot paths must differ")
	}

	lockPath := LockPath(resultPath)
	if err := ioutils.EnsureDir(filepath.Dir(lockPath)); err != nil {
		return nil, fmt.Errorf("ensure checkpoint dir: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}

	return &Store{
		resultPath:   resultPath,
		snapshotPath: snapshotPath,
		lock:         lock,
	}, nil
}

// ResultPath returns the result file location.
func (s *Store) ResultPath() string { return s.resultPath }

// SnapshotPath returns the snapshot file location.
func (s *Store) SnapshotPath() string { return s.snapshotPath }

// Close closes the append handle and releases the lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.out != nil {
		errs = append(errs, s.out.Close())
		s.out = nil
	}
	if s.lock != nil {
		errs = append(errs, s.lock.Unlock())
	}
	return errors.Join(errs...)
}

// Inspect reports which files exist. A result file without a snapshot
// cannot be resumed and yields ErrResume.
func (s *Store) Inspect() (Status, error) {
	hasSnap, err := ioutils.Exists(s.snapshotPath)
	if err != nil {
		return Status{}, err
	}
	hasRes, err := ioutils.Exists(s.resultPath)
	if err != nil {
		return Status{}, err
	}
	st := Status{HasSnapshot: hasSnap, HasResults: hasRes}
	if hasRes && !hasSnap {
		return st, fmt.Errorf("%w: %s exists without snapshot %s", ErrResume, s.resultPath, s.snapshotPath)
	}
	return st, nil
}

// WriteSnapshot atomically writes the snapshot and then an empty result
// file holding only the header.
func (s *Store) WriteSnapshot(records []model.TrackRecord) error {
	if err := ioutils.WriteFileAtomic(s.snapshotPath, EncodeSnapshot(records)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := ioutils.WriteFileAtomic(s.resultPath, EncodeResults(nil)); err != nil {
		return fmt.Errorf("write result header: %w", err)
	}
	return nil
}

// ReadSnapshot loads the snapshot.
func (s *Store) ReadSnapshot() ([]model.TrackRecord, error) {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	records, err := DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.snapshotPath, err)
	}
	return records, nil
}

// ReadResults loads every completed row. A missing file reads as empty.
func (s *Store) ReadResults() ([]model.TrackRecord, error) {
	data, err := os.ReadFile(s.resultPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	records, err := DecodeResults(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.resultPath, err)
	}
	return records, nil
}

// Repair removes a partial last row left by an interrupted append and
// makes sure the file starts with a header. It returns the number of
// bytes dropped.
func (s *Store) Repair() (int64, error) {
	dropped, err := ioutils.TrimTail(s.resultPath, intactLength)
	if err != nil {
		return 0, fmt.Errorf("repair results: %w", err)
	}
	info, err := os.Stat(s.resultPath)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
		if werr := ioutils.WriteFileAtomic(s.resultPath, EncodeResults(nil)); werr != nil {
			return dropped, fmt.Errorf("write result header: %w", werr)
		}
		return dropped, nil
	}
	return dropped, err
}

// Append writes one completed record and flushes it to stable storage.
// Safe for concurrent use; rows are written whole and one at a time.
func (s *Store) Append(r model.TrackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out == nil {
		f, err := ioutils.OpenAppend(s.resultPath)
		if err != nil {
			return fmt.Errorf("open results: %w", err)
		}
		s.out = f
	}
	if err := ioutils.AppendSync(s.out, EncodeResult(r)); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

// Rewrite atomically replaces the result file with records.
func (s *Store) Rewrite(records []model.TrackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out != nil {
		if err := s.out.Close(); err != nil {
			return err
		}
		s.out = nil
	}
	if err := ioutils.WriteFileAtomic(s.resultPath, EncodeResults(records)); err != nil {
		return fmt.Errorf("rewrite results: %w", err)
	}
	return nil
}
