package state

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

const (
	doneFilename          = "ok_projects.txt"
	failedFilename        = "failed_projects.txt"
	lastProcessedFilename = "last_project_processed.txt"
	lockFilename          = "state.lock"
)

// ErrLocked indicates another process currently owns the state directory.
var ErrLocked = errors.New("state directory is locked by another run")

// Store tracks durable per-project completion state for resumable runs.
type Store struct {
	dir  string
	lock *flock.Flock

	mu            sync.Mutex
	done          map[string]struct{}
	failed        map[string]struct{}
	lastProcessed string
}

// Snapshot is a point-in-time copy of the durable sets.
type Snapshot struct {
	Done          map[string]struct{}
	Failed        map[string]struct{}
	LastProcessed string
}

// Open acquires the state directory lock and loads the durable sets.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFilename))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	if !acquired {
		return nil, ErrLocked
	}

	store := &Store{dir: dir, lock: lock}
	if err := store.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the state directory lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Dir returns the state directory path.
func (s *Store) Dir() string { return s.dir }

// DonePath returns the path of the done-set file.
func (s *Store) DonePath() string { return filepath.Join(s.dir, doneFilename) }

// FailedPath returns the path of the failed-set file.
func (s *Store) FailedPath() string { return filepath.Join(s.dir, failedFilename) }

// LastProcessedPath returns the path of the last-processed marker file.
func (s *Store) LastProcessedPath() string { return filepath.Join(s.dir, lastProcessedFilename) }

// IsDone reports whether the project completed successfully in any recorded run.
func (s *Store) IsDone(project string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.done[project]
	return ok
}

// IsFailed reports whether the project is in the recorded failed set.
func (s *Store) IsFailed(project string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.failed[project]
	return ok
}

// MarkDone durably appends the project to the done set.
func (s *Store) MarkDone(project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.done[project]; ok {
		return nil
	}
	if err := appendLine(s.DonePath(), project); err != nil {
		return fmt.Errorf("record done %q: %w", project, err)
	}
	s.done[project] = struct{}{}
	return nil
}

// MarkFailed durably appends the project to the failed set.
func (s *Store) MarkFailed(project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.failed[project]; ok {
		return nil
	}
	if err := appendLine(s.FailedPath(), project); err != nil {
		return fmt.Errorf("record failed %q: %w", project, err)
	}
	s.failed[project] = struct{}{}
	return nil
}

// MarkLastProcessed overwrites the advisory last-processed marker.
func (s *Store) MarkLastProcessed(project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.LastProcessedPath(), []byte(project+"\n"), 0o644); err != nil {
		return fmt.Errorf("record last processed %q: %w", project, err)
	}
	s.lastProcessed = project
	return nil
}

// ResetForCleanRun truncates the done and failed sets and removes the
// last-processed marker. Both set files exist, empty, afterwards.
func (s *Store) ResetForCleanRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, path := range []string{s.DonePath(), s.FailedPath()} {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("truncate %s: %w", filepath.Base(path), err)
		}
	}
	if err := os.Remove(s.LastProcessedPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove last processed marker: %w", err)
	}
	s.done = make(map[string]struct{})
	s.failed = make(map[string]struct{})
	s.lastProcessed = ""
	return nil
}

// Snapshot returns a copy of the in-memory sets.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Done:          make(map[string]struct{}, len(s.done)),
		Failed:        make(map[string]struct{}, len(s.failed)),
		LastProcessed: s.lastProcessed,
	}
	for project := range s.done {
		snap.Done[project] = struct{}{}
	}
	for project := range s.failed {
		snap.Failed[project] = struct{}{}
	}
	return snap
}

func (s *Store) load() error {
	done, err := readSet(s.DonePath())
	if err != nil {
		return err
	}
	failed, err := readSet(s.FailedPath())
	if err != nil {
		return err
	}
	last, err := readMarker(s.LastProcessedPath())
	if err != nil {
		return err
	}
	s.done = done
	s.failed = failed
	s.lastProcessed = last
	return nil
}

func appendLine(path, value string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(value + "\n"); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func readSet(path string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return set, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return set, nil
}

func readMarker(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return strings.TrimSpace(string(data)), nil
}
