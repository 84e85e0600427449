// Package lockfile provides a single-host advisory lock backed by the
// presence of a file. Acquisition never waits: a held lock fails at once.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// ErrLockBusy is returned when the lock file already exists.
var ErrLockBusy = errors.New("lock already held")

// LockInfo is written into the lock file to identify the holder.
type LockInfo struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Lock is a held lock. Release it exactly once; extra calls are no-ops.
type Lock struct {
	path string
	file *os.File
	once sync.Once
	err  error
}

// TryAcquire creates path exclusively. If it already exists the returned
// error wraps ErrLockBusy and names the current holder when readable.
func TryAcquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		if info, rerr := ReadLockInfo(path); rerr == nil {
			return nil, fmt.Errorf("%s: %w (pid %d on %s since %s)",
				path, ErrLockBusy, info.PID, info.Hostname, info.StartedAt.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("%s: %w", path, ErrLockBusy)
	}
	if err != nil {
		return nil, fmt.Errorf("creating lock %s: %w", path, err)
	}

	host, _ := os.Hostname()
	info := LockInfo{PID: os.Getpid(), Hostname: host, StartedAt: time.Now().UTC()}
	// The file's presence is the lock; holder info is best effort.
	_ = json.NewEncoder(f).Encode(info)

	return &Lock{path: path, file: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release closes and removes the lock file.
func (l *Lock) Release() error {
	l.once.Do(func() {
		cerr := l.file.Close()
		rerr := os.Remove(l.path)
		if errors.Is(rerr, os.ErrNotExist) {
			rerr = nil
		}
		l.err = errors.Join(cerr, rerr)
	})
	return l.err
}

// ReadLockInfo reads holder information from an existing lock file.
func ReadLockInfo(path string) (*LockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decoding lock info: %w", err)
	}
	return &info, nil
}
