package platform

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// lockPayload is the JSON body of a .catalyst.lock file. ID distinguishes
// one orchestrator invocation from the next in logs/diagnostics even when
// two runs share a PID across process-table reuse.
type lockPayload struct {
	ID        string    `json:"id"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Command   string    `json:"command"`
}

// InitInProgress reports that another live orchestrator holds the lock.
type InitInProgress struct {
	PID      int
	LockPath string
}

func (e *InitInProgress) Error() string {
	return fmt.Sprintf("another catalyst process (pid %d) is already running in this project; if that's stale, remove %s", e.PID, e.LockPath)
}

// Lock is an RAII guard over a .catalyst.lock file. The zero value is not
// usable; obtain one via AcquireLock. Release is idempotent and safe to
// call from a defer even after a partial failure.
type Lock struct {
	path     string
	id       string
	released bool
}

// ID returns the unique identifier minted for this lock acquisition.
func (l *Lock) ID() string { return l.id }

// AcquireLock creates path with O_CREATE|O_EXCL. On conflict it reads the
// existing lock's PID, probes liveness, and — if the holder is dead —
// removes the stale lock and retries exactly once before giving up.
func AcquireLock(path, command string) (*Lock, error) {
	lock, err := tryAcquire(path, command)
	if err == nil {
		return lock, nil
	}
	var inProgress *InitInProgress
	if !asInitInProgress(err, &inProgress) {
		return nil, err
	}
	if inProgress.PID < 0 || processAlive(inProgress.PID) {
		return nil, inProgress
	}
	// Stale lock: remove and retry once.
	_ = os.Remove(path)
	lock, err = tryAcquire(path, command)
	if err != nil {
		return nil, err
	}
	return lock, nil
}

func tryAcquire(path, command string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			existing, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil, fmt.Errorf("read existing lock %s: %w", path, readErr)
			}
			var payload lockPayload
			if jsonErr := json.Unmarshal(existing, &payload); jsonErr != nil {
				// Unreadable lock content: treat conservatively as held by
				// an unknown, presumed-live process rather than clobbering it.
				return nil, &InitInProgress{PID: -1, LockPath: path}
			}
			return nil, &InitInProgress{PID: payload.PID, LockPath: path}
		}
		return nil, fmt.Errorf("create lock %s: %w", path, err)
	}
	defer f.Close()

	id := uuid.NewString()
	payload := lockPayload{ID: id, PID: os.Getpid(), StartedAt: time.Now().UTC(), Command: command}
	data, err := json.Marshal(payload)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("marshal lock payload: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write lock payload: %w", err)
	}
	return &Lock{path: path, id: id}, nil
}

// Release removes the lock file. Safe to call multiple times.
func (l *Lock) Release() error {
	if l == nil || l.released {
		return nil
	}
	l.released = true
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

func asInitInProgress(err error, out **InitInProgress) bool {
	if e, ok := err.(*InitInProgress); ok {
		*out = e
		return true
	}
	return false
}
