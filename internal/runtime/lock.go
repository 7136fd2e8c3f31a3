package runtime

import (
	"fmt"
	"os"
	"strconv"
)

// RepoLock is an advisory, repo-scoped lock serializing promotion actions.
// The working tree is a serially shared resource: at most one in-flight
// action per physical repository.
type RepoLock struct {
	path string
}

// AcquireRepoLock takes the lock or fails if another run holds it. There is
// no waiting; concurrent dispatches are expected to retry from the hosting
// environment.
func AcquireRepoLock(path string) (*RepoLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("another promotion is in flight (lock held at %s); remove the file if it is stale", path)
		}
		return nil, fmt.Errorf("failed to take repo lock: %w", err)
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
	_ = f.Close()

	return &RepoLock{path: path}, nil
}

// Release drops the lock.
func (l *RepoLock) Release() error {
	return os.Remove(l.path)
}
