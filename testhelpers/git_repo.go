package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const textFileName = "test.txt"

// GitRepo is a scratch Git repository for testing.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new repository in dir with master as the
// default branch.
func NewGitRepo(dir string) (*GitRepo, error) {
	cmd := exec.Command("git", "-c", "init.defaultBranch=master", "-c", "core.autocrlf=false", "init", dir, "-b", "master")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	repo := &GitRepo{Dir: dir}

	// Configure Git user (required for commits)
	if err := repo.RunGit("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.RunGit("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}

	return repo, nil
}

// RunGit runs a git command in the repository.
func (r *GitRepo) RunGit(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %v failed: %s: %w", args, string(out), err)
	}
	return nil
}

// GitOutput runs a git command and returns its trimmed output.
func (r *GitRepo) GitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %v failed: %w", args, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CreateChangeAndCommit writes content to the shared test file and commits.
func (r *GitRepo) CreateChangeAndCommit(content, message string) error {
	if err := os.WriteFile(filepath.Join(r.Dir, textFileName), []byte(content), 0600); err != nil {
		return err
	}
	if err := r.RunGit("add", "-A"); err != nil {
		return err
	}
	return r.RunGit("commit", "--no-verify", "-m", message)
}

// CreateFileAndCommit writes content to an arbitrary file and commits.
func (r *GitRepo) CreateFileAndCommit(name, content, message string) error {
	if err := os.WriteFile(filepath.Join(r.Dir, name), []byte(content), 0600); err != nil {
		return err
	}
	if err := r.RunGit("add", "-A"); err != nil {
		return err
	}
	return r.RunGit("commit", "--no-verify", "-m", message)
}

// CreateAndCheckoutBranch creates a branch at HEAD and checks it out.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.RunGit("checkout", "-b", name)
}

// CheckoutBranch checks out an existing branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.RunGit("checkout", name)
}

// Head returns the commit SHA a ref points to.
func (r *GitRepo) Head(ref string) (string, error) {
	return r.GitOutput("rev-parse", ref)
}

// HasUncommittedChanges reports whether the working tree or index is dirty.
func (r *GitRepo) HasUncommittedChanges() (bool, error) {
	out, err := r.GitOutput("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// PushAll pushes all branches and tags to origin.
func (r *GitRepo) PushAll() error {
	if err := r.RunGit("push", "origin", "--all"); err != nil {
		return err
	}
	return r.RunGit("push", "origin", "--tags")
}

// Scene is a work repository wired to a bare origin, seeded with an
// initial commit on master.
type Scene struct {
	Repo      *GitRepo
	Dir       string
	RemoteDir string
}

// NewScene builds a work repo plus bare remote under t.TempDir().
func NewScene(t *testing.T) *Scene {
	t.Helper()

	base := t.TempDir()
	workDir := filepath.Join(base, "work")
	remoteDir := filepath.Join(base, "origin.git")

	cmd := exec.Command("git", "init", "--bare", remoteDir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to init bare remote: %v", err)
	}

	repo, err := NewGitRepo(workDir)
	if err != nil {
		t.Fatalf("failed to init work repo: %v", err)
	}
	if err := repo.RunGit("remote", "add", "origin", remoteDir); err != nil {
		t.Fatalf("failed to add remote: %v", err)
	}
	if err := repo.CreateChangeAndCommit("initial", "initial commit"); err != nil {
		t.Fatalf("failed to create initial commit: %v", err)
	}
	if err := repo.RunGit("push", "-u", "origin", "master"); err != nil {
		t.Fatalf("failed to push master: %v", err)
	}

	return &Scene{Repo: repo, Dir: workDir, RemoteDir: remoteDir}
}
