package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"branchflow.dev/branchflow/internal/git"
	"branchflow.dev/branchflow/internal/output"
)

// statusContext is the commit-status context promotion events are reported
// under.
const statusContext = "branchflow/promotion"

// GitHubNotifier forwards promotion events as commit statuses on the acting
// branch head. It is the concrete binding to the external messaging
// collaborator; delivery is best-effort and never fails a promotion.
type GitHubNotifier struct {
	client *github.Client
	gw     git.Gateway
	splog  *output.Splog
	owner  string
	repo   string
}

// NewGitHubNotifier creates a notifier for the given repository. The token
// comes from GITHUB_TOKEN, falling back to `gh auth token`.
func NewGitHubNotifier(ctx context.Context, gw git.Gateway, splog *output.Splog, owner, repo string) (*GitHubNotifier, error) {
	token, err := getGitHubToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub token: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	return &GitHubNotifier{
		client: client,
		gw:     gw,
		splog:  splog,
		owner:  owner,
		repo:   repo,
	}, nil
}

// getGitHubToken retrieves the GitHub token from the environment or the gh CLI
func getGitHubToken(ctx context.Context) (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("GITHUB_TOKEN not set and gh CLI unavailable: %w", err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}
	return token, nil
}

// Emit reports the event as a commit status. Failures are logged and
// dropped; the notifier is an observer of the promotion, not part of it.
func (n *GitHubNotifier) Emit(event Event) {
	ref, state := statusTarget(event)
	if ref == "" {
		return
	}

	ctx := context.Background()
	sha, err := n.gw.CurrentHeadCommit(ctx, ref)
	if err != nil {
		n.splog.Debug("github notifier: cannot resolve %s: %v", ref, err)
		return
	}

	description := event.Summary()
	if i := strings.IndexByte(description, '\n'); i >= 0 {
		description = description[:i]
	}
	// The statuses API caps descriptions at 140 characters
	if len(description) > 140 {
		description = description[:137] + "..."
	}

	status := &github.RepoStatus{
		State:       github.String(state),
		Context:     github.String(statusContext),
		Description: github.String(description),
	}
	if _, _, err := n.client.Repositories.CreateStatus(ctx, n.owner, n.repo, sha, status); err != nil {
		n.splog.Debug("github notifier: failed to create status on %s: %v", ref, err)
	}
}

// statusTarget maps an event to the branch whose head carries the status
// and the status state to report.
func statusTarget(event Event) (ref, state string) {
	switch e := event.(type) {
	case TagReminder:
		return e.BranchName, "pending"
	case ReleaseCreated:
		return e.NewRelease, "success"
	case ReleaseDeployed:
		return e.ReleaseBranch, "success"
	case AwaitingReleaseCompletion:
		return e.ParentRelease, "pending"
	case HotfixPropagated:
		return e.TargetDev, "success"
	case ConflictDetected:
		return e.Report.ResolutionBranch, "failure"
	case PropagationFailed:
		return e.TargetDev, "error"
	default:
		return "", ""
	}
}
