// Package runtime wires the gateway, engine, notifiers and logger together
// for the CLI commands.
package runtime

import (
	"context"

	"branchflow.dev/branchflow/internal/config"
	"branchflow.dev/branchflow/internal/engine"
	"branchflow.dev/branchflow/internal/git"
	"branchflow.dev/branchflow/internal/notify"
	"branchflow.dev/branchflow/internal/output"
)

// Context provides access to the wired components for commands.
type Context struct {
	Context  context.Context
	Gateway  git.Gateway
	Engine   *engine.Engine
	Splog    *output.Splog
	Notifier notify.Notifier
	Config   *config.Config
	RepoRoot string
}

// NewContext discovers the repository, loads configuration and wires up
// the engine with its notifier chain.
func NewContext(ctx context.Context, debug bool) (*Context, error) {
	repoRoot, err := git.GetRepoRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return nil, err
	}

	splog, err := output.NewSplogWithLogFile(debug, config.DebugLogPath(repoRoot))
	if err != nil {
		return nil, err
	}

	gw, err := git.NewGateway(repoRoot, cfg.Remote)
	if err != nil {
		return nil, err
	}

	notifiers := notify.Multi{
		notify.NewSplogNotifier(splog),
		notify.NewEventLog(cfg.EventLogPath(repoRoot)),
	}
	if cfg.GitHub.Enabled {
		gh, err := notify.NewGitHubNotifier(ctx, gw, splog, cfg.GitHub.Owner, cfg.GitHub.Repo)
		if err != nil {
			splog.Warn("GitHub notifier disabled: %v", err)
		} else {
			notifiers = append(notifiers, gh)
		}
	}

	eng := engine.NewEngine(gw, notifiers, splog, cfg.Remote)

	return &Context{
		Context:  ctx,
		Gateway:  gw,
		Engine:   eng,
		Splog:    splog,
		Notifier: notifiers,
		Config:   cfg,
		RepoRoot: repoRoot,
	}, nil
}

// Close releases resources held by the context.
func (c *Context) Close() error {
	if c.Splog != nil {
		return c.Splog.Close()
	}
	return nil
}
