package notify_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"branchflow.dev/branchflow/internal/notify"
	"branchflow.dev/branchflow/internal/propagate"
)

func TestEventSummariesCarryNextSteps(t *testing.T) {
	reminder := notify.TagReminder{
		BranchKind: "release",
		BranchName: "r2",
		TagCommand: "git tag r2-complete && git push origin r2-complete",
	}
	require.Contains(t, reminder.Summary(), "git tag r2-complete && git push origin r2-complete")

	awaiting := notify.AwaitingReleaseCompletion{
		ParentRelease: "r2",
		TagCommand:    "git tag r2-complete && git push origin r2-complete",
	}
	require.Contains(t, awaiting.Summary(), "r2")
	require.Contains(t, awaiting.Summary(), awaiting.TagCommand)

	conflict := notify.ConflictDetected{Report: &propagate.ConflictReport{
		SourceRef:        "abc123",
		TargetBranch:     "d3",
		ConflictingPaths: []string{"pkg/auth/login.go"},
		ResolutionBranch: "merge-hotfix-to-dev-run42",
	}}
	summary := conflict.Summary()
	require.Contains(t, summary, "git fetch && git checkout merge-hotfix-to-dev-run42")
	require.Contains(t, summary, "pkg/auth/login.go")
}

func TestEventLogWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := notify.NewEventLogWriter(&buf)

	log.Emit(notify.ReleaseCreated{FromDev: "d7", NewRelease: "r7"})
	log.Emit(notify.HotfixPropagated{TargetDev: "d7"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first struct {
		Kind    notify.EventKind `json:"kind"`
		Time    string           `json:"time"`
		Payload struct {
			FromDev    string `json:"fromDev"`
			NewRelease string `json:"newRelease"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.Equal(t, notify.KindReleaseCreated, first.Kind)
	require.NotEmpty(t, first.Time)
	require.Equal(t, "d7", first.Payload.FromDev)
	require.Equal(t, "r7", first.Payload.NewRelease)

	var second struct {
		Kind notify.EventKind `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.Equal(t, notify.KindHotfixPropagated, second.Kind)
}

type captureNotifier struct {
	events []notify.Event
}

func (c *captureNotifier) Emit(event notify.Event) {
	c.events = append(c.events, event)
}

func TestMultiFansOutInOrder(t *testing.T) {
	a := &captureNotifier{}
	b := &captureNotifier{}
	multi := notify.Multi{a, b}

	event := notify.ReleaseDeployed{ReleaseBranch: "r3", TagName: "release-r3-20240102.030405"}
	multi.Emit(event)

	require.Equal(t, []notify.Event{event}, a.events)
	require.Equal(t, []notify.Event{event}, b.events)
}
