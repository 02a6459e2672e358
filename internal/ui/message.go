package ui

import (
	"github.com/desertthunder/moodarc/internal/auth"
	"github.com/desertthunder/moodarc/internal/flow"
	"github.com/desertthunder/moodarc/internal/models"
)

// sessionCheckedMsg carries the backend session probe taken on startup or
// after the user retries from the login view.
type sessionCheckedMsg struct {
	probe auth.Probe
}

// progressMsg wraps one [flow.ProgressUpdate] read off the submission
// channel.
type progressMsg flow.ProgressUpdate

// submitDoneMsg signals that a submission finished. Exactly one of outcome
// and err is meaningful: validation and session problems arrive as err,
// everything after the request gate arrives as outcome.
type submitDoneMsg struct {
	outcome *flow.Outcome
	err     error
}

// historyFetchedMsg carries locally recorded generations for the history
// view.
type historyFetchedMsg struct {
	entries []*models.HistoryEntry
	err     error
}
