package job

import "context"

// SessionSweeper is implemented by the roster session manager.
type SessionSweeper interface {
	Sweep()
	Len() int
}

// RosterSweepJob evicts roster sessions whose admins have gone idle.
type RosterSweepJob struct {
	sessions SessionSweeper
}

func NewRosterSweepJob(sessions SessionSweeper) *RosterSweepJob {
	return &RosterSweepJob{sessions: sessions}
}

func (j *RosterSweepJob) Name() string {
	return "roster.session_sweep"
}

func (j *RosterSweepJob) Run(_ context.Context) error {
	j.sessions.Sweep()
	return nil
}
