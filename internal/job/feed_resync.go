package job

import (
	"context"
	"fmt"
)

// FeedFiller reloads the registration feed from storage.
type FeedFiller interface {
	Fill(ctx context.Context) error
}

// FeedResyncJob rebuilds the registration feed so entries changed or deleted
// after their notification do not linger.
type FeedResyncJob struct {
	feed FeedFiller
}

func NewFeedResyncJob(feed FeedFiller) *FeedResyncJob {
	return &FeedResyncJob{feed: feed}
}

func (j *FeedResyncJob) Name() string {
	return "registration.feed_resync"
}

func (j *FeedResyncJob) Run(ctx context.Context) error {
	if err := j.feed.Fill(ctx); err != nil {
		return fmt.Errorf("feed resync job: %w", err)
	}
	return nil
}
