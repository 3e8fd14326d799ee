package snapshot

import (
	"context"

	"github.com/robfig/cron/v3"
)

// DefaultJanitorSchedule runs eviction once a day.
const DefaultJanitorSchedule = "@daily"

// Janitor periodically re-runs the store's eviction pass, for long-lived
// processes where saves are rare but snapshots still age out.
type Janitor struct {
	cron  *cron.Cron
	store *Store
}

// NewJanitor schedules eviction on the store with a cron expression.
func NewJanitor(store *Store, schedule string) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		store.Evict(context.Background())
	})
	if err != nil {
		return nil, err
	}
	return &Janitor{cron: c, store: store}, nil
}

// Start begins running the schedule in its own goroutine.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop stops the schedule and waits for a running eviction to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
