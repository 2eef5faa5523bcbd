package domain

import "time"

// Cadence is the recurrence interval governing a scheduled job.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
	CadenceCustom  Cadence = "custom"
)

// Interval resolves the cadence to a duration. Custom cadences fall back to
// the supplied interval; a non-positive custom interval degrades to daily.
func (c Cadence) Interval(custom time.Duration) time.Duration {
	switch c {
	case CadenceWeekly:
		return 7 * 24 * time.Hour
	case CadenceMonthly:
		return 30 * 24 * time.Hour
	case CadenceCustom:
		if custom > 0 {
			return custom
		}
		return 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// JobStatus enumerates scheduled-job lifecycle states.
type JobStatus string

const (
	JobActive    JobStatus = "active"
	JobPaused    JobStatus = "paused"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ScheduledJob is a recurring instruction to scrape a URL. The scheduler is
// the only writer of its timing fields.
type ScheduledJob struct {
	ID             string
	TargetURL      string
	Cadence        Cadence
	CustomInterval time.Duration
	Status         JobStatus
	LastRunAt      *time.Time
	NextRunAt      time.Time
	Config         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
