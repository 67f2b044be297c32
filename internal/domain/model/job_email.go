package model

// JobEmail is a watcher address registered to receive transition
// notifications for one job. When a job has watchers, they replace the
// globally configured recipient list.
type JobEmail struct {
	ID      string
	JobName string
	Email   string
}
