package model

import "time"

// JobLog is one immutable execution-log row. Rows are append-only: they are
// created by the log recorder and destroyed only by the retention sweeper or
// an explicit clear-by-name operation.
//
// TriggeredID correlates a terminal (finished/failed) row back to the
// triggered row that started the execution. It is nil for free-form log rows.
type JobLog struct {
	ID          int64
	JobName     string
	Handler     string
	Status      JobStatus
	TriggeredID *int64
	TriggeredAt time.Time
	FinishedAt  *time.Time
	Message     string
}
