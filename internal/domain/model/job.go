package model

import (
	"strings"
	"time"
)

// JobStatus is the rollup status of a job, derived from its most recent
// terminal execution event, or the severity of an execution log entry.
type JobStatus string

const (
	// JobStatusTriggered marks the start of an execution.
	JobStatusTriggered JobStatus = "triggered"
	// JobStatusFinished marks a successful execution (terminal).
	JobStatusFinished JobStatus = "finished"
	// JobStatusFailed marks a failed execution (terminal).
	JobStatusFailed JobStatus = "failed"
	// JobStatusLogged is a free-form execution log entry.
	JobStatusLogged JobStatus = "logged"
	// JobStatusError is an error-severity execution log entry.
	JobStatusError JobStatus = "error"
	// JobStatusWarn is a warning-severity execution log entry.
	JobStatusWarn JobStatus = "warn"
	// JobStatusInfo is an info-severity execution log entry.
	JobStatusInfo JobStatus = "info"
)

// Valid returns true if the status is one of the known values.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusTriggered,
		JobStatusFinished,
		JobStatusFailed,
		JobStatusLogged,
		JobStatusError,
		JobStatusWarn,
		JobStatusInfo:
		return true
	default:
		return false
	}
}

// Terminal returns true for statuses that conclude an execution and drive
// the rollup status of the owning job.
func (s JobStatus) Terminal() bool {
	return s == JobStatusFinished || s == JobStatusFailed
}

// JobGroupDefined is the namespace for user-defined jobs. Parsed job
// definitions are always forced into this group.
const JobGroupDefined = "defined"

// JobDefinition describes a named, schedulable unit of work.
//
// Name is the primary key. CreatedBy and CreatedAt are stamped once, on first
// insert, and never overwritten by later updates.
type JobDefinition struct {
	Name         string         `json:"name"`
	Group        string         `json:"group,omitempty"`
	HandlerClass string         `json:"class,omitempty"`
	Handler      string         `json:"handler"`
	Engine       string         `json:"engine,omitempty"`
	Description  string         `json:"description,omitempty"`
	Expression   string         `json:"expression"`
	Singleton    bool           `json:"singleton,omitempty"`
	Enabled      bool           `json:"enabled"`
	Status       JobStatus      `json:"status,omitempty"`
	Message      string         `json:"message,omitempty"`
	ExecutedAt   *time.Time     `json:"executedAt,omitempty"`
	CreatedBy    string         `json:"createdBy,omitempty"`
	CreatedAt    time.Time      `json:"createdAt,omitzero"`
	Parameters   []JobParameter `json:"parameters,omitempty"`
}

// Validate checks the invariants required before persisting a job definition.
func (d *JobDefinition) Validate() error {
	if d == nil {
		return &ValidationError{Field: "job", Reason: "job definition is required"}
	}
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "job name must not be empty"}
	}
	for i := range d.Parameters {
		if strings.TrimSpace(d.Parameters[i].Name) == "" {
			return &ValidationError{Field: "parameters", Reason: "parameter name must not be empty"}
		}
	}
	return nil
}
