package model

// JobParameter is a declared input of a job. It is owned by a JobDefinition
// and identified by the composite key (JobName, Name). The stored set is
// reconciled against the declared set on every job create-or-update.
type JobParameter struct {
	// JobName is the owning job. It is not part of the serialized form and
	// gets restamped from the enclosing definition on parse.
	JobName      string   `json:"-"`
	Name         string   `json:"name"`
	Type         string   `json:"type,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	Choices      []string `json:"choices,omitempty"`
	Description  string   `json:"description,omitempty"`
}
