package model

import (
	"encoding/json"
	"fmt"
)

// ParseJob parses a serialized job definition. The group is always forced to
// the user-defined group and parameter ownership back-references are stamped
// with the enclosing job name, regardless of what the input carried.
func ParseJob(content []byte) (*JobDefinition, error) {
	var def JobDefinition
	if err := json.Unmarshal(content, &def); err != nil {
		return nil, fmt.Errorf("parse job definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	def.Group = JobGroupDefined
	for i := range def.Parameters {
		def.Parameters[i].JobName = def.Name
	}
	return &def, nil
}

// SerializeJob renders a job definition to its serialized form.
func SerializeJob(def *JobDefinition) ([]byte, error) {
	content, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("serialize job definition: %w", err)
	}
	return content, nil
}
