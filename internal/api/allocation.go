package api

import (
	"encoding/json"
	"fmt"
)

// blobProject tolerates both blob layouts the backend has produced: the full
// form with allocatedEmployees objects and the compact form with bare
// allocatedEmployeeIds.
type blobProject struct {
	ProjectName          string            `json:"projectName"`
	ProjectDescription   string            `json:"projectDescription"`
	RequiredLaborValue   int               `json:"requiredLaborValue"`
	TotalLaborValue      int               `json:"totalLaborValue"`
	Difference           int               `json:"difference"`
	AllocatedEmployees   []json.RawMessage `json:"allocatedEmployees"`
	AllocatedEmployeeIDs []json.RawMessage `json:"allocatedEmployeeIds"`
}

// SummarizeAllocationBlob parses a serialized allocation-result blob into a
// one-line summary and an indented details view. ok is false when the blob is
// not valid JSON of the expected shape; callers then fall back to displaying
// the raw string.
func SummarizeAllocationBlob(blob string) (summary, details string, ok bool) {
	var projects []blobProject
	if err := json.Unmarshal([]byte(blob), &projects); err != nil || len(projects) == 0 {
		return "", "", false
	}

	first := projects[0]
	name := first.ProjectName
	if name == "" {
		name = first.ProjectDescription
	}
	if name == "" {
		name = "project"
	}

	allocated := len(first.AllocatedEmployees)
	if allocated == 0 {
		allocated = len(first.AllocatedEmployeeIDs)
	}

	required := first.RequiredLaborValue
	if required == 0 {
		required = first.TotalLaborValue
	}

	summary = fmt.Sprintf("%s - required %d, allocated %d employees, difference %d",
		name, required, allocated, first.Difference)

	// Round-trip through generic JSON so details stay faithful to the blob
	// rather than to our partial struct.
	var generic any
	if err := json.Unmarshal([]byte(blob), &generic); err == nil {
		if pretty, err := json.MarshalIndent(generic, "", "  "); err == nil {
			return summary, string(pretty), true
		}
	}
	return summary, blob, true
}
