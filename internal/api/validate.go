package api

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when client-side validation rejects a request
// before any network call.
var ErrInvalidInput = errors.New("invalid input")

func validLaborValue(v int) bool {
	return v >= 0 && v <= MaxLaborValue
}

func validPosition(p JobPosition) bool {
	for _, known := range JobPositions {
		if p == known {
			return true
		}
	}
	return false
}

func validInjuryStatus(s InjuryStatus) bool {
	return s >= InjuryHealthy && s <= InjurySick
}

// Validate rejects malformed employee creation input.
func (r CreateEmployeeRequest) Validate() error {
	if r.RealName == "" {
		return fmt.Errorf("%w: realName is required", ErrInvalidInput)
	}
	if r.BirthDate == "" {
		return fmt.Errorf("%w: birthDate is required", ErrInvalidInput)
	}
	if !validPosition(r.JobPosition) {
		return fmt.Errorf("%w: unknown job position %q", ErrInvalidInput, r.JobPosition)
	}
	if !validLaborValue(r.LaborValue) {
		return fmt.Errorf("%w: laborValue must be 0..%d", ErrInvalidInput, MaxLaborValue)
	}
	if !validInjuryStatus(r.InjuryStatus) {
		return fmt.Errorf("%w: unknown injury status %d", ErrInvalidInput, r.InjuryStatus)
	}
	return nil
}

// Validate rejects malformed employee update input.
func (r UpdateEmployeeRequest) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return CreateEmployeeRequest{
		RealName:     r.RealName,
		BirthDate:    r.BirthDate,
		JobPosition:  r.JobPosition,
		LaborValue:   r.LaborValue,
		InjuryStatus: r.InjuryStatus,
	}.Validate()
}

// Validate rejects malformed project creation input.
func (r CreateProjectRequest) Validate() error {
	if r.ProjectName == "" {
		return fmt.Errorf("%w: projectName is required", ErrInvalidInput)
	}
	if !validLaborValue(r.RequiredLaborValue) {
		return fmt.Errorf("%w: requiredLaborValue must be 0..%d", ErrInvalidInput, MaxLaborValue)
	}
	return nil
}

// Validate rejects malformed project update input.
func (r UpdateProjectRequest) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return CreateProjectRequest{
		ProjectName:        r.ProjectName,
		WorkDescription:    r.WorkDescription,
		RequiredLaborValue: r.RequiredLaborValue,
	}.Validate()
}

// Validate rejects malformed log queries.
func (q LogQuery) Validate() error {
	if q.PageNum < 0 {
		return fmt.Errorf("%w: pageNum must be >= 0", ErrInvalidInput)
	}
	if q.PageSize <= 0 {
		return fmt.Errorf("%w: pageSize must be > 0", ErrInvalidInput)
	}
	return nil
}
