package testserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ganot/labordesk/internal/api"
)

// handleAllocate produces a fixture allocation: healthy employees are taken
// in seed order until a project's required labor is covered. It fills the
// result shape the real backend returns; it is not the production
// algorithm.
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req api.AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}

	acct, ok := s.currentAccount(r)
	if !ok {
		writeErr(w, 401, "unknown account")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var targets []*api.Project
	for i := range s.projects {
		p := &s.projects[i]
		if req.ProjectID != nil {
			if p.ID == *req.ProjectID {
				targets = append(targets, p)
			}
			continue
		}
		if p.Status == api.ProjectPending {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		writeErr(w, 400, "no pending projects to allocate")
		return
	}

	now := time.Now().Format(time.DateTime)
	batch := api.BatchAllocateResult{
		TotalProjects:  len(targets),
		AllocationTime: now,
	}

	for _, p := range targets {
		result := api.AllocateResult{
			ProjectID:          p.ID,
			ProjectName:        p.ProjectName,
			ProjectDescription: p.WorkDescription,
			RequiredLaborValue: p.RequiredLaborValue,
		}
		for _, e := range s.employees {
			if result.TotalLaborValue >= p.RequiredLaborValue {
				break
			}
			if e.EmploymentStatus != statusEmployed || e.InjuryStatus != api.InjuryHealthy {
				continue
			}
			result.AllocatedEmployees = append(result.AllocatedEmployees, api.AllocatedEmployee{
				EmployeeID:          e.ID,
				EmployeeName:        e.RealName,
				ProjectLaborValue:   e.LaborValue,
				TotalLaborValue:     e.LaborValue,
				AllocatedLaborValue: e.LaborValue,
			})
			result.TotalLaborValue += e.LaborValue
		}
		result.Difference = result.TotalLaborValue - p.RequiredLaborValue
		p.Status = api.ProjectCompleted
		p.UpdateTime = now

		batch.AllocationResults = append(batch.AllocationResults, result)

		blob, _ := json.Marshal([]api.AllocateResult{result})
		s.logs = append(s.logs, api.AllocationLog{
			ID:                 s.nextID,
			RequestTime:        now,
			OperatorID:         acct.user.UID,
			OperatorName:       acct.user.RealName,
			ProjectID:          p.ID,
			ProjectName:        p.ProjectName,
			RequiredLaborValue: p.RequiredLaborValue,
			AllocationResult:   string(blob),
		})
		s.nextID++
	}

	writeOK(w, batch)
}

func (s *Server) handleLogQuery(w http.ResponseWriter, r *http.Request) {
	var q api.LogQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}
	if q.PageSize <= 0 {
		q.PageSize = 5
	}
	if q.PageNum < 0 {
		writeErr(w, 400, "pageNum must be >= 0")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []api.AllocationLog
	for _, entry := range s.logs {
		if q.OperatorID != nil && entry.OperatorID != *q.OperatorID {
			continue
		}
		if q.ProjectID != nil && entry.ProjectID != *q.ProjectID {
			continue
		}
		matched = append(matched, entry)
	}

	writeOK(w, paginate(matched, q.PageNum, q.PageSize))
}
