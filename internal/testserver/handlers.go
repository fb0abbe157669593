package testserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ganot/labordesk/internal/api"
)

// employed is the EmploymentStatus value for active employees; soft-deleted
// records keep their row with status 1 and drop out of listings.
const (
	statusEmployed = 0
	statusDeleted  = 1
)

func (s *Server) handleEmployeeQuery(w http.ResponseWriter, r *http.Request) {
	var q api.EmployeeQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}
	if q.PageSize <= 0 {
		q.PageSize = 15
	}
	if q.PageNum < 0 {
		writeErr(w, 400, "pageNum must be >= 0")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []api.Employee
	for _, e := range s.employees {
		if e.EmploymentStatus != statusEmployed {
			continue
		}
		if q.RealName != "" && e.RealName != q.RealName {
			continue
		}
		if q.JobPosition != "" && e.JobPosition != q.JobPosition {
			continue
		}
		matched = append(matched, e)
	}

	writeOK(w, paginate(matched, q.PageNum, q.PageSize))
}

func (s *Server) handleEmployeeCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}
	if err := req.Validate(); err != nil {
		writeErr(w, 400, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.employees = append(s.employees, api.Employee{
		ID:           id,
		RealName:     req.RealName,
		Gender:       req.Gender,
		BirthDate:    req.BirthDate,
		JobPosition:  req.JobPosition,
		LaborValue:   req.LaborValue,
		InjuryStatus: req.InjuryStatus,
		CreateTime:   time.Now().Format(time.DateTime),
	})
	writeOK(w, id)
}

func (s *Server) handleEmployeeUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}
	if err := req.Validate(); err != nil {
		writeErr(w, 400, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.employees {
		if s.employees[i].ID == req.ID {
			s.employees[i].RealName = req.RealName
			s.employees[i].BirthDate = req.BirthDate
			s.employees[i].LaborValue = req.LaborValue
			s.employees[i].InjuryStatus = req.InjuryStatus
			s.employees[i].JobPosition = req.JobPosition
			writeOK(w, nil)
			return
		}
	}
	writeErr(w, 404, "employee not found")
}

func (s *Server) handleEmployeeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErr(w, 400, "malformed id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.employees {
		if s.employees[i].ID == id {
			s.employees[i].EmploymentStatus = statusDeleted
			writeOK(w, nil)
			return
		}
	}
	writeErr(w, 404, "employee not found")
}

func (s *Server) handleProjectQuery(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := append([]api.Project(nil), s.projects...)
	writeOK(w, projects)
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}
	if err := req.Validate(); err != nil {
		writeErr(w, 400, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.projects = append(s.projects, api.Project{
		ID:                 id,
		ProjectName:        req.ProjectName,
		WorkDescription:    req.WorkDescription,
		RequiredLaborValue: req.RequiredLaborValue,
		Status:             api.ProjectPending,
		CreateTime:         time.Now().Format(time.DateTime),
	})
	writeOK(w, id)
}

func (s *Server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "malformed request")
		return
	}
	if err := req.Validate(); err != nil {
		writeErr(w, 400, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == req.ID {
			s.projects[i].ProjectName = req.ProjectName
			s.projects[i].WorkDescription = req.WorkDescription
			s.projects[i].RequiredLaborValue = req.RequiredLaborValue
			s.projects[i].UpdateTime = time.Now().Format(time.DateTime)
			writeOK(w, nil)
			return
		}
	}
	writeErr(w, 404, "project not found")
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErr(w, 400, "malformed id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			writeOK(w, nil)
			return
		}
	}
	writeErr(w, 404, "project not found")
}

func paginate[T any](items []T, pageNum, pageSize int) api.PageResult[T] {
	total := int64(len(items))
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	start := pageNum * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	records := items[start:end]
	if records == nil {
		records = []T{}
	}
	return api.PageResult[T]{
		PageNum:    pageNum,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Records:    records,
	}
}
