// Package api defines the wire types shared with the labor-allocation backend.
package api

// JobPosition identifies an employee's role.
type JobPosition string

const (
	PositionHR        JobPosition = "hr"
	PositionDeveloper JobPosition = "developer"
	PositionProduct   JobPosition = "product"
	PositionUI        JobPosition = "ui"
	PositionFinance   JobPosition = "finance"
	PositionManager   JobPosition = "manager"
)

// JobPositions lists every valid position.
var JobPositions = []JobPosition{
	PositionHR,
	PositionDeveloper,
	PositionProduct,
	PositionUI,
	PositionFinance,
	PositionManager,
}

// InjuryStatus grades an employee's current fitness for work.
type InjuryStatus int

const (
	InjuryHealthy InjuryStatus = 0
	InjuryMinor   InjuryStatus = 1
	InjurySevere  InjuryStatus = 2
	InjurySick    InjuryStatus = 3
)

// ProjectStatus tracks a labor project's allocation lifecycle.
type ProjectStatus int

const (
	ProjectPending   ProjectStatus = 0
	ProjectCompleted ProjectStatus = 1
	ProjectCancelled ProjectStatus = 2
)

// MaxLaborValue is the upper bound for employee and project labor values.
const MaxLaborValue = 300

// PageResult wraps a paginated server collection.
type PageResult[T any] struct {
	PageNum    int   `json:"pageNum"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Records    []T   `json:"records"`
}

// SecurityUser is the authenticated identity returned by login.
type SecurityUser struct {
	UID              int64        `json:"uid"`
	Username         string       `json:"username"`
	RealName         string       `json:"realName"`
	JobPosition      JobPosition  `json:"jobPosition"`
	LaborValue       int          `json:"laborValue"`
	InjuryStatus     InjuryStatus `json:"injuryStatus"`
	BirthDate        string       `json:"birthDate"`
	EmploymentStatus int          `json:"employmentStatus"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	RealName string `json:"realName"`
	Password string `json:"password"`
}

// LoginResponse is the login result payload.
type LoginResponse struct {
	Token string       `json:"token"`
	User  SecurityUser `json:"user"`
}

// Employee is one employee record as listed by the backend.
type Employee struct {
	ID               int64        `json:"id"`
	RealName         string       `json:"realName"`
	Gender           int          `json:"gender"`
	BirthDate        string       `json:"birthDate"`
	JobPosition      JobPosition  `json:"jobPosition"`
	JobPositionName  string       `json:"jobPositionName"`
	LaborValue       int          `json:"laborValue"`
	InjuryStatus     InjuryStatus `json:"injuryStatus"`
	EmploymentStatus int          `json:"employmentStatus"`
	CreateTime       string       `json:"createTime"`
}

// EmployeeQuery filters the paginated employee listing.
type EmployeeQuery struct {
	RealName         string      `json:"realName,omitempty"`
	JobPosition      JobPosition `json:"jobPosition,omitempty"`
	EmploymentStatus *int        `json:"employmentStatus,omitempty"`
	StartBirthDate   string      `json:"startBirthDate,omitempty"`
	EndBirthDate     string      `json:"endBirthDate,omitempty"`
	PageNum          int         `json:"pageNum"`
	PageSize         int         `json:"pageSize"`
}

// CreateEmployeeRequest creates a new employee.
type CreateEmployeeRequest struct {
	RealName     string       `json:"realName"`
	Gender       int          `json:"gender"`
	BirthDate    string       `json:"birthDate"`
	JobPosition  JobPosition  `json:"jobPosition"`
	LaborValue   int          `json:"laborValue"`
	InjuryStatus InjuryStatus `json:"injuryStatus"`
}

// UpdateEmployeeRequest updates an existing employee.
type UpdateEmployeeRequest struct {
	ID           int64        `json:"id"`
	RealName     string       `json:"realName"`
	BirthDate    string       `json:"birthDate"`
	LaborValue   int          `json:"laborValue"`
	InjuryStatus InjuryStatus `json:"injuryStatus"`
	JobPosition  JobPosition  `json:"jobPosition"`
}

// Project is one labor project record.
type Project struct {
	ID                 int64         `json:"id"`
	ProjectName        string        `json:"projectName"`
	WorkDescription    string        `json:"workDescription"`
	RequiredLaborValue int           `json:"requiredLaborValue"`
	Status             ProjectStatus `json:"status"`
	CreateTime         string        `json:"createTime"`
	UpdateTime         string        `json:"updateTime"`
}

// CreateProjectRequest creates a new labor project.
type CreateProjectRequest struct {
	ProjectName        string `json:"projectName"`
	WorkDescription    string `json:"workDescription"`
	RequiredLaborValue int    `json:"requiredLaborValue"`
}

// UpdateProjectRequest updates an existing labor project.
type UpdateProjectRequest struct {
	ID                 int64  `json:"id"`
	ProjectName        string `json:"projectName"`
	WorkDescription    string `json:"workDescription"`
	RequiredLaborValue int    `json:"requiredLaborValue"`
}

// AllocateRequest triggers a server-side allocation run. A nil ProjectID
// means allocate across all pending projects.
type AllocateRequest struct {
	ProjectID *int64 `json:"projectId,omitempty"`
}

// AllocatedEmployee is one employee assignment inside an allocation result.
type AllocatedEmployee struct {
	EmployeeID          int64  `json:"employeeId"`
	EmployeeName        string `json:"employeeName"`
	ProjectLaborValue   int    `json:"projectLaborValue"`
	TotalLaborValue     int    `json:"totalLaborValue"`
	AllocatedLaborValue int    `json:"allocatedLaborValue"`
}

// AllocateResult is the assignment outcome for a single project. The client
// displays it; the computation is entirely server-side.
type AllocateResult struct {
	ProjectID          int64               `json:"projectId"`
	ProjectName        string              `json:"projectName"`
	ProjectDescription string              `json:"projectDescription"`
	RequiredLaborValue int                 `json:"requiredLaborValue"`
	AllocatedEmployees []AllocatedEmployee `json:"allocatedEmployees"`
	TotalLaborValue    int                 `json:"totalLaborValue"`
	Difference         int                 `json:"difference"`
}

// BatchAllocateResult is the outcome of one allocation run.
type BatchAllocateResult struct {
	AllocationResults []AllocateResult `json:"allocationResults"`
	TotalProjects     int              `json:"totalProjects"`
	AllocationTime    string           `json:"allocationTime"`
}

// AllocationLog is one persisted allocation run, as returned by the logs
// endpoint. AllocationResult is a serialized blob the client must attempt
// to parse, tolerating failure.
type AllocationLog struct {
	ID                 int64  `json:"id"`
	RequestTime        string `json:"requestTime"`
	OperatorID         int64  `json:"operatorId"`
	OperatorName       string `json:"operatorName"`
	ProjectID          int64  `json:"projectId"`
	ProjectName        string `json:"projectName"`
	RequiredLaborValue int    `json:"requiredLaborValue"`
	AllocationResult   string `json:"allocationResult"`
	MatchedEmployees   string `json:"matchedEmployees"`
	SkippedEmployees   string `json:"skippedEmployees"`
}

// LogQuery filters the paginated allocation log listing. Pages are
// zero-indexed.
type LogQuery struct {
	OperatorID *int64 `json:"operatorId,omitempty"`
	ProjectID  *int64 `json:"projectId,omitempty"`
	PageNum    int    `json:"pageNum"`
	PageSize   int    `json:"pageSize"`
}
