package employee

import "github.com/shopspring/decimal"

// EmployeeRequest is used for both create and update; update replaces every field.
type EmployeeRequest struct {
	FirstName   string          `json:"firstname" binding:"required"`
	LastName    string          `json:"lastname" binding:"required"`
	Designation Designation     `json:"designation" binding:"required,oneof=ARCHITECT DEVOPS_ENGINEER DIRECTOR JUNIOR_DEVELOPER MANAGER QA_ENGINEER"`
	Department  Department      `json:"department" binding:"required,oneof=ENGINEERING FINANCE HUMAN_RESOURCES MARKETING OPERATIONS QUALITY_ASSURANCE SALES"`
	Salary      decimal.Decimal `json:"salary"`
	Status      Status          `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

type EmployeeResponse struct {
	ID          string          `json:"empId"`
	FirstName   string          `json:"firstname"`
	LastName    string          `json:"lastname"`
	Designation Designation     `json:"designation"`
	Department  Department      `json:"department"`
	Salary      decimal.Decimal `json:"salary"`
	Status      Status          `json:"status"`
}

type PagedEmployeeResponse struct {
	Items      []EmployeeResponse `json:"items"`
	PageNumber int                `json:"page_number"`
	PageSize   int                `json:"page_size"`
	TotalCount int64              `json:"total_count"`
}
