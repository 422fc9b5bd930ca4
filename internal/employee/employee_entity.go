package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Designation string

const (
	DesignationArchitect       Designation = "ARCHITECT"
	DesignationDevOpsEngineer  Designation = "DEVOPS_ENGINEER"
	DesignationDirector        Designation = "DIRECTOR"
	DesignationJuniorDeveloper Designation = "JUNIOR_DEVELOPER"
	DesignationManager         Designation = "MANAGER"
	DesignationQAEngineer      Designation = "QA_ENGINEER"
)

type Department string

const (
	DepartmentEngineering      Department = "ENGINEERING"
	DepartmentFinance          Department = "FINANCE"
	DepartmentHumanResources   Department = "HUMAN_RESOURCES"
	DepartmentMarketing        Department = "MARKETING"
	DepartmentOperations       Department = "OPERATIONS"
	DepartmentQualityAssurance Department = "QUALITY_ASSURANCE"
	DepartmentSales            Department = "SALES"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

type Employee struct {
	ID          uuid.UUID       `gorm:"column:emp_id;type:uuid;primaryKey"`
	FirstName   string          `gorm:"column:firstname;not null"`
	LastName    string          `gorm:"column:lastname;not null"`
	Designation Designation     `gorm:"type:varchar(32);not null"`
	Department  Department      `gorm:"type:varchar(32);not null"`
	Salary      decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_employees_salary_positive,salary > 0"`
	Status      Status          `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Employee) TableName() string {
	return "employees"
}

// BeforeCreate assigns the identifier; it never changes afterwards.
func (e *Employee) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// apply copies every request field onto the record (full replace).
func (e *Employee) apply(req EmployeeRequest) {
	e.FirstName = req.FirstName
	e.LastName = req.LastName
	e.Designation = req.Designation
	e.Department = req.Department
	e.Salary = req.Salary
	e.Status = req.Status
}
