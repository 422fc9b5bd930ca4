package employee

import (
	"errors"
	"strings"

	employeeerrors "employee-service/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgCheckViolation      = "23514"
	salaryCheckConstraint = "chk_employees_salary_positive"
)

// mapRepositoryError translates the few errors callers can act on and
// returns everything else unchanged.
func mapRepositoryError(err error, id string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.NotFound(id)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgCheckViolation && pgErr.ConstraintName == salaryCheckConstraint {
			return employeeerrors.ErrInvalidSalary
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), salaryCheckConstraint) {
		return employeeerrors.ErrInvalidSalary
	}

	return err
}
