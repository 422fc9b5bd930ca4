package employeeerrors

import (
	"fmt"
	"net/http"

	"employee-service/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidSalary = apperror.New(
		apperror.CodeValidation,
		"Salary must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidPagination = apperror.New(
		apperror.CodeInvalidInput,
		"page must be >= 0 and size between 1 and 100",
		http.StatusBadRequest,
	)
)

// NotFound names the missing id while still matching ErrEmployeeNotFound
// through errors.Is.
func NotFound(id string) error {
	return apperror.Wrap(
		ErrEmployeeNotFound,
		apperror.CodeNotFound,
		fmt.Sprintf("Employee not found with id: %s", id),
		http.StatusNotFound,
	)
}

// NotificationRender and NotificationPublish report a create whose record is
// already committed; clients only see a generic failure.
func NotificationRender(err error) error {
	return apperror.Wrap(err, apperror.CodeInternalError, "Employee notification could not be rendered", http.StatusInternalServerError)
}

func NotificationPublish(err error) error {
	return apperror.Wrap(err, apperror.CodeInternalError, "Employee notification could not be published", http.StatusInternalServerError)
}
