package employee

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	employeeerrors "employee-service/internal/employee/errors"
	"employee-service/internal/shared/apperror"
	"employee-service/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// keeps page*size inside int for any accepted size
	maxPage         = math.MaxInt / maxPageSize
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("employee request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) bindRequest(c *gin.Context) (EmployeeRequest, bool) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http employee request validation failed", zap.Error(err))
		appErr := apperror.MapValidationError(err)
		response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, err.Error())
		return req, false
	}
	if !req.Salary.IsPositive() {
		h.writeServiceError(c, employeeerrors.ErrInvalidSalary)
		return req, false
	}
	return req, true
}

// pathID rejects ids that are not uuids before any cache or db lookup.
func (h *Handler) pathID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, employeeerrors.ErrInvalidEmployeeID)
		return "", false
	}
	return id.String(), true
}

func (h *Handler) Create(c *gin.Context) {
	h.logger.Debug("http create employee")

	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// GetAll serves the cached full list. status, department and designation
// query params filter the list in memory.
func (h *Handler) GetAll(c *gin.Context) {
	h.logger.Debug("http get all employees")

	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	department := strings.ToUpper(strings.TrimSpace(c.Query("department")))
	designation := strings.ToUpper(strings.TrimSpace(c.Query("designation")))

	if status != "" || department != "" || designation != "" {
		filtered := make([]EmployeeResponse, 0, len(resp))
		for _, e := range resp {
			if status != "" && string(e.Status) != status {
				continue
			}
			if department != "" && string(e.Department) != department {
				continue
			}
			if designation != "" && string(e.Designation) != designation {
				continue
			}
			filtered = append(filtered, e)
		}
		resp = filtered
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetPage(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 || page > maxPage {
		h.writeServiceError(c, employeeerrors.ErrInvalidPagination)
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 || size > maxPageSize {
		h.writeServiceError(c, employeeerrors.ErrInvalidPagination)
		return
	}
	h.logger.Debug("http get employees page", zap.Int("page", page), zap.Int("size", size))

	result, err := h.service.GetPage(c.Request.Context(), page, size)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(result.TotalCount, result.PageNumber, result.PageSize)
	response.Success(c, http.StatusOK, result.Items, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	h.logger.Debug("http get employee by id", zap.String("employee_id", id))

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	h.logger.Debug("http update employee", zap.String("employee_id", id))

	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
