package employee

import (
	"context"
	"database/sql"

	"employee-service/internal/shared/contextutil"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, req EmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req EmployeeRequest) (EmployeeResponse, error)
	GetPage(ctx context.Context, page, size int) (PagedEmployeeResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	cache    Cache
	notifier Notifier
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	cache Cache,
	notifier Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		logger:   l,
	}
}

// inTx scopes a transaction around fn. The tx is released on every path:
// committed when fn succeeds, rolled back otherwise.
func (s *service) inTx(ctx context.Context, fn func(qtx Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(s.repo.WithTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

// Create persists, renders, then dispatches, in that order. Render and
// publish run after commit and outside the tx: when either fails the
// employee stays stored and the caller still gets the error.
func (s *service) Create(ctx context.Context, req EmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create employee requested",
		zap.String("department", string(req.Department)),
		zap.String("designation", string(req.Designation)),
	)

	empl := &Employee{}
	empl.apply(req)

	if err := s.inTx(ctx, func(qtx Repository) error {
		return qtx.Create(ctx, empl)
	}); err != nil {
		log.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err, empl.ID.String())
	}

	employeeID := empl.ID.String()
	s.cache.InvalidateAll()

	event, err := s.notifier.BuildCreatedEvent(ctx, *empl)
	if err != nil {
		log.Error("create employee notification build failed, record already persisted",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := s.notifier.Dispatch(ctx, event); err != nil {
		log.Error("create employee notification dispatch failed, record already persisted",
			zap.String("employee_id", employeeID),
			zap.String("event_id", event.Metadata.EventID),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	log.Info("create employee success",
		zap.String("employee_id", employeeID),
		zap.String("event_id", event.Metadata.EventID),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	resp, err := s.cache.GetAll(ctx, func(ctx context.Context) ([]EmployeeResponse, error) {
		log.Debug("employee list cache miss, loading from database")
		empls, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(empls), nil
	})
	if err != nil {
		log.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err, "")
	}

	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	resp, err := s.cache.GetByID(ctx, id, func(ctx context.Context, id string) (EmployeeResponse, error) {
		log.Debug("employee cache miss, loading from database", zap.String("employee_id", id))
		empl, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return EmployeeResponse{}, mapRepositoryError(err, id)
		}
		return mapToResponse(*empl), nil
	})
	if err != nil {
		log.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, err
	}

	return resp, nil
}

// Update reads the current row straight from the database, never from
// cache. Caches are touched only after the commit returned.
func (s *service) Update(ctx context.Context, id string, req EmployeeRequest) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update employee requested", zap.String("employee_id", id))

	var updated Employee
	if err := s.inTx(ctx, func(qtx Repository) error {
		empl, err := qtx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		empl.apply(req)
		if err := qtx.Update(ctx, empl); err != nil {
			return err
		}

		updated = *empl
		return nil
	}); err != nil {
		log.Error("update employee failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err, id)
	}

	resp := mapToResponse(updated)
	s.cache.InvalidateAll()
	s.cache.PutByID(id, resp)

	log.Info("update employee success", zap.String("employee_id", id))

	return resp, nil
}

// GetPage is never cached, page/size would make the key space unbounded.
func (s *service) GetPage(ctx context.Context, page, size int) (PagedEmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("get employees page requested", zap.Int("page", page), zap.Int("size", size))

	result, err := s.repo.FindAllPaged(ctx, page, size)
	if err != nil {
		log.Error("get employees page failed", zap.Error(err))
		return PagedEmployeeResponse{}, mapRepositoryError(err, "")
	}

	return PagedEmployeeResponse{
		Items:      mapToListResponse(result.Items),
		PageNumber: result.PageNumber,
		PageSize:   result.PageSize,
		TotalCount: result.TotalCount,
	}, nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          empl.ID.String(),
		FirstName:   empl.FirstName,
		LastName:    empl.LastName,
		Designation: empl.Designation,
		Department:  empl.Department,
		Salary:      empl.Salary,
		Status:      empl.Status,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
