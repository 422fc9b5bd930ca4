package employee_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"employee-service/internal/employee"
	employeeerrors "employee-service/internal/employee/errors"
	"employee-service/internal/events"
	"employee-service/internal/notification"
	"employee-service/internal/shared/apperror"

	employeeMock "employee-service/internal/employee/mock"
	producerMock "employee-service/internal/messaging/kafka/producer/mock"
	notificationMock "employee-service/internal/notification/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

const notifyRecipient = "hr@example.com"

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	renderer  *notificationMock.MockRenderer
	publisher *producerMock.MockPublisher
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := employeeMock.NewMockRepository(ctrl)
	renderer := notificationMock.NewMockRenderer(ctrl)
	publisher := producerMock.NewMockPublisher(ctrl)

	notifier := employee.NewNotifier(renderer, publisher, employee.NotifierConfig{
		Recipient: notifyRecipient,
	})
	svc := employee.NewService(db, repo, employee.NewCache(), notifier)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		renderer:  renderer,
		publisher: publisher,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func indhuRequest() employee.EmployeeRequest {
	return employee.EmployeeRequest{
		FirstName:   "Indhu",
		LastName:    "Mathi",
		Designation: employee.DesignationManager,
		Department:  employee.DepartmentFinance,
		Salary:      decimal.RequireFromString("60000.00"),
		Status:      employee.StatusActive,
	}
}

func storedEmployee(id uuid.UUID, first string) employee.Employee {
	return employee.Employee{
		ID:          id,
		FirstName:   first,
		LastName:    "Doe",
		Designation: employee.DesignationArchitect,
		Department:  employee.DepartmentEngineering,
		Salary:      decimal.NewFromInt(5000),
		Status:      employee.StatusActive,
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success - persist, render, publish in order", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := indhuRequest()
		empID := uuid.New()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)

		var published events.NotificationEvent
		gomock.InOrder(
			deps.repo.EXPECT().
				Create(ctx, gomock.Any()).
				DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
					assert.Equal(t, "Indhu", e.FirstName)
					assert.Equal(t, "Mathi", e.LastName)
					assert.True(t, req.Salary.Equal(e.Salary))
					e.ID = empID
					return nil
				}),
			deps.renderer.EXPECT().
				Render(notification.EmployeeCreatedTemplate, gomock.Any()).
				DoAndReturn(func(name string, vars map[string]string) (string, error) {
					assert.Equal(t, "Indhu", vars["employeeName"])
					assert.Equal(t, "FINANCE", vars["department"])
					assert.Equal(t, "MANAGER", vars["designation"])
					assert.Equal(t, "60000.00", vars["salary"])
					assert.Equal(t, "ACTIVE", vars["status"])
					return "<p>Indhu</p>", nil
				}),
			deps.publisher.EXPECT().
				Publish(ctx, events.EmailNotificationTopic, gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, topic, key string, ev events.NotificationEvent) error {
					published = ev
					assert.Equal(t, ev.Metadata.EventID, key)
					return nil
				}).
				Times(1),
		)

		resp, err := deps.service.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, empID.String(), resp.ID)
		assert.Equal(t, "Indhu", resp.FirstName)
		assert.True(t, decimal.RequireFromString("60000").Equal(resp.Salary))

		assert.Equal(t, events.NotificationTypeEmail, published.Type)
		assert.Equal(t, notifyRecipient, published.Recipient.Email)
		assert.Equal(t, "Employee Created Successfully", published.Content.Subject)
		assert.Equal(t, "<p>Indhu</p>", published.Content.Message)
		assert.True(t, published.Content.HTML)
		_, err = uuid.Parse(published.Metadata.EventID)
		assert.NoError(t, err)

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("persist failure - no event built", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("connection reset"))
		deps.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Times(0)
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.Create(ctx, indhuRequest())

		assert.EqualError(t, err, "connection reset")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("salary check violation - invalid salary", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(&pgconn.PgError{
			Code:           "23514",
			ConstraintName: "chk_employees_salary_positive",
		})

		_, err := deps.service.Create(ctx, indhuRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidSalary)
	})

	t.Run("render failure - nothing published", func(t *testing.T) {
		deps := setupServiceTest(t)
		renderErr := &notification.RenderError{Template: notification.EmployeeCreatedTemplate, Err: errors.New("missing key")}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.renderer.EXPECT().Render(notification.EmployeeCreatedTemplate, gomock.Any()).Return("", renderErr)
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.Create(ctx, indhuRequest())

		require.Error(t, err)
		var target *notification.RenderError
		assert.ErrorAs(t, err, &target)
		assert.Equal(t, 500, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("publish failure - record stays committed, list invalidated", func(t *testing.T) {
		deps := setupServiceTest(t)
		existing := storedEmployee(uuid.New(), "Old")

		// warm the list cache
		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{existing}, nil)
		_, err := deps.service.GetAll(ctx)
		require.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return("<p>x</p>", nil)
		deps.publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("broker down"))

		_, err = deps.service.Create(ctx, indhuRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())

		// no rollback happened, the next read reloads the list
		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{existing, storedEmployee(uuid.New(), "Indhu")}, nil)
		list, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("create does not seed the by-id cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		empID := uuid.New()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
			e.ID = empID
			return nil
		})
		deps.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return("<p>x</p>", nil)
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := deps.service.Create(ctx, indhuRequest())
		require.NoError(t, err)

		stored := storedEmployee(empID, "Indhu")
		deps.repo.EXPECT().FindByID(ctx, empID.String()).Return(&stored, nil).Times(1)

		resp, err := deps.service.GetByID(ctx, empID.String())
		require.NoError(t, err)
		assert.Equal(t, empID.String(), resp.ID)
	})
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("second call served from cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		empls := []employee.Employee{storedEmployee(uuid.New(), "A"), storedEmployee(uuid.New(), "B")}

		deps.repo.EXPECT().FindAll(ctx).Return(empls, nil).Times(1)

		first, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		second, err := deps.service.GetAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, second, 2)
		assert.Equal(t, "A", second[0].FirstName)
	})

	t.Run("empty store", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{}, nil)

		list, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("persistence failure not cached", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().FindAll(ctx).Return(nil, errors.New("db down"))
		_, err := deps.service.GetAll(ctx)
		assert.EqualError(t, err, "db down")

		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{storedEmployee(uuid.New(), "A")}, nil)
		list, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("mutating a returned list does not touch the cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{storedEmployee(uuid.New(), "A")}, nil).Times(1)

		first, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		first[0].FirstName = "changed"

		second, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "A", second[0].FirstName)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("second call served from cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		stored := storedEmployee(id, "A")

		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&stored, nil).Times(1)

		for range 2 {
			resp, err := deps.service.GetByID(ctx, id.String())
			require.NoError(t, err)
			assert.Equal(t, id.String(), resp.ID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New().String()

		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound).Times(2)

		_, err := deps.service.GetByID(ctx, id)
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
		assert.Equal(t, "Employee not found with id: "+id, apperror.ToHTTP(err).Message)
		assert.Equal(t, 404, apperror.ToHTTP(err).Status)

		// absence is not cached
		_, err = deps.service.GetByID(ctx, id)
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("write-through, by-id read needs no persistence call", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		stored := storedEmployee(id, "Old")
		req := indhuRequest()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&stored, nil).Times(1)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, id, e.ID)
				assert.Equal(t, "Indhu", e.FirstName)
				assert.Equal(t, employee.DepartmentFinance, e.Department)
				return nil
			})

		resp, err := deps.service.Update(ctx, id.String(), req)
		require.NoError(t, err)
		assert.Equal(t, id.String(), resp.ID)
		assert.Equal(t, "Mathi", resp.LastName)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())

		got, err := deps.service.GetByID(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, resp, got)
	})

	t.Run("overwrites a stale by-id entry", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		stored := storedEmployee(id, "Old")

		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&stored, nil).Times(1)
		_, err := deps.service.GetByID(ctx, id.String())
		require.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		current := storedEmployee(id, "Old")
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&current, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		_, err = deps.service.Update(ctx, id.String(), indhuRequest())
		require.NoError(t, err)

		got, err := deps.service.GetByID(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, "Indhu", got.FirstName)
	})

	t.Run("list reloaded after update", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		stored := storedEmployee(id, "Old")

		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{stored}, nil)
		_, err := deps.service.GetAll(ctx)
		require.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		current := storedEmployee(id, "Old")
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&current, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		_, err = deps.service.Update(ctx, id.String(), indhuRequest())
		require.NoError(t, err)

		updated := storedEmployee(id, "Indhu")
		deps.repo.EXPECT().FindAll(ctx).Return([]employee.Employee{updated}, nil).Times(1)
		list, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Indhu", list[0].FirstName)
	})

	t.Run("not found - nothing persisted", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New().String()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.Update(ctx, id, indhuRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.sqlMock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		_, err := deps.service.Update(ctx, uuid.New().String(), indhuRequest())
		assert.EqualError(t, err, "pool exhausted")
	})
}

func TestEmployeeService_GetPage(t *testing.T) {
	ctx := context.Background()

	t.Run("always hits persistence", func(t *testing.T) {
		deps := setupServiceTest(t)
		page := employee.Page{
			Items:      []employee.Employee{storedEmployee(uuid.New(), "A")},
			PageNumber: 1,
			PageSize:   1,
			TotalCount: 3,
		}

		deps.repo.EXPECT().FindAllPaged(ctx, 1, 1).Return(page, nil).Times(2)

		for range 2 {
			resp, err := deps.service.GetPage(ctx, 1, 1)
			require.NoError(t, err)
			assert.Equal(t, 1, resp.PageNumber)
			assert.Equal(t, 1, resp.PageSize)
			assert.Equal(t, int64(3), resp.TotalCount)
			assert.Len(t, resp.Items, 1)
		}
	})

	t.Run("persistence failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAllPaged(ctx, 0, 10).Return(employee.Page{}, errors.New("db down"))

		_, err := deps.service.GetPage(ctx, 0, 10)
		assert.EqualError(t, err, "db down")
	})
}
