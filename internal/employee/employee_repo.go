package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Page struct {
	Items      []Employee
	PageNumber int
	PageSize   int
	TotalCount int64
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindAll(ctx context.Context) ([]Employee, error)
	FindAllPaged(ctx context.Context, page, size int) (Page, error)
	Update(ctx context.Context, empl *Employee) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// conn runs statements on the bound tx when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	if err := r.conn(ctx).First(&empl, "emp_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.conn(ctx).Find(&empls).Error
	return empls, err
}

// FindAllPaged uses a zero based page number.
func (r *repository) FindAllPaged(ctx context.Context, page, size int) (Page, error) {
	var total int64
	if err := r.conn(ctx).Model(&Employee{}).Count(&total).Error; err != nil {
		return Page{}, err
	}

	var empls []Employee
	err := r.conn(ctx).
		Order("created_at ASC").
		Order("emp_id ASC").
		Offset(page * size).
		Limit(size).
		Find(&empls).Error
	if err != nil {
		return Page{}, err
	}

	return Page{
		Items:      empls,
		PageNumber: page,
		PageSize:   size,
		TotalCount: total,
	}, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Save(empl).Error
}
