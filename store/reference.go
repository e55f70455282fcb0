package store

import (
	"context"
	"fmt"
	"strings"

	"planttime/models"

	"gorm.io/gorm"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required: %w", field, ErrValidation)
	}
	return nil
}

// CreateDepartment returns the department with d.Name, creating it from d if absent.
func (s *Store) CreateDepartment(ctx context.Context, d *models.Department) (*models.Department, error) {
	if err := required("name", d.Name); err != nil {
		return nil, err
	}
	record := *d
	record.ID = 0
	record.SubDepartments = nil
	created, err := findOrCreate(s.conn(ctx), &record, map[string]interface{}{"name": d.Name})
	if err != nil {
		return nil, err
	}
	s.logCreate("department", record.ID, created)
	return &record, nil
}

func (s *Store) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	return get[models.Department](s.conn(ctx), id)
}

func (s *Store) ListDepartments(ctx context.Context, page Page) ([]models.Department, error) {
	return list[models.Department](s.conn(ctx), page)
}

// ListDepartmentsWithSubs lists departments with their sub-departments attached.
func (s *Store) ListDepartmentsWithSubs(ctx context.Context, page Page) ([]models.Department, error) {
	db := s.conn(ctx).Preload("SubDepartments", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
	return list[models.Department](db, page)
}

// CreateSubDepartment returns the sub-department with the same name in the same
// department, creating it if absent. The department must exist.
func (s *Store) CreateSubDepartment(ctx context.Context, sd *models.SubDepartment) (*models.SubDepartment, error) {
	if err := required("name", sd.Name); err != nil {
		return nil, err
	}
	dept, err := s.GetDepartment(ctx, sd.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, fmt.Errorf("department %d: %w", sd.DepartmentID, ErrNotFound)
	}

	record := *sd
	record.ID = 0
	record.Department = nil
	created, err := findOrCreate(s.conn(ctx), &record, map[string]interface{}{
		"name":          sd.Name,
		"department_id": sd.DepartmentID,
	})
	if err != nil {
		return nil, err
	}
	s.logCreate("sub_department", record.ID, created)
	return &record, nil
}

func (s *Store) GetSubDepartment(ctx context.Context, id uint) (*models.SubDepartment, error) {
	return get[models.SubDepartment](s.conn(ctx), id)
}

// ListSubDepartments lists all sub-departments, or those of one department when
// departmentID is non-zero.
func (s *Store) ListSubDepartments(ctx context.Context, departmentID uint) ([]models.SubDepartment, error) {
	db := s.conn(ctx)
	if departmentID != 0 {
		db = db.Where("department_id = ?", departmentID)
	}
	records := make([]models.SubDepartment, 0)
	if err := db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) CreateProductionLine(ctx context.Context, pl *models.ProductionLine) (*models.ProductionLine, error) {
	if err := required("name", pl.Name); err != nil {
		return nil, err
	}
	record := *pl
	record.ID = 0
	created, err := findOrCreate(s.conn(ctx), &record, map[string]interface{}{"name": pl.Name})
	if err != nil {
		return nil, err
	}
	s.logCreate("production_line", record.ID, created)
	return &record, nil
}

func (s *Store) GetProductionLine(ctx context.Context, id uint) (*models.ProductionLine, error) {
	return get[models.ProductionLine](s.conn(ctx), id)
}

func (s *Store) ListProductionLines(ctx context.Context) ([]models.ProductionLine, error) {
	records := make([]models.ProductionLine, 0)
	if err := s.conn(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CreateWorker is keyed on EmployeeID; an existing worker is returned unchanged
// even when the name differs.
func (s *Store) CreateWorker(ctx context.Context, w *models.Worker) (*models.Worker, error) {
	if err := required("name", w.Name); err != nil {
		return nil, err
	}
	if err := required("employee_id", w.EmployeeID); err != nil {
		return nil, err
	}
	record := *w
	record.ID = 0
	created, err := findOrCreate(s.conn(ctx), &record, map[string]interface{}{"employee_id": w.EmployeeID})
	if err != nil {
		return nil, err
	}
	s.logCreate("worker", record.ID, created)
	return &record, nil
}

func (s *Store) GetWorker(ctx context.Context, id uint) (*models.Worker, error) {
	return get[models.Worker](s.conn(ctx), id)
}

func (s *Store) ListWorkers(ctx context.Context, page Page) ([]models.Worker, error) {
	return list[models.Worker](s.conn(ctx), page)
}

// CreateProject always inserts; projects have no uniqueness key.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	if err := required("name", p.Name); err != nil {
		return nil, err
	}
	record := *p
	record.ID = 0
	if err := s.conn(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	s.logCreate("project", record.ID, true)
	return &record, nil
}

func (s *Store) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return get[models.Project](s.conn(ctx), id)
}

func (s *Store) ListProjects(ctx context.Context, page Page) ([]models.Project, error) {
	return list[models.Project](s.conn(ctx), page)
}
