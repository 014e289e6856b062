package projects

import (
	"errors"
	"fmt"
	"time"

	"github.com/clodobox/EventGear/internal/repository"
	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/metadata"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type Repository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *Repository {
	return &Repository{repository: r}
}

func (r *Repository) builder(tx *goqu.TxDatabase) repository.Builder {
	if tx != nil {
		return tx
	}
	return r.repository.GoquDBWrapper
}

func (r *Repository) Persist(project *models.Project) error {
	query := r.repository.GoquDBWrapper.
		Insert("projects").
		Rows(goqu.Record{
			"id":          project.ID,
			"code":        project.Code,
			"name":        project.Name,
			"client_name": project.ClientName,
			"location":    project.Location,
			"start_date":  project.StartDate,
			"end_date":    project.EndDate,
			"status":      project.Status.String(),
			"notes":       project.Notes,
			"created_at":  project.CreatedAt,
		})

	if _, err := query.Executor().Exec(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return custom_error.WrapDBError(err.Error(), string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert project record: %w", err)
	}

	return nil
}

func (r *Repository) Get(tx *goqu.TxDatabase, id string) (*models.Project, error) {
	var project models.Project

	query := r.builder(tx).
		From("projects").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&project)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "project", ID: id}
	}

	return &project, nil
}

func (r *Repository) List(status string, offset, limit int) ([]models.Project, error) {
	var projects []models.Project

	query := r.repository.GoquDBWrapper.
		From("projects").
		Order(goqu.C("start_date").Asc())

	if status != "" {
		query = query.Where(goqu.Ex{"status": status})
	}
	if limit > 0 {
		query = query.Limit(uint(limit))
	}
	if offset > 0 {
		query = query.Offset(uint(offset))
	}

	if err := query.Executor().ScanStructs(&projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (r *Repository) Update(project *models.Project) error {
	query := r.repository.GoquDBWrapper.
		Update("projects").
		Set(goqu.Record{
			"name":          project.Name,
			"client_name":   project.ClientName,
			"location":      project.Location,
			"setup_date":    project.SetupDate,
			"teardown_date": project.TeardownDate,
			"notes":         project.Notes,
			"updated_at":    time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": project.ID})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", project.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for project %s: %w", project.ID, err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "project", ID: project.ID}
	}

	return nil
}

func (r *Repository) UpdateStatus(tx *goqu.TxDatabase, id string, status metadata.ProjectStatus) error {
	query := r.builder(tx).
		Update("projects").
		Set(goqu.Record{
			"status":     status.String(),
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update status of project %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for project %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "project", ID: id}
	}

	return nil
}
