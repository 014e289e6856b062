package projects

import (
	"time"

	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/metadata"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Directory is the persistence surface of the project catalog.
type Directory interface {
	Persist(project *models.Project) error
	Get(tx *goqu.TxDatabase, id string) (*models.Project, error)
	List(status string, offset, limit int) ([]models.Project, error)
	Update(project *models.Project) error
	UpdateStatus(tx *goqu.TxDatabase, id string, status metadata.ProjectStatus) error
}

type Service struct {
	directory Directory
}

func NewService(directory Directory) *Service {
	return &Service{directory: directory}
}

func (s *Service) Create(req models.ProjectRequest) (*models.Project, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, &custom_error.InvalidDateRangeError{Start: req.StartDate, End: req.EndDate}
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, &custom_error.InvalidDateRangeError{Start: req.StartDate, End: req.EndDate}
	}
	if endDate.Before(startDate) {
		return nil, &custom_error.InvalidDateRangeError{Start: req.StartDate, End: req.EndDate}
	}

	project := &models.Project{
		ID:         uuid.NewString(),
		Code:       req.Code,
		Name:       req.Name,
		ClientName: req.ClientName,
		Location:   req.Location,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     metadata.ProjectPlanned,
		Notes:      req.Notes,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.directory.Persist(project); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *Service) Get(id string) (*models.Project, error) {
	return s.directory.Get(nil, id)
}

func (s *Service) List(status string, offset, limit int) ([]models.Project, error) {
	if status != "" {
		if _, err := metadata.NewProjectStatus(status); err != nil {
			return nil, &custom_error.InvalidTransitionError{From: "", To: status}
		}
	}
	return s.directory.List(status, offset, limit)
}

func (s *Service) Update(id string, patch models.ProjectPatch) (*models.Project, error) {
	project, err := s.directory.Get(nil, id)
	if err != nil {
		return nil, err
	}

	patch.ApplyTo(project)
	if err := s.directory.Update(project); err != nil {
		return nil, err
	}

	return project, nil
}

// Transition moves a project through its lifecycle. Cancellation is not
// handled here: it releases ledger rows and belongs to the allocation
// engine.
func (s *Service) Transition(id string, newStatus metadata.ProjectStatus) (*models.Project, error) {
	project, err := s.directory.Get(nil, id)
	if err != nil {
		return nil, err
	}

	if project.Status == newStatus {
		return project, nil
	}
	if !project.Status.CanTransition(newStatus) {
		return nil, &custom_error.InvalidTransitionError{From: project.Status.String(), To: newStatus.String()}
	}

	if err := s.directory.UpdateStatus(nil, id, newStatus); err != nil {
		return nil, err
	}

	project.Status = newStatus
	return project, nil
}
