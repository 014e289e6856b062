package allocations

import (
	"context"
	"time"

	"github.com/clodobox/EventGear/internal/repository"
	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/metadata"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// Ledger is the storage surface the engine mutates.
type Ledger interface {
	LockEquipment(tx *goqu.TxDatabase, equipmentID string) error
	ListActiveForEquipment(tx *goqu.TxDatabase, equipmentID string) ([]models.ActiveAllocation, error)
	ListForProject(tx *goqu.TxDatabase, projectID string) ([]models.Allocation, error)
	FindForProject(tx *goqu.TxDatabase, projectID, equipmentID string) (*models.Allocation, error)
	Insert(tx *goqu.TxDatabase, allocation *models.Allocation) error
	Update(tx *goqu.TxDatabase, allocation *models.Allocation) error
}

type EquipmentDirectory interface {
	Get(tx *goqu.TxDatabase, id string) (*models.Equipment, error)
}

type ProjectDirectory interface {
	Get(tx *goqu.TxDatabase, id string) (*models.Project, error)
	UpdateStatus(tx *goqu.TxDatabase, id string, status metadata.ProjectStatus) error
}

// Service orchestrates the allocation lifecycle: reserve, checkout,
// return, cancel. Availability is always derived inside the same
// transaction (and equipment lock) that writes the decision.
type Service struct {
	db        repository.Transactor
	ledger    Ledger
	equipment EquipmentDirectory
	projects  ProjectDirectory
	cache     *AvailabilityCache
}

func NewService(db repository.Transactor, ledger Ledger, equipment EquipmentDirectory, projects ProjectDirectory, cache *AvailabilityCache) *Service {
	return &Service{
		db:        db,
		ledger:    ledger,
		equipment: equipment,
		projects:  projects,
		cache:     cache,
	}
}

// Reserve books a quantity of one equipment item against the project's
// date window. The check-then-insert runs under the per-equipment lock so
// concurrent reservations cannot jointly overbook.
func (s *Service) Reserve(ctx context.Context, projectID, equipmentID string, quantity int, notes *string) (*models.Allocation, error) {
	if quantity <= 0 {
		return nil, &custom_error.InvalidQuantityError{Quantity: quantity, Reason: "quantity must be positive"}
	}

	var allocation *models.Allocation

	err := s.db.WithTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.ledger.LockEquipment(tx, equipmentID); err != nil {
			return err
		}

		project, err := s.projects.Get(tx, projectID)
		if err != nil {
			return err
		}
		if project.Status.IsTerminal() {
			return &custom_error.NotFoundError{Resource: "project", ID: projectID}
		}

		equipment, err := s.equipment.Get(tx, equipmentID)
		if err != nil {
			return err
		}

		active, err := s.ledger.ListActiveForEquipment(tx, equipmentID)
		if err != nil {
			return err
		}

		window := Window{Start: project.StartDate, End: project.EndDate}
		available := Available(equipment.QuantityTotal, window, active)
		if quantity > available {
			return &custom_error.InsufficientAvailabilityError{Requested: quantity, Available: available}
		}

		// One row per (project, equipment) pair for the row's whole life:
		// a repeated request tops up the existing reservation, including a
		// fully returned row that re-enters the active set.
		existing, err := s.ledger.FindForProject(tx, projectID, equipmentID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.QuantityRequested += quantity
			allocation = existing
			return s.ledger.Update(tx, allocation)
		}

		allocation = &models.Allocation{
			ID:                uuid.NewString(),
			ProjectID:         projectID,
			EquipmentID:       equipmentID,
			QuantityRequested: quantity,
			Notes:             notes,
			RequestedAt:       time.Now().UTC(),
		}
		return s.ledger.Insert(tx, allocation)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, equipmentID)
	return allocation, nil
}

// Checkout marks every active allocation of the project as prepared and
// moves the project to ongoing. Re-invoking is a no-op per allocation.
func (s *Service) Checkout(ctx context.Context, projectID string) ([]models.Allocation, error) {
	var checkedOut []models.Allocation

	err := s.db.WithTransaction(func(tx *goqu.TxDatabase) error {
		project, err := s.projects.Get(tx, projectID)
		if err != nil {
			return err
		}
		if project.Status != metadata.ProjectOngoing && !project.Status.CanTransition(metadata.ProjectOngoing) {
			return &custom_error.InvalidTransitionError{From: project.Status.String(), To: metadata.ProjectOngoing.String()}
		}

		allocations, err := s.ledger.ListForProject(tx, projectID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var hasActive bool
		for i := range allocations {
			allocation := &allocations[i]
			if allocation.Retired() {
				continue
			}
			hasActive = true

			if allocation.QuantityPrepared < allocation.QuantityRequested || allocation.CheckedOutAt == nil {
				allocation.QuantityPrepared = allocation.QuantityRequested
				if allocation.CheckedOutAt == nil {
					allocation.CheckedOutAt = &now
				}
				if err := s.ledger.Update(tx, allocation); err != nil {
					return err
				}
			}
			checkedOut = append(checkedOut, *allocation)
		}

		if !hasActive {
			return &custom_error.NoActiveAllocationsError{ProjectID: projectID}
		}

		if project.Status != metadata.ProjectOngoing {
			return s.projects.UpdateStatus(tx, projectID, metadata.ProjectOngoing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return checkedOut, nil
}

// Return records a physical return, partial or full. When every
// allocation of the project is fully returned the project completes.
func (s *Service) Return(ctx context.Context, projectID, equipmentID string, quantity int) (*models.Allocation, error) {
	if quantity <= 0 {
		return nil, &custom_error.InvalidQuantityError{Quantity: quantity, Reason: "quantity must be positive"}
	}

	var allocation *models.Allocation

	err := s.db.WithTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		allocation, err = s.ledger.FindForProject(tx, projectID, equipmentID)
		if err != nil {
			return err
		}
		if allocation == nil {
			return &custom_error.NotFoundError{Resource: "allocation", ID: projectID + "/" + equipmentID}
		}

		if allocation.QuantityReturned+quantity > allocation.QuantityPrepared {
			return &custom_error.OverReturnError{
				Requested: quantity,
				Prepared:  allocation.QuantityPrepared,
				Returned:  allocation.QuantityReturned,
			}
		}

		now := time.Now().UTC()
		allocation.QuantityReturned += quantity
		allocation.ReturnedAt = &now
		if err := s.ledger.Update(tx, allocation); err != nil {
			return err
		}

		allocations, err := s.ledger.ListForProject(tx, projectID)
		if err != nil {
			return err
		}
		for i := range allocations {
			if !allocations[i].Retired() {
				return nil
			}
		}
		return s.projects.UpdateStatus(tx, projectID, metadata.ProjectCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, equipmentID)
	return allocation, nil
}

// Cancel releases every reservation of the project: prepared-but-unreturned
// quantity is forced returned, and the canceled status retires the rest
// from all future availability computations.
func (s *Service) Cancel(ctx context.Context, projectID string) error {
	var touched []string

	err := s.db.WithTransaction(func(tx *goqu.TxDatabase) error {
		project, err := s.projects.Get(tx, projectID)
		if err != nil {
			return err
		}
		if !project.Status.CanTransition(metadata.ProjectCanceled) {
			return &custom_error.InvalidTransitionError{From: project.Status.String(), To: metadata.ProjectCanceled.String()}
		}

		allocations, err := s.ledger.ListForProject(tx, projectID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for i := range allocations {
			allocation := &allocations[i]
			touched = append(touched, allocation.EquipmentID)
			if allocation.Retired() || allocation.QuantityReturned == allocation.QuantityPrepared {
				continue
			}
			allocation.QuantityReturned = allocation.QuantityPrepared
			allocation.ReturnedAt = &now
			if err := s.ledger.Update(tx, allocation); err != nil {
				return err
			}
		}

		return s.projects.UpdateStatus(tx, projectID, metadata.ProjectCanceled)
	})
	if err != nil {
		return err
	}

	for _, equipmentID := range touched {
		s.invalidate(ctx, equipmentID)
	}
	return nil
}

// Availability answers the display query for an arbitrary window. It reads
// without the equipment lock and may serve a slightly stale cached value;
// reservations never rely on it.
func (s *Service) Availability(ctx context.Context, equipmentID string, window Window) (int, error) {
	if !window.Valid() {
		return 0, &custom_error.InvalidDateRangeError{
			Start: window.Start.Format("2006-01-02"),
			End:   window.End.Format("2006-01-02"),
		}
	}

	if s.cache != nil {
		if available, ok := s.cache.Get(ctx, equipmentID, window); ok {
			return available, nil
		}
	}

	equipment, err := s.equipment.Get(nil, equipmentID)
	if err != nil {
		return 0, err
	}

	active, err := s.ledger.ListActiveForEquipment(nil, equipmentID)
	if err != nil {
		return 0, err
	}

	available := Available(equipment.QuantityTotal, window, active)
	if s.cache != nil {
		s.cache.Set(ctx, equipmentID, window, available)
	}
	return available, nil
}

// ListForProject exposes the project's ledger rows to the HTTP layer.
func (s *Service) ListForProject(projectID string) ([]models.Allocation, error) {
	return s.ledger.ListForProject(nil, projectID)
}

func (s *Service) invalidate(ctx context.Context, equipmentID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, equipmentID)
	}
}
