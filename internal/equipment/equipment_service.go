package equipment

import (
	"context"

	"github.com/clodobox/EventGear/internal/allocations"
	"github.com/clodobox/EventGear/internal/repository"
	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// Store is the persistence surface of the inventory.
type Store interface {
	Persist(req models.EquipmentRequest) (*models.Equipment, error)
	Get(tx *goqu.TxDatabase, id string) (*models.Equipment, error)
	List(filter models.EquipmentFilter) ([]models.Equipment, error)
	Update(equipment *models.Equipment) error
	SetTotal(tx *goqu.TxDatabase, id string, total int) error
	Deactivate(tx *goqu.TxDatabase, id string) error
	InsertState(equipmentID string, req models.EquipmentStateRequest) (*models.EquipmentState, error)
	ListStates(equipmentID string) ([]models.EquipmentState, error)
}

// AllocationLedger is the slice of the ledger the inventory consults when
// shrinking or retiring stock.
type AllocationLedger interface {
	LockEquipment(tx *goqu.TxDatabase, equipmentID string) error
	ListActiveForEquipment(tx *goqu.TxDatabase, equipmentID string) ([]models.ActiveAllocation, error)
}

type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, equipmentID string)
}

type Service struct {
	db     repository.Transactor
	store  Store
	ledger AllocationLedger
	cache  AvailabilityInvalidator
}

func NewService(db repository.Transactor, store Store, ledger AllocationLedger, cache AvailabilityInvalidator) *Service {
	return &Service{
		db:     db,
		store:  store,
		ledger: ledger,
		cache:  cache,
	}
}

func (s *Service) Create(req models.EquipmentRequest) (*models.Equipment, error) {
	if req.QuantityTotal < 0 {
		return nil, &custom_error.InvalidQuantityError{Quantity: req.QuantityTotal, Reason: "total stock cannot be negative"}
	}

	return s.store.Persist(req)
}

func (s *Service) Get(id string) (*models.Equipment, error) {
	return s.store.Get(nil, id)
}

func (s *Service) List(filter models.EquipmentFilter) ([]models.Equipment, error) {
	return s.store.List(filter)
}

func (s *Service) Update(id string, patch models.EquipmentPatch) (*models.Equipment, error) {
	equipment, err := s.store.Get(nil, id)
	if err != nil {
		return nil, err
	}

	patch.ApplyTo(equipment)
	if err := s.store.Update(equipment); err != nil {
		return nil, err
	}

	return equipment, nil
}

// AdjustTotal changes the physical stock count. Shrinking below the
// quantity still committed to active allocations is rejected, so the
// outstanding sum is recomputed under the same equipment lock reservations
// use.
func (s *Service) AdjustTotal(ctx context.Context, id string, newTotal int) (*models.Equipment, error) {
	if newTotal < 0 {
		return nil, &custom_error.InvalidQuantityError{Quantity: newTotal, Reason: "total stock cannot be negative"}
	}

	var equipment *models.Equipment

	err := s.db.WithTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.ledger.LockEquipment(tx, id); err != nil {
			return err
		}

		var err error
		equipment, err = s.store.Get(tx, id)
		if err != nil {
			return err
		}

		active, err := s.ledger.ListActiveForEquipment(tx, id)
		if err != nil {
			return err
		}

		if outstanding := allocations.Outstanding(active); newTotal < outstanding {
			return &custom_error.InvalidQuantityError{
				Quantity: newTotal,
				Reason:   "total cannot drop below committed allocations",
			}
		}

		equipment.QuantityTotal = newTotal
		return s.store.SetTotal(tx, id, newTotal)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return equipment, nil
}

// Deactivate soft-deletes an item. Items with allocations that are not
// yet fully returned (and not released by cancellation) stay active.
func (s *Service) Deactivate(id string) error {
	return s.db.WithTransaction(func(tx *goqu.TxDatabase) error {
		active, err := s.ledger.ListActiveForEquipment(tx, id)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return &custom_error.ActiveAllocationsExistError{EquipmentID: id}
		}

		return s.store.Deactivate(tx, id)
	})
}

func (s *Service) RecordState(equipmentID string, req models.EquipmentStateRequest) (*models.EquipmentState, error) {
	if _, err := s.store.Get(nil, equipmentID); err != nil {
		return nil, err
	}

	return s.store.InsertState(equipmentID, req)
}

func (s *Service) ListStates(equipmentID string) ([]models.EquipmentState, error) {
	if _, err := s.store.Get(nil, equipmentID); err != nil {
		return nil, err
	}

	return s.store.ListStates(equipmentID)
}
