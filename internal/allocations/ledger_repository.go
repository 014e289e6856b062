package allocations

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/clodobox/EventGear/internal/repository"
	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/metadata"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

// LedgerRepository is pure storage for allocation rows; every business
// rule lives in the service on top of it.
type LedgerRepository struct {
	repository  *repository.Repository
	lockTimeout string
}

func NewLedgerRepository(r *repository.Repository, lockTimeoutMillis int64) *LedgerRepository {
	return &LedgerRepository{
		repository:  r,
		lockTimeout: fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeoutMillis),
	}
}

func (r *LedgerRepository) builder(tx *goqu.TxDatabase) repository.Builder {
	if tx != nil {
		return tx
	}
	return r.repository.GoquDBWrapper
}

// LockEquipment serializes the read-decide-write sequence of a reservation
// per equipment item. The advisory lock is transaction scoped and released
// at commit/rollback; waiting longer than the configured lock_timeout
// aborts with SQLSTATE 55P03, surfaced as the retryable Busy error.
func (r *LedgerRepository) LockEquipment(tx *goqu.TxDatabase, equipmentID string) error {
	if _, err := tx.Exec(r.lockTimeout); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if _, err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext($1))", equipmentID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == "55P03" {
			return &custom_error.BusyError{Resource: "equipment " + equipmentID}
		}
		return fmt.Errorf("failed to lock equipment %s: %w", equipmentID, err)
	}

	return nil
}

// ListActiveForEquipment loads every allocation on the item that still
// counts against availability, joined with its project's window and status.
func (r *LedgerRepository) ListActiveForEquipment(tx *goqu.TxDatabase, equipmentID string) ([]models.ActiveAllocation, error) {
	var active []models.ActiveAllocation

	query := r.builder(tx).
		Select(
			goqu.I("a.id").As("id"),
			goqu.I("a.project_id").As("project_id"),
			goqu.I("a.equipment_id").As("equipment_id"),
			goqu.I("a.quantity_requested").As("quantity_requested"),
			goqu.I("a.quantity_prepared").As("quantity_prepared"),
			goqu.I("a.quantity_returned").As("quantity_returned"),
			goqu.I("a.requested_at").As("requested_at"),
			goqu.I("a.checked_out_at").As("checked_out_at"),
			goqu.I("a.returned_at").As("returned_at"),
			goqu.I("p.start_date").As("project_start"),
			goqu.I("p.end_date").As("project_end"),
			goqu.I("p.status").As("project_status"),
		).
		From(goqu.T("allocations").As("a")).
		Join(
			goqu.T("projects").As("p"),
			goqu.On(goqu.Ex{"p.id": goqu.I("a.project_id")}),
		).
		Where(
			goqu.Ex{"a.equipment_id": equipmentID},
			goqu.I("p.status").Neq(metadata.ProjectCanceled.String()),
			goqu.L("a.quantity_returned < a.quantity_requested"),
		)

	if err := query.Executor().ScanStructs(&active); err != nil {
		return nil, fmt.Errorf("failed to list active allocations for equipment %s: %w", equipmentID, err)
	}

	return active, nil
}

// ListForProject returns all allocation rows owned by the project.
func (r *LedgerRepository) ListForProject(tx *goqu.TxDatabase, projectID string) ([]models.Allocation, error) {
	var allocations []models.Allocation

	query := r.builder(tx).
		From("allocations").
		Where(goqu.Ex{"project_id": projectID}).
		Order(goqu.C("requested_at").Asc())

	if err := query.Executor().ScanStructs(&allocations); err != nil {
		return nil, fmt.Errorf("failed to list allocations for project %s: %w", projectID, err)
	}

	return allocations, nil
}

// FindForProject returns the allocation row for a (project, equipment)
// pair, or nil when none exists.
func (r *LedgerRepository) FindForProject(tx *goqu.TxDatabase, projectID, equipmentID string) (*models.Allocation, error) {
	var allocation models.Allocation

	query := r.builder(tx).
		From("allocations").
		Where(goqu.Ex{
			"project_id":   projectID,
			"equipment_id": equipmentID,
		})

	found, err := query.Executor().ScanStruct(&allocation)
	if err != nil {
		return nil, fmt.Errorf("failed to find allocation for project %s: %w", projectID, err)
	}
	if !found {
		return nil, nil
	}

	return &allocation, nil
}

func (r *LedgerRepository) Insert(tx *goqu.TxDatabase, allocation *models.Allocation) error {
	query := r.builder(tx).
		Insert("allocations").
		Rows(goqu.Record{
			"id":                 allocation.ID,
			"project_id":         allocation.ProjectID,
			"equipment_id":       allocation.EquipmentID,
			"quantity_requested": allocation.QuantityRequested,
			"quantity_prepared":  allocation.QuantityPrepared,
			"quantity_returned":  allocation.QuantityReturned,
			"notes":              allocation.Notes,
			"requested_at":       allocation.RequestedAt,
		})

	if _, err := query.Executor().Exec(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return custom_error.WrapDBError(err.Error(), string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert allocation: %w", err)
	}

	return nil
}

func (r *LedgerRepository) Update(tx *goqu.TxDatabase, allocation *models.Allocation) error {
	query := r.builder(tx).
		Update("allocations").
		Set(goqu.Record{
			"quantity_requested": allocation.QuantityRequested,
			"quantity_prepared":  allocation.QuantityPrepared,
			"quantity_returned":  allocation.QuantityReturned,
			"checked_out_at":     allocation.CheckedOutAt,
			"returned_at":        allocation.ReturnedAt,
		}).
		Where(goqu.Ex{"id": allocation.ID})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update allocation %s: %w", allocation.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for allocation %s: %w", allocation.ID, err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
