package equipment

import (
	"errors"
	"fmt"
	"time"

	"github.com/clodobox/EventGear/internal/repository"
	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
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

func (r *Repository) Persist(req models.EquipmentRequest) (*models.Equipment, error) {
	equipment := models.Equipment{
		ID:               uuid.NewString(),
		Code:             req.Code,
		Name:             req.Name,
		Description:      req.Description,
		QuantityTotal:    req.QuantityTotal,
		PurchaseDate:     req.PurchaseDate,
		PurchasePrice:    req.PurchasePrice,
		RentalPriceDaily: req.RentalPriceDaily,
		WeightKg:         req.WeightKg,
		Notes:            req.Notes,
		Active:           true,
		CreatedAt:        time.Now().UTC(),
	}

	record := goqu.Record{
		"id":                 equipment.ID,
		"code":               equipment.Code,
		"name":               equipment.Name,
		"description":        equipment.Description,
		"quantity_total":     equipment.QuantityTotal,
		"purchase_date":      equipment.PurchaseDate,
		"purchase_price":     equipment.PurchasePrice,
		"rental_price_daily": equipment.RentalPriceDaily,
		"weight_kg":          equipment.WeightKg,
		"notes":              equipment.Notes,
		"active":             equipment.Active,
		"created_at":         equipment.CreatedAt,
	}
	if req.CategoryID != nil {
		record["category_id"] = *req.CategoryID
		equipment.Category = &models.Category{ID: *req.CategoryID}
	}
	if req.LocationID != nil {
		record["location_id"] = *req.LocationID
		equipment.Location = &models.StorageLocation{ID: *req.LocationID}
	}

	query := r.repository.GoquDBWrapper.Insert("equipment").Rows(record)
	if _, err := query.Executor().Exec(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, custom_error.WrapDBError(err.Error(), string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to insert equipment record: %w", err)
	}

	return &equipment, nil
}

func (r *Repository) Get(tx *goqu.TxDatabase, id string) (*models.Equipment, error) {
	var flat models.FlatEquipmentRecord

	query := r.builder(tx).
		Select(
			goqu.I("e.id").As("id"),
			goqu.I("e.code").As("code"),
			goqu.I("e.name").As("name"),
			goqu.I("e.description").As("description"),
			goqu.I("e.quantity_total").As("quantity_total"),
			goqu.I("e.purchase_date").As("purchase_date"),
			goqu.I("e.purchase_price").As("purchase_price"),
			goqu.I("e.rental_price_daily").As("rental_price_daily"),
			goqu.I("e.weight_kg").As("weight_kg"),
			goqu.I("e.notes").As("notes"),
			goqu.I("e.active").As("active"),
			goqu.I("e.created_at").As("created_at"),
			goqu.I("e.updated_at").As("updated_at"),
			goqu.I("c.id").As("category_id"),
			goqu.I("c.name").As("category_name"),
			goqu.I("l.id").As("location_id"),
			goqu.I("l.name").As("location_name"),
		).
		From(goqu.T("equipment").As("e")).
		LeftJoin(
			goqu.T("categories").As("c"),
			goqu.On(goqu.Ex{"c.id": goqu.I("e.category_id")}),
		).
		LeftJoin(
			goqu.T("storage_locations").As("l"),
			goqu.On(goqu.Ex{"l.id": goqu.I("e.location_id")}),
		).
		Where(goqu.Ex{"e.id": id, "e.active": true})

	found, err := query.Executor().ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment %s: %w", id, err)
	}
	if !found {
		return nil, &custom_error.NotFoundError{Resource: "equipment", ID: id}
	}

	equipment := flat.TransformToEquipment()
	return &equipment, nil
}

func (r *Repository) List(filter models.EquipmentFilter) ([]models.Equipment, error) {
	var flats []models.FlatEquipmentRecord

	query := r.repository.GoquDBWrapper.
		Select(
			goqu.I("e.id").As("id"),
			goqu.I("e.code").As("code"),
			goqu.I("e.name").As("name"),
			goqu.I("e.description").As("description"),
			goqu.I("e.quantity_total").As("quantity_total"),
			goqu.I("e.purchase_date").As("purchase_date"),
			goqu.I("e.purchase_price").As("purchase_price"),
			goqu.I("e.rental_price_daily").As("rental_price_daily"),
			goqu.I("e.weight_kg").As("weight_kg"),
			goqu.I("e.notes").As("notes"),
			goqu.I("e.active").As("active"),
			goqu.I("e.created_at").As("created_at"),
			goqu.I("e.updated_at").As("updated_at"),
			goqu.I("c.id").As("category_id"),
			goqu.I("c.name").As("category_name"),
			goqu.I("l.id").As("location_id"),
			goqu.I("l.name").As("location_name"),
		).
		From(goqu.T("equipment").As("e")).
		LeftJoin(
			goqu.T("categories").As("c"),
			goqu.On(goqu.Ex{"c.id": goqu.I("e.category_id")}),
		).
		LeftJoin(
			goqu.T("storage_locations").As("l"),
			goqu.On(goqu.Ex{"l.id": goqu.I("e.location_id")}),
		).
		Where(goqu.Ex{"e.active": true}).
		Order(goqu.I("e.code").Asc())

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			goqu.Or(
				goqu.I("e.name").ILike(pattern),
				goqu.I("e.code").ILike(pattern),
			),
		)
	}
	if filter.CategoryID != "" {
		query = query.Where(goqu.Ex{"e.category_id": filter.CategoryID})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint(filter.Offset))
	}

	if err := query.Executor().ScanStructs(&flats); err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	items := make([]models.Equipment, 0, len(flats))
	for i := range flats {
		items = append(items, flats[i].TransformToEquipment())
	}
	return items, nil
}

func (r *Repository) Update(equipment *models.Equipment) error {
	record := goqu.Record{
		"name":               equipment.Name,
		"description":        equipment.Description,
		"purchase_date":      equipment.PurchaseDate,
		"purchase_price":     equipment.PurchasePrice,
		"rental_price_daily": equipment.RentalPriceDaily,
		"weight_kg":          equipment.WeightKg,
		"notes":              equipment.Notes,
		"updated_at":         time.Now().UTC(),
	}
	if equipment.Category != nil {
		record["category_id"] = equipment.Category.ID
	}
	if equipment.Location != nil {
		record["location_id"] = equipment.Location.ID
	}

	query := r.repository.GoquDBWrapper.
		Update("equipment").
		Set(record).
		Where(goqu.Ex{"id": equipment.ID, "active": true})

	result, err := query.Executor().Exec()
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return custom_error.WrapDBError(err.Error(), string(pqErr.Code))
		}
		return fmt.Errorf("failed to update equipment %s: %w", equipment.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for equipment %s: %w", equipment.ID, err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "equipment", ID: equipment.ID}
	}

	return nil
}

func (r *Repository) SetTotal(tx *goqu.TxDatabase, id string, total int) error {
	query := r.builder(tx).
		Update("equipment").
		Set(goqu.Record{
			"quantity_total": total,
			"updated_at":     time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id, "active": true})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to adjust total for equipment %s: %w", id, err)
	}

	return nil
}

func (r *Repository) Deactivate(tx *goqu.TxDatabase, id string) error {
	query := r.builder(tx).
		Update("equipment").
		Set(goqu.Record{
			"active":     false,
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id, "active": true})

	result, err := query.Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to deactivate equipment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for equipment %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return &custom_error.NotFoundError{Resource: "equipment", ID: id}
	}

	return nil
}

func (r *Repository) InsertState(equipmentID string, req models.EquipmentStateRequest) (*models.EquipmentState, error) {
	state := models.EquipmentState{
		ID:          uuid.NewString(),
		EquipmentID: equipmentID,
		State:       req.State,
		Notes:       req.Notes,
		CheckedBy:   req.CheckedBy,
		CheckedAt:   time.Now().UTC(),
	}

	query := r.repository.GoquDBWrapper.
		Insert("equipment_states").
		Rows(goqu.Record{
			"id":           state.ID,
			"equipment_id": state.EquipmentID,
			"state":        state.State,
			"notes":        state.Notes,
			"checked_by":   state.CheckedBy,
			"checked_at":   state.CheckedAt,
		})

	if _, err := query.Executor().Exec(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, custom_error.WrapDBError(err.Error(), string(pqErr.Code))
		}
		return nil, fmt.Errorf("failed to insert equipment state: %w", err)
	}

	return &state, nil
}

func (r *Repository) ListStates(equipmentID string) ([]models.EquipmentState, error) {
	var states []models.EquipmentState

	query := r.repository.GoquDBWrapper.
		From("equipment_states").
		Where(goqu.Ex{"equipment_id": equipmentID}).
		Order(goqu.C("checked_at").Desc())

	if err := query.Executor().ScanStructs(&states); err != nil {
		return nil, fmt.Errorf("failed to list equipment states: %w", err)
	}

	return states, nil
}
