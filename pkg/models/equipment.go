package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Equipment struct {
	ID               string           `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	Description      *string          `json:"description,omitempty"`
	Category         *Category        `json:"category,omitempty"`
	Location         *StorageLocation `json:"location,omitempty"`
	QuantityTotal    int              `json:"quantity_total"`
	PurchaseDate     *time.Time       `json:"purchase_date,omitempty"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price,omitempty"`
	RentalPriceDaily *decimal.Decimal `json:"rental_price_daily,omitempty"`
	WeightKg         *decimal.Decimal `json:"weight_kg,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	Active           bool             `json:"active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`
}

// FlatEquipmentRecord mirrors the joined equipment row as scanned from SQL.
type FlatEquipmentRecord struct {
	ID               string           `db:"id"`
	Code             string           `db:"code"`
	Name             string           `db:"name"`
	Description      *string          `db:"description"`
	QuantityTotal    int              `db:"quantity_total"`
	PurchaseDate     *time.Time       `db:"purchase_date"`
	PurchasePrice    *decimal.Decimal `db:"purchase_price"`
	RentalPriceDaily *decimal.Decimal `db:"rental_price_daily"`
	WeightKg         *decimal.Decimal `db:"weight_kg"`
	Notes            *string          `db:"notes"`
	Active           bool             `db:"active"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        *time.Time       `db:"updated_at"`
	CategoryID       *string          `db:"category_id"`
	CategoryName     *string          `db:"category_name"`
	LocationID       *string          `db:"location_id"`
	LocationName     *string          `db:"location_name"`
}

func (fe *FlatEquipmentRecord) TransformToEquipment() Equipment {
	equipment := Equipment{
		ID:               fe.ID,
		Code:             fe.Code,
		Name:             fe.Name,
		Description:      fe.Description,
		QuantityTotal:    fe.QuantityTotal,
		PurchaseDate:     fe.PurchaseDate,
		PurchasePrice:    fe.PurchasePrice,
		RentalPriceDaily: fe.RentalPriceDaily,
		WeightKg:         fe.WeightKg,
		Notes:            fe.Notes,
		Active:           fe.Active,
		CreatedAt:        fe.CreatedAt,
		UpdatedAt:        fe.UpdatedAt,
	}

	if fe.CategoryID != nil {
		equipment.Category = &Category{ID: *fe.CategoryID}
		if fe.CategoryName != nil {
			equipment.Category.Name = *fe.CategoryName
		}
	}
	if fe.LocationID != nil {
		equipment.Location = &StorageLocation{ID: *fe.LocationID}
		if fe.LocationName != nil {
			equipment.Location.Name = *fe.LocationName
		}
	}

	return equipment
}

// EquipmentState is one entry of the append-only condition check log.
type EquipmentState struct {
	ID          string    `json:"id" db:"id"`
	EquipmentID string    `json:"equipment_id" db:"equipment_id"`
	State       string    `json:"state" db:"state"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CheckedBy   *string   `json:"checked_by,omitempty" db:"checked_by"`
	CheckedAt   time.Time `json:"checked_at" db:"checked_at"`
}
