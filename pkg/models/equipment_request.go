package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EquipmentRequest struct {
	Code             string           `json:"code" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Description      *string          `json:"description"`
	CategoryID       *string          `json:"category_id"`
	LocationID       *string          `json:"location_id"`
	QuantityTotal    int              `json:"quantity_total"`
	PurchaseDate     *time.Time       `json:"purchase_date"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price"`
	RentalPriceDaily *decimal.Decimal `json:"rental_price_daily"`
	WeightKg         *decimal.Decimal `json:"weight_kg"`
	Notes            *string          `json:"notes"`
}

// EquipmentPatch carries a partial update; nil fields are left untouched.
// QuantityTotal is deliberately absent, stock changes go through the
// dedicated adjust operation so committed allocations are re-checked.
type EquipmentPatch struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	CategoryID       *string          `json:"category_id"`
	LocationID       *string          `json:"location_id"`
	PurchaseDate     *time.Time       `json:"purchase_date"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price"`
	RentalPriceDaily *decimal.Decimal `json:"rental_price_daily"`
	WeightKg         *decimal.Decimal `json:"weight_kg"`
	Notes            *string          `json:"notes"`
}

// ApplyTo merges the set fields of the patch into the equipment record.
func (p *EquipmentPatch) ApplyTo(equipment *Equipment) {
	if p.Name != nil {
		equipment.Name = *p.Name
	}
	if p.Description != nil {
		equipment.Description = p.Description
	}
	if p.CategoryID != nil {
		equipment.Category = &Category{ID: *p.CategoryID}
	}
	if p.LocationID != nil {
		equipment.Location = &StorageLocation{ID: *p.LocationID}
	}
	if p.PurchaseDate != nil {
		equipment.PurchaseDate = p.PurchaseDate
	}
	if p.PurchasePrice != nil {
		equipment.PurchasePrice = p.PurchasePrice
	}
	if p.RentalPriceDaily != nil {
		equipment.RentalPriceDaily = p.RentalPriceDaily
	}
	if p.WeightKg != nil {
		equipment.WeightKg = p.WeightKg
	}
	if p.Notes != nil {
		equipment.Notes = p.Notes
	}
}

type AdjustTotalRequest struct {
	QuantityTotal int `json:"quantity_total"`
}

type EquipmentStateRequest struct {
	State     string  `json:"state" binding:"required"`
	Notes     *string `json:"notes"`
	CheckedBy *string `json:"checked_by"`
}

type EquipmentFilter struct {
	Search     string
	CategoryID string
	Offset     int
	Limit      int
}
