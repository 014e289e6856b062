package models

import "time"

// Allocation reserves a quantity of one equipment item for one project.
// One active row exists per (project, equipment) pair.
type Allocation struct {
	ID                string     `json:"id" db:"id"`
	ProjectID         string     `json:"project_id" db:"project_id"`
	EquipmentID       string     `json:"equipment_id" db:"equipment_id"`
	QuantityRequested int        `json:"quantity_requested" db:"quantity_requested"`
	QuantityPrepared  int        `json:"quantity_prepared" db:"quantity_prepared"`
	QuantityReturned  int        `json:"quantity_returned" db:"quantity_returned"`
	Notes             *string    `json:"notes,omitempty" db:"notes"`
	RequestedAt       time.Time  `json:"requested_at" db:"requested_at"`
	CheckedOutAt      *time.Time `json:"checked_out_at,omitempty" db:"checked_out_at"`
	ReturnedAt        *time.Time `json:"returned_at,omitempty" db:"returned_at"`
}

// Retired reports whether the row no longer counts against availability.
func (a *Allocation) Retired() bool {
	return a.QuantityReturned >= a.QuantityRequested
}

// Outstanding is the quantity still committed and not yet returned.
func (a *Allocation) Outstanding() int {
	return a.QuantityRequested - a.QuantityReturned
}

// ActiveAllocation is an allocation joined with its owning project's window
// and status, as loaded for availability computations.
type ActiveAllocation struct {
	Allocation
	ProjectStart  time.Time `db:"project_start"`
	ProjectEnd    time.Time `db:"project_end"`
	ProjectStatus string    `db:"project_status"`
}
