package models

import (
	"time"

	"github.com/clodobox/EventGear/pkg/metadata"
)

type Project struct {
	ID           string                 `json:"id" db:"id"`
	Code         string                 `json:"code" db:"code"`
	Name         string                 `json:"name" db:"name"`
	ClientName   *string                `json:"client_name,omitempty" db:"client_name"`
	Location     *string                `json:"location,omitempty" db:"location"`
	StartDate    time.Time              `json:"start_date" db:"start_date"`
	EndDate      time.Time              `json:"end_date" db:"end_date"`
	SetupDate    *time.Time             `json:"setup_date,omitempty" db:"setup_date"`
	TeardownDate *time.Time             `json:"teardown_date,omitempty" db:"teardown_date"`
	Status       metadata.ProjectStatus `json:"status" db:"status"`
	Notes        *string                `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time             `json:"updated_at,omitempty" db:"updated_at"`
}

// Window is the inclusive date range a project occupies equipment for.
func (p *Project) Window() (time.Time, time.Time) {
	return p.StartDate, p.EndDate
}
