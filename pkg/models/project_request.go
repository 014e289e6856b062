package models

import "time"

// ProjectRequest carries calendar dates as plain YYYY-MM-DD strings, the
// service parses and validates the range.
type ProjectRequest struct {
	Code       string  `json:"code" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	ClientName *string `json:"client_name"`
	Location   *string `json:"location"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	Notes      *string `json:"notes"`
}

type ProjectPatch struct {
	Name         *string    `json:"name"`
	ClientName   *string    `json:"client_name"`
	Location     *string    `json:"location"`
	SetupDate    *time.Time `json:"setup_date"`
	TeardownDate *time.Time `json:"teardown_date"`
	Notes        *string    `json:"notes"`
}

// ApplyTo merges the set fields of the patch into the project record.
// The reservation window is fixed at creation and status changes go
// through the transition operation, so neither can be patched.
func (p *ProjectPatch) ApplyTo(project *Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.ClientName != nil {
		project.ClientName = p.ClientName
	}
	if p.Location != nil {
		project.Location = p.Location
	}
	if p.SetupDate != nil {
		project.SetupDate = p.SetupDate
	}
	if p.TeardownDate != nil {
		project.TeardownDate = p.TeardownDate
	}
	if p.Notes != nil {
		project.Notes = p.Notes
	}
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}
