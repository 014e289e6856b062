package metadata

import "fmt"

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectPlanned   ProjectStatus = "planned"
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCanceled  ProjectStatus = "canceled"
)

func NewProjectStatus(value string) (ProjectStatus, error) {
	status := ProjectStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid project status: %s", value)
	}
	return status, nil
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectDraft, ProjectPlanned, ProjectOngoing, ProjectCompleted, ProjectCanceled:
		return true
	default:
		return false
	}
}

// Terminal statuses accept no further transitions and release or freeze
// the project's allocations.
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectCompleted || s == ProjectCanceled
}

// CanTransition validates a status change against the project lifecycle:
// {draft, planned} -> ongoing -> {completed, canceled}, with cancellation
// also allowed before checkout.
func (s ProjectStatus) CanTransition(to ProjectStatus) bool {
	switch s {
	case ProjectDraft:
		return to == ProjectPlanned || to == ProjectOngoing || to == ProjectCanceled
	case ProjectPlanned:
		return to == ProjectOngoing || to == ProjectCanceled
	case ProjectOngoing:
		return to == ProjectCompleted || to == ProjectCanceled
	default:
		return false
	}
}

func (s ProjectStatus) String() string {
	return string(s)
}
