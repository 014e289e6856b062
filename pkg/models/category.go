package models

type Category struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	ParentID    *string `json:"parent_id,omitempty" db:"parent_id"`
}
