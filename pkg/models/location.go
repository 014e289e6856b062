package models

type StorageLocation struct {
	ID      string  `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Address *string `json:"address,omitempty" db:"address"`
	Notes   *string `json:"notes,omitempty" db:"notes"`
}
