package models

type ReserveRequest struct {
	EquipmentID string  `json:"equipment_id" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required"`
	Notes       *string `json:"notes"`
}

type ReturnRequest struct {
	EquipmentID string `json:"equipment_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
}
