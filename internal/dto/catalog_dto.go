package dto

import "time"

type CreatePaperTypeRequest struct {
	Name     string  `json:"name"      validate:"required,min=2,max=120"`
	GSM      float64 `json:"gsm"       validate:"required,gt=0"`
	LengthCm float64 `json:"length_cm" validate:"required,gt=0"`
}

type PaperTypeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GSM       float64   `json:"gsm"`
	LengthCm  float64   `json:"length_cm"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateItemTypeRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type ItemTypeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateProgramRequest struct {
	Name       string  `json:"name"         validate:"required,min=2,max=120"`
	ItemTypeID string  `json:"item_type_id" validate:"required,uuid"`
	CutoffCm   float64 `json:"cutoff_cm"    validate:"required,gt=0"`
}

type ProgramResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ItemTypeID   string    `json:"item_type_id"`
	ItemTypeName string    `json:"item_type_name,omitempty"`
	CutoffCm     float64   `json:"cutoff_cm"`
	CreatedAt    time.Time `json:"created_at"`
}
