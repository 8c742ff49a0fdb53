package entity

import (
	"time"
)

// Record is the pipeline's sole output object: the five extractable fields
// plus the original OCR text. Every field is always present (possibly empty);
// absence is never represented as a missing key.
type Record struct {
	MedicineName      string `json:"medicineName"`
	BatchNumber       string `json:"batchNumber"`
	ManufacturingDate string `json:"manufacturingDate"`
	ExpiryDate        string `json:"expiryDate"`
	Ingredients       string `json:"ingredients"`

	RawText string `json:"rawText"`

	// Quantity is the tablet/capsule count when one is printed on the pack.
	// 0 means not detected.
	Quantity int `json:"quantity,omitempty"`

	// TimeUntilExpiry is derived from ExpiryDate: "N month(s) left" or
	// "EXPIRED". Empty when the expiry date could not be parsed.
	TimeUntilExpiry string `json:"timeUntilExpiry,omitempty"`
}

// DonatedMedicine represents a donated_meds row for data transfer between
// layers.
type DonatedMedicine struct {
	ID           int64      `json:"id"`
	MedicineName *string    `json:"medicine_name,omitempty"`
	Quantity     *int       `json:"quantity,omitempty"`
	ExpiryDate   *string    `json:"expiry_date,omitempty"`
	Ingredients  *string    `json:"ingredients,omitempty"`
	RawText      *string    `json:"raw_text,omitempty"`
	Status       *string    `json:"status,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	DateAdded    *time.Time `json:"date_added,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
