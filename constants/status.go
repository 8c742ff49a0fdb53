package constants

// MedicineStatus is the canonical status for rows in donated_meds.
type MedicineStatus string

// Stable values (store these exact strings in the DB).
const (
	StatusUploaded MedicineStatus = "uploaded" // donor submitted, awaiting NGO
	StatusApproved MedicineStatus = "approved" // accepted by an NGO
	StatusRejected MedicineStatus = "rejected" // blocked by an administrator
)
