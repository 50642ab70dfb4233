package model

// PatientCareRecord is the clinical documentation filed by an EMT after
// a call completes. Records are immutable once filed and back-link to
// exactly one call.
type PatientCareRecord struct {
	ID                     int64  `json:"id"`
	CallID                 int64  `json:"call_id"`
	PatientVitals          string `json:"patient_vitals"`
	TreatmentsAdministered string `json:"treatments_administered"`
	Medications            string `json:"medications"`
	TransferDestination    string `json:"transfer_destination"`
	Notes                  string `json:"notes"`
}

// FilePCRRequest represents the clinical fields of a new care record.
// Medications and Notes may be empty.
type FilePCRRequest struct {
	CallID                 int64  `json:"call_id" binding:"required"`
	PatientVitals          string `json:"patient_vitals" binding:"required"`
	TreatmentsAdministered string `json:"treatments_administered" binding:"required"`
	Medications            string `json:"medications"`
	TransferDestination    string `json:"transfer_destination" binding:"required"`
	Notes                  string `json:"notes"`
}
