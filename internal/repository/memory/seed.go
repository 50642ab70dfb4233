package memory

import (
	"time"

	"github.com/emsops/dispatch-api/internal/model"
)

func ptr(v int64) *int64 { return &v }

// seed loads the fixed reference dataset: four users spanning all three
// roles, four calls spanning the status lifecycle and one care record
// already linked to its call.
func (s *Store) seed() {
	s.users = []*model.User{
		{ID: 1, Username: "dispatcher1", Password: "password", Role: model.RoleDispatcher},
		{ID: 2, Username: "emt1", Password: "password", Role: model.RoleEMT},
		{ID: 3, Username: "supervisor1", Password: "password", Role: model.RoleSupervisor},
		{ID: 4, Username: "emt2", Password: "password", Role: model.RoleEMT},
	}

	s.calls = []*model.EmergencyCall{
		{
			ID:          1,
			Timestamp:   time.Date(2024, 7, 29, 10, 0, 0, 0, time.UTC),
			CallerName:  "John Doe",
			Phone:       "555-0101",
			Location:    "123 Main St, Cityville",
			Description: "Chest pains, difficulty breathing.",
			Priority:    1,
			Status:      model.CallStatusDispatched,
			AssignedTo:  ptr(2),
		},
		{
			ID:          2,
			Timestamp:   time.Date(2024, 7, 29, 10, 5, 0, 0, time.UTC),
			CallerName:  "Jane Smith",
			Phone:       "555-0102",
			Location:    "456 Oak Ave, Townsville",
			Landmark:    "Near the public library",
			Description: "Fall from a ladder, possible broken leg.",
			Priority:    2,
			Status:      model.CallStatusOnScene,
			AssignedTo:  ptr(4),
		},
		{
			ID:          3,
			Timestamp:   time.Date(2024, 7, 29, 10, 15, 0, 0, time.UTC),
			CallerName:  "Peter Jones",
			Phone:       "555-0103",
			Location:    "789 Pine Ln, Villagetown",
			Description: "Minor car accident, driver complaining of neck pain.",
			Priority:    3,
			Status:      model.CallStatusPending,
		},
		{
			ID:          4,
			Timestamp:   time.Date(2024, 7, 28, 22, 30, 0, 0, time.UTC),
			CallerName:  "Mary Williams",
			Phone:       "555-0104",
			Location:    "101 River Rd, Hamlet",
			Description: "Patient feels dizzy and weak.",
			Priority:    3,
			Status:      model.CallStatusCompleted,
			AssignedTo:  ptr(2),
			PCRID:       ptr(1),
		},
	}

	s.pcrs = []*model.PatientCareRecord{
		{
			ID:                     1,
			CallID:                 4,
			PatientVitals:          "BP: 130/85, HR: 90, SpO2: 97%",
			TreatmentsAdministered: "IV established, normal saline.",
			Medications:            "None",
			TransferDestination:    "City General Hospital",
			Notes:                  "Patient was stable on transport.",
		},
	}
}
