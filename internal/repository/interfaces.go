package repository

import (
	"context"

	"github.com/emsops/dispatch-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository owns the user registry. Accounts are append-only;
	// there is no update or delete surface.
	UserRepository interface {
		Create(ctx context.Context, user *model.User) (*model.User, error)
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		GetByCredentials(ctx context.Context, username, password string) (*model.User, error)
		List(ctx context.Context) ([]*model.User, error)
		CountByRole(ctx context.Context, role model.UserRole) (int, error)
	}

	// CallRepository owns the emergency call registry.
	CallRepository interface {
		Create(ctx context.Context, req *model.LogCallRequest) (*model.EmergencyCall, error)
		Get(ctx context.Context, id int64) (*model.EmergencyCall, error)
		UpdateStatus(ctx context.Context, id int64, status model.CallStatus) error
		LinkPCR(ctx context.Context, callID, pcrID int64) error
		List(ctx context.Context, filter *model.CallFilter) ([]*model.EmergencyCall, error)
	}

	// PCRRepository owns the patient care record registry. FileForCall
	// appends the record and links the target call as one transaction:
	// no reader may observe one effect without the other.
	PCRRepository interface {
		FileForCall(ctx context.Context, callID int64, req *model.FilePCRRequest) (*model.PatientCareRecord, error)
		Get(ctx context.Context, id int64) (*model.PatientCareRecord, error)
		GetByCall(ctx context.Context, callID int64) (*model.PatientCareRecord, error)
		List(ctx context.Context) ([]*model.PatientCareRecord, error)
	}
)
