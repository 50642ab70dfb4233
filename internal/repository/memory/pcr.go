package memory

import (
	"context"

	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
)

type PCRRepository struct {
	store *Store
}

func NewPCRRepository(store *Store) *PCRRepository {
	return &PCRRepository{store: store}
}

// FileForCall appends a new care record and links the target call to it
// under a single critical section, so no reader observes a record
// without its call link or the reverse. The target call must exist and
// must not already carry a record.
func (r *PCRRepository) FileForCall(ctx context.Context, callID int64, req *model.FilePCRRequest) (*model.PatientCareRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	pcr := &model.PatientCareRecord{
		ID:                     int64(len(r.store.pcrs) + 1),
		CallID:                 callID,
		PatientVitals:          req.PatientVitals,
		TreatmentsAdministered: req.TreatmentsAdministered,
		Medications:            req.Medications,
		TransferDestination:    req.TransferDestination,
		Notes:                  req.Notes,
	}

	if err := r.store.linkPCRLocked(callID, pcr.ID); err != nil {
		return nil, err
	}
	r.store.pcrs = append(r.store.pcrs, pcr)

	return copyPCR(pcr), nil
}

func (r *PCRRepository) Get(ctx context.Context, id int64) (*model.PatientCareRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.pcrs {
		if p.ID == id {
			return copyPCR(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PCRRepository) GetByCall(ctx context.Context, callID int64) (*model.PatientCareRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.pcrs {
		if p.CallID == callID {
			return copyPCR(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PCRRepository) List(ctx context.Context) ([]*model.PatientCareRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pcrs := make([]*model.PatientCareRecord, 0, len(r.store.pcrs))
	for _, p := range r.store.pcrs {
		pcrs = append(pcrs, copyPCR(p))
	}
	return pcrs, nil
}
