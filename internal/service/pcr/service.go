package pcr

import (
	"context"
	"errors"
	"fmt"

	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
)

var (
	// ErrNoTargetCall is returned when a care record is filed without a
	// call context. Normal navigation never reaches this state.
	ErrNoTargetCall = errors.New("no target call for patient care record")

	ErrAlreadyFiled = errors.New("call already has a patient care record")
	ErrCallNotFound = errors.New("call not found")
)

type Service struct {
	pcrRepo  repository.PCRRepository
	callRepo repository.CallRepository
}

func NewService(pcrRepo repository.PCRRepository, callRepo repository.CallRepository) *Service {
	return &Service{
		pcrRepo:  pcrRepo,
		callRepo: callRepo,
	}
}

// FilePCR creates a care record for the target call and links the call
// back to it as one transaction: afterwards the record's call reference
// and the call's record reference hold together, never independently.
// A call may carry at most one record.
func (s *Service) FilePCR(ctx context.Context, callID int64, req *model.FilePCRRequest) (*model.PatientCareRecord, error) {
	if callID == 0 {
		return nil, ErrNoTargetCall
	}

	pcr, err := s.pcrRepo.FileForCall(ctx, callID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCallNotFound
		case errors.Is(err, repository.ErrPCRAlreadyFiled):
			return nil, ErrAlreadyFiled
		}
		return nil, fmt.Errorf("failed to file patient care record: %w", err)
	}

	return pcr, nil
}

func (s *Service) GetPCR(ctx context.Context, id int64) (*model.PatientCareRecord, error) {
	pcr, err := s.pcrRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient care record: %w", err)
	}
	return pcr, nil
}

func (s *Service) GetByCall(ctx context.Context, callID int64) (*model.PatientCareRecord, error) {
	pcr, err := s.pcrRepo.GetByCall(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient care record: %w", err)
	}
	return pcr, nil
}

func (s *Service) ListPCRs(ctx context.Context) ([]*model.PatientCareRecord, error) {
	pcrs, err := s.pcrRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient care records: %w", err)
	}
	return pcrs, nil
}
