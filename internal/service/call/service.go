package call

import (
	"context"
	"errors"
	"fmt"

	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
)

var (
	ErrInvalidStatus = errors.New("invalid call status")

	// ErrCallClosed is returned when a responder tries to move a call
	// that already reached Completed or Cancelled.
	ErrCallClosed = errors.New("call is already closed")
)

// responderStatuses are the transitions a responder may set from the
// field. Pending and Cancelled stay dispatcher-only.
var responderStatuses = map[model.CallStatus]bool{
	model.CallStatusDispatched:   true,
	model.CallStatusOnScene:      true,
	model.CallStatusTransporting: true,
	model.CallStatusCompleted:    true,
}

const recentCallLimit = 5

type Service struct {
	callRepo repository.CallRepository
	userRepo repository.UserRepository
}

func NewService(callRepo repository.CallRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		callRepo: callRepo,
		userRepo: userRepo,
	}
}

// LogCall registers a new emergency call. The registry stamps the id,
// timestamp and the initial Pending status; logging never fails for
// valid input.
func (s *Service) LogCall(ctx context.Context, req *model.LogCallRequest) (*model.EmergencyCall, error) {
	call, err := s.callRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to log call: %w", err)
	}
	return call, nil
}

func (s *Service) GetCall(ctx context.Context, id int64) (*model.EmergencyCall, error) {
	call, err := s.callRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return call, nil
}

// UpdateStatus replaces a call's status without constraining the
// transition. Updating a nonexistent call is a no-op and updating to
// the current status is idempotent.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status model.CallStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.callRepo.UpdateStatus(ctx, id, status)
}

// UpdateStatusAsResponder applies the field-side policy: the target set
// is restricted to the active response statuses and closed calls stay
// closed.
func (s *Service) UpdateStatusAsResponder(ctx context.Context, id int64, status model.CallStatus) error {
	if !responderStatuses[status] {
		return ErrInvalidStatus
	}

	call, err := s.callRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get call: %w", err)
	}
	if call.Status.Terminal() {
		return ErrCallClosed
	}

	return s.callRepo.UpdateStatus(ctx, id, status)
}

// ListCalls returns calls matching the filter, newest first.
func (s *Service) ListCalls(ctx context.Context, filter *model.CallFilter) ([]*model.EmergencyCall, error) {
	calls, err := s.callRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	return calls, nil
}

// AssignedCalls returns the calls assigned to the given responder,
// optionally narrowed by a search term, newest first.
func (s *Service) AssignedCalls(ctx context.Context, userID int64, searchTerm string) ([]*model.EmergencyCall, error) {
	return s.ListCalls(ctx, &model.CallFilter{
		AssignedTo: &userID,
		SearchTerm: searchTerm,
	})
}

// Stats computes the supervisor overview. The average priority over an
// empty registry is 0.
func (s *Service) Stats(ctx context.Context) (*model.CallStats, error) {
	calls, err := s.callRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}

	stats := &model.CallStats{TotalCalls: len(calls)}
	prioritySum := 0
	for _, call := range calls {
		prioritySum += call.Priority
		switch call.Status {
		case model.CallStatusPending:
			stats.PendingCalls++
		case model.CallStatusCompleted:
			stats.CompletedCalls++
		}
	}
	if stats.TotalCalls > 0 {
		stats.AveragePriority = float64(prioritySum) / float64(stats.TotalCalls)
	}

	if stats.TotalDispatchers, err = s.userRepo.CountByRole(ctx, model.RoleDispatcher); err != nil {
		return nil, fmt.Errorf("failed to count dispatchers: %w", err)
	}
	if stats.TotalEMTs, err = s.userRepo.CountByRole(ctx, model.RoleEMT); err != nil {
		return nil, fmt.Errorf("failed to count EMTs: %w", err)
	}

	stats.RecentCalls = calls
	if len(stats.RecentCalls) > recentCallLimit {
		stats.RecentCalls = stats.RecentCalls[:recentCallLimit]
	}

	return stats, nil
}
