package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
)

type CallRepository struct {
	store *Store
}

func NewCallRepository(store *Store) *CallRepository {
	return &CallRepository{store: store}
}

// Create logs a new call. The registry assigns the id, the timestamp
// and the initial Pending status; the call is inserted at the head of
// the sequence so insertion order is newest first.
func (r *CallRepository) Create(ctx context.Context, req *model.LogCallRequest) (*model.EmergencyCall, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	call := &model.EmergencyCall{
		ID:          int64(len(r.store.calls) + 1),
		Timestamp:   r.store.now(),
		CallerName:  req.CallerName,
		Phone:       req.Phone,
		Location:    req.Location,
		Landmark:    req.Landmark,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      model.CallStatusPending,
	}
	if req.AssignedTo != nil {
		v := *req.AssignedTo
		call.AssignedTo = &v
	}

	r.store.calls = append([]*model.EmergencyCall{call}, r.store.calls...)

	return copyCall(call), nil
}

func (r *CallRepository) Get(ctx context.Context, id int64) (*model.EmergencyCall, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	call := r.store.findCall(id)
	if call == nil {
		return nil, repository.ErrNotFound
	}
	return copyCall(call), nil
}

// UpdateStatus replaces the status of the matching call. A missing id
// is a no-op; the registry does not validate transition legality.
func (r *CallRepository) UpdateStatus(ctx context.Context, id int64, status model.CallStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if call := r.store.findCall(id); call != nil {
		call.Status = status
	}
	return nil
}

// LinkPCR sets the care record reference on the matching call. The
// reference is set at most once; a second link is rejected.
func (r *CallRepository) LinkPCR(ctx context.Context, callID, pcrID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.linkPCRLocked(callID, pcrID)
}

// List returns the calls matching the filter, sorted descending by
// timestamp. Filter clauses are AND-combined; the zero status acts as
// the "all" sentinel and the search term matches case-insensitively
// across location, caller name and description.
func (r *CallRepository) List(ctx context.Context, filter *model.CallFilter) ([]*model.EmergencyCall, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if filter == nil {
		filter = &model.CallFilter{}
	}

	term := strings.ToLower(filter.SearchTerm)
	calls := make([]*model.EmergencyCall, 0, len(r.store.calls))
	for _, call := range r.store.calls {
		if filter.Status != "" && call.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (call.AssignedTo == nil || *call.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if term != "" && !matchesTerm(call, term) {
			continue
		}
		calls = append(calls, copyCall(call))
	}

	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Timestamp.After(calls[j].Timestamp)
	})

	return calls, nil
}

func matchesTerm(call *model.EmergencyCall, term string) bool {
	return strings.Contains(strings.ToLower(call.Location), term) ||
		strings.Contains(strings.ToLower(call.CallerName), term) ||
		strings.Contains(strings.ToLower(call.Description), term)
}

func (s *Store) findCall(id int64) *model.EmergencyCall {
	for _, call := range s.calls {
		if call.ID == id {
			return call
		}
	}
	return nil
}

func (s *Store) linkPCRLocked(callID, pcrID int64) error {
	call := s.findCall(callID)
	if call == nil {
		return repository.ErrNotFound
	}
	if call.PCRID != nil {
		return repository.ErrPCRAlreadyFiled
	}
	call.PCRID = &pcrID
	return nil
}
