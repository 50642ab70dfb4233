// Package memory implements the repository interfaces over a single
// process-lifetime store. All three registries share one lock so that
// cross-registry mutations (filing a care record and linking its call)
// commit as a unit.
package memory

import (
	"sync"
	"time"

	"github.com/emsops/dispatch-api/internal/model"
)

// Store owns the user, call and care record registries for the life of
// the process. Entities are never deleted; ids are assigned as
// registry length + 1 and are therefore monotonic.
type Store struct {
	mu    sync.RWMutex
	now   func() time.Time
	users []*model.User
	calls []*model.EmergencyCall
	pcrs  []*model.PatientCareRecord
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// NewSeededStore returns a store pre-populated with the reference
// dataset used for demonstrations and tests.
func NewSeededStore() *Store {
	s := NewStore()
	s.seed()
	return s
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func copyCall(call *model.EmergencyCall) *model.EmergencyCall {
	c := *call
	if call.AssignedTo != nil {
		v := *call.AssignedTo
		c.AssignedTo = &v
	}
	if call.PCRID != nil {
		v := *call.PCRID
		c.PCRID = &v
	}
	return &c
}

func copyPCR(p *model.PatientCareRecord) *model.PatientCareRecord {
	c := *p
	return &c
}
