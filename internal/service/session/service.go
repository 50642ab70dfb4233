// Package session implements the per-client view state machine. Every
// screen transition the UI can trigger goes through here, so the rules
// that gate each screen (an active user for the dashboard, a target
// call for the care record form) live in one place.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/emsops/dispatch-api/internal/model"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid view transition")

	// ErrNotEligible is returned when the care record form is requested
	// for a call that is not completed or already carries a record.
	ErrNotEligible = errors.New("call is not eligible for a patient care record")
)

// Confirmation messages surfaced by the login and confirmation screens.
const (
	MsgAccountCreated = "Account created successfully! Please log in."
	MsgCallLogged     = "Emergency call logged successfully."
	MsgPCRSubmitted   = "Patient Care Record submitted successfully."
)

type Service struct {
	sessions *cache.Cache
}

func NewService(ttl, cleanupInterval time.Duration) *Service {
	return &Service{
		sessions: cache.New(ttl, cleanupInterval),
	}
}

// Start opens a fresh session at the login screen.
func (s *Service) Start() *model.Session {
	sess := &model.Session{
		ID:   uuid.New().String(),
		View: model.ViewLogin,
	}
	s.sessions.SetDefault(sess.ID, sess)
	return sess
}

func (s *Service) Get(id string) (*model.Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*model.Session), nil
}

// NavigateToSignup moves login -> signup and clears any pending
// confirmation message.
func (s *Service) NavigateToSignup(id string) (*model.Session, error) {
	return s.transition(id, model.ViewLogin, func(sess *model.Session) error {
		sess.View = model.ViewSignup
		sess.Message = ""
		return nil
	})
}

// NavigateToLogin moves signup -> login.
func (s *Service) NavigateToLogin(id string) (*model.Session, error) {
	return s.transition(id, model.ViewSignup, func(sess *model.Session) error {
		sess.View = model.ViewLogin
		return nil
	})
}

// LoginSucceeded moves login -> dashboard and sets the active user.
func (s *Service) LoginSucceeded(id string, user *model.User) (*model.Session, error) {
	return s.transition(id, model.ViewLogin, func(sess *model.Session) error {
		sess.View = model.ViewDashboard
		sess.User = user
		sess.Message = ""
		return nil
	})
}

// SignupSucceeded moves signup -> login with the account confirmation
// message. The new user is not logged in.
func (s *Service) SignupSucceeded(id string) (*model.Session, error) {
	return s.transition(id, model.ViewSignup, func(sess *model.Session) error {
		sess.View = model.ViewLogin
		sess.Message = MsgAccountCreated
		return nil
	})
}

// RequestLogCall moves dashboard -> logCall.
func (s *Service) RequestLogCall(id string) (*model.Session, error) {
	return s.transition(id, model.ViewDashboard, func(sess *model.Session) error {
		sess.View = model.ViewLogCall
		return nil
	})
}

// CallLogged moves logCall -> confirmation after a successful submit.
func (s *Service) CallLogged(id string) (*model.Session, error) {
	return s.transition(id, model.ViewLogCall, func(sess *model.Session) error {
		sess.View = model.ViewConfirmation
		sess.Message = MsgCallLogged
		return nil
	})
}

// RequestFilePCR moves dashboard -> filePCR, storing the target call as
// part of the state. Only a completed call without an existing record
// is eligible.
func (s *Service) RequestFilePCR(id string, call *model.EmergencyCall) (*model.Session, error) {
	return s.transition(id, model.ViewDashboard, func(sess *model.Session) error {
		if call == nil || call.Status != model.CallStatusCompleted || call.PCRID != nil {
			return ErrNotEligible
		}
		sess.View = model.ViewFilePCR
		sess.TargetCall = call
		return nil
	})
}

// PCRSubmitted moves filePCR -> confirmation and drops the target call.
func (s *Service) PCRSubmitted(id string) (*model.Session, error) {
	return s.transition(id, model.ViewFilePCR, func(sess *model.Session) error {
		sess.View = model.ViewConfirmation
		sess.TargetCall = nil
		sess.Message = MsgPCRSubmitted
		return nil
	})
}

// Cancel abandons the log-call or file-PCR form and returns to the
// dashboard with no other side effects.
func (s *Service) Cancel(id string) (*model.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.View != model.ViewLogCall && sess.View != model.ViewFilePCR {
		return nil, ErrInvalidTransition
	}
	sess.View = model.ViewDashboard
	sess.TargetCall = nil
	s.sessions.SetDefault(sess.ID, sess)
	return sess, nil
}

// Back moves confirmation -> dashboard.
func (s *Service) Back(id string) (*model.Session, error) {
	return s.transition(id, model.ViewConfirmation, func(sess *model.Session) error {
		sess.View = model.ViewDashboard
		sess.Message = ""
		return nil
	})
}

// Logout returns the session to the login screen, clearing the active
// user, the target call and any message. It cannot fail from any state.
func (s *Service) Logout(id string) (*model.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sess.View = model.ViewLogin
	sess.User = nil
	sess.TargetCall = nil
	sess.Message = ""
	s.sessions.SetDefault(sess.ID, sess)
	return sess, nil
}

func (s *Service) transition(id string, from model.ViewState, apply func(*model.Session) error) (*model.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.View != from {
		return nil, ErrInvalidTransition
	}
	if err := apply(sess); err != nil {
		return nil, err
	}
	s.sessions.SetDefault(sess.ID, sess)
	return sess, nil
}
