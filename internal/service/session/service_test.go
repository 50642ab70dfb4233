package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/service/session"
)

func newService() *session.Service {
	return session.NewService(time.Hour, time.Hour)
}

func dispatcher() *model.User {
	return &model.User{ID: 1, Username: "dispatcher1", Role: model.RoleDispatcher}
}

func completedCall() *model.EmergencyCall {
	return &model.EmergencyCall{ID: 4, Status: model.CallStatusCompleted}
}

func TestService_StartsAtLogin(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, model.ViewLogin, sess.View)
	assert.Nil(t, sess.User)

	found, err := svc.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, found.ID)
}

func TestService_GetUnknownSession(t *testing.T) {
	_, err := newService().Get("missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_SignupFlow(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	sess, err := svc.NavigateToSignup(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewSignup, sess.View)

	sess, err = svc.SignupSucceeded(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewLogin, sess.View)
	assert.Equal(t, session.MsgAccountCreated, sess.Message)

	// Logging in afterwards clears the confirmation message.
	sess, err = svc.LoginSucceeded(sess.ID, dispatcher())
	require.NoError(t, err)
	assert.Equal(t, model.ViewDashboard, sess.View)
	assert.Empty(t, sess.Message)
	require.NotNil(t, sess.User)
	assert.Equal(t, int64(1), sess.User.ID)
}

func TestService_LogCallFlow(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	_, err := svc.LoginSucceeded(sess.ID, dispatcher())
	require.NoError(t, err)

	sess, err = svc.RequestLogCall(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewLogCall, sess.View)

	sess, err = svc.CallLogged(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewConfirmation, sess.View)
	assert.Equal(t, session.MsgCallLogged, sess.Message)

	sess, err = svc.Back(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewDashboard, sess.View)
	assert.Empty(t, sess.Message)
}

func TestService_LogCallCancel(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	_, err := svc.LoginSucceeded(sess.ID, dispatcher())
	require.NoError(t, err)
	_, err = svc.RequestLogCall(sess.ID)
	require.NoError(t, err)

	sess, err = svc.Cancel(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewDashboard, sess.View)
}

func TestService_FilePCRFlow(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	emt := &model.User{ID: 2, Username: "emt1", Role: model.RoleEMT}
	_, err := svc.LoginSucceeded(sess.ID, emt)
	require.NoError(t, err)

	sess, err = svc.RequestFilePCR(sess.ID, completedCall())
	require.NoError(t, err)
	assert.Equal(t, model.ViewFilePCR, sess.View)
	require.NotNil(t, sess.TargetCall)
	assert.Equal(t, int64(4), sess.TargetCall.ID)

	sess, err = svc.PCRSubmitted(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewConfirmation, sess.View)
	assert.Equal(t, session.MsgPCRSubmitted, sess.Message)
	assert.Nil(t, sess.TargetCall)
}

func TestService_FilePCRCancelClearsTarget(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	_, err := svc.LoginSucceeded(sess.ID, dispatcher())
	require.NoError(t, err)
	_, err = svc.RequestFilePCR(sess.ID, completedCall())
	require.NoError(t, err)

	sess, err = svc.Cancel(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewDashboard, sess.View)
	assert.Nil(t, sess.TargetCall)
}

func TestService_FilePCREligibility(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	_, err := svc.LoginSucceeded(sess.ID, dispatcher())
	require.NoError(t, err)

	_, err = svc.RequestFilePCR(sess.ID, &model.EmergencyCall{ID: 1, Status: model.CallStatusDispatched})
	assert.ErrorIs(t, err, session.ErrNotEligible)

	pcrID := int64(1)
	_, err = svc.RequestFilePCR(sess.ID, &model.EmergencyCall{
		ID:     4,
		Status: model.CallStatusCompleted,
		PCRID:  &pcrID,
	})
	assert.ErrorIs(t, err, session.ErrNotEligible)

	// Rejected requests leave the session on the dashboard.
	current, getErr := svc.Get(sess.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.ViewDashboard, current.View)
}

func TestService_InvalidTransitions(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	// Dashboard-only triggers fail from the login screen.
	_, err := svc.RequestLogCall(sess.ID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)

	_, err = svc.Back(sess.ID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)

	_, err = svc.Cancel(sess.ID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)

	// Failed transitions leave the state untouched.
	current, getErr := svc.Get(sess.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.ViewLogin, current.View)
}

func TestService_Logout(t *testing.T) {
	svc := newService()
	sess := svc.Start()

	_, err := svc.LoginSucceeded(sess.ID, dispatcher())
	require.NoError(t, err)
	_, err = svc.RequestFilePCR(sess.ID, completedCall())
	require.NoError(t, err)

	// Logout succeeds from any state and clears everything.
	sess, err = svc.Logout(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewLogin, sess.View)
	assert.Nil(t, sess.User)
	assert.Nil(t, sess.TargetCall)
	assert.Empty(t, sess.Message)
}
