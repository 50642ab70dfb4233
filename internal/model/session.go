package model

// ViewState identifies the active screen of a client session. The
// session service owns the legal transitions between states.
type ViewState string

const (
	ViewLogin        ViewState = "login"
	ViewSignup       ViewState = "signup"
	ViewDashboard    ViewState = "dashboard"
	ViewLogCall      ViewState = "logCall"
	ViewFilePCR      ViewState = "filePCR"
	ViewConfirmation ViewState = "confirmation"
)

// Session is the per-client view state machine. TargetCall is only
// populated while the session sits in the filePCR state; Message holds
// the confirmation text surfaced by the login and confirmation screens.
type Session struct {
	ID         string         `json:"id"`
	View       ViewState      `json:"view"`
	User       *User          `json:"user,omitempty"`
	TargetCall *EmergencyCall `json:"target_call,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// NavigateRequest represents a view transition trigger.
type NavigateRequest struct {
	Action string `json:"action" binding:"required,oneof=to-signup to-login new-call file-pcr cancel back"`
	CallID int64  `json:"call_id"`
}

// DashboardView is the role-dispatched payload for the dashboard state.
// Exactly one of the role sections is populated; Error carries the
// non-crashing fallback for an unrecognized role.
type DashboardView struct {
	Role       UserRole        `json:"role"`
	Dispatcher *DispatcherView `json:"dispatcher,omitempty"`
	EMT        *EMTView        `json:"emt,omitempty"`
	Supervisor *SupervisorView `json:"supervisor,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// DispatcherView lists every call, newest first.
type DispatcherView struct {
	Calls []*EmergencyCall `json:"calls"`
}

// EMTCall decorates a call with the responder's available actions.
type EMTCall struct {
	*EmergencyCall
	CanFilePCR bool `json:"can_file_pcr"`
}

// EMTView lists the calls assigned to the current responder.
type EMTView struct {
	Calls []*EMTCall `json:"calls"`
}

// SupervisorView is the read-only analytics payload.
type SupervisorView struct {
	Stats *CallStats `json:"stats"`
	Users []*User    `json:"users"`
}
