package model

import "time"

// CallStatus tracks an emergency call through its response lifecycle.
type CallStatus string

const (
	CallStatusPending      CallStatus = "Pending"
	CallStatusDispatched   CallStatus = "Dispatched"
	CallStatusOnScene      CallStatus = "On Scene"
	CallStatusTransporting CallStatus = "Transporting"
	CallStatusCompleted    CallStatus = "Completed"
	CallStatusCancelled    CallStatus = "Cancelled"
)

// CallStatuses lists every status in lifecycle order.
var CallStatuses = []CallStatus{
	CallStatusPending,
	CallStatusDispatched,
	CallStatusOnScene,
	CallStatusTransporting,
	CallStatusCompleted,
	CallStatusCancelled,
}

func (s CallStatus) Valid() bool {
	for _, known := range CallStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the call has left the active response
// lifecycle. Responders may not move a call out of a terminal status.
func (s CallStatus) Terminal() bool {
	return s == CallStatusCompleted || s == CallStatusCancelled
}

// EmergencyCall is a reported incident requiring dispatch. The registry
// assigns ID, Timestamp and the initial Pending status; PCRID is set at
// most once, when a care record is filed against the call.
type EmergencyCall struct {
	ID          int64      `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	CallerName  string     `json:"caller_name"`
	Phone       string     `json:"phone"`
	Location    string     `json:"location"`
	Landmark    string     `json:"landmark,omitempty"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Status      CallStatus `json:"status"`
	AssignedTo  *int64     `json:"assigned_to,omitempty"`
	PCRID       *int64     `json:"pcr_id,omitempty"`
}

// LogCallRequest represents the caller-supplied fields of a new call.
// Timestamp, status and id are assigned by the registry.
type LogCallRequest struct {
	CallerName  string `json:"caller_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Landmark    string `json:"landmark"`
	Description string `json:"description" binding:"required"`
	Priority    int    `json:"priority" binding:"required,min=1,max=4"`
	AssignedTo  *int64 `json:"assigned_to"`
}

// UpdateStatusRequest represents a status change for a call.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CallFilter represents call list query parameters. Filters are
// AND-combined; zero values bypass their clause.
type CallFilter struct {
	Status     CallStatus `form:"status"`
	AssignedTo *int64     `form:"-"`
	SearchTerm string     `form:"search"`
}

// CallStats is the supervisor's aggregate overview.
type CallStats struct {
	TotalCalls       int              `json:"total_calls"`
	PendingCalls     int              `json:"pending_calls"`
	CompletedCalls   int              `json:"completed_calls"`
	AveragePriority  float64          `json:"average_priority"`
	TotalDispatchers int              `json:"total_dispatchers"`
	TotalEMTs        int              `json:"total_emts"`
	RecentCalls      []*EmergencyCall `json:"recent_calls"`
}
