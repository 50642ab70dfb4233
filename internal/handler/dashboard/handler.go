package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emsops/dispatch-api/internal/handler"
	"github.com/emsops/dispatch-api/internal/middleware"
	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
	"github.com/emsops/dispatch-api/internal/service/call"
)

// Handler assembles the role-specific dashboard payloads. Views get
// read-only snapshots; every mutation goes through the call and pcr
// endpoints.
type Handler struct {
	callSvc  *call.Service
	userRepo repository.UserRepository
}

func NewHandler(callSvc *call.Service, userRepo repository.UserRepository) *Handler {
	return &Handler{callSvc: callSvc, userRepo: userRepo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)
}

// Dashboard dispatches on the active user's role. An unrecognized role
// renders an error payload instead of failing the request.
func (h *Handler) Dashboard(c *gin.Context) {
	role, ok := middleware.CurrentUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	view := &model.DashboardView{Role: role}
	var err error

	switch role {
	case model.RoleDispatcher:
		view.Dispatcher, err = h.dispatcherView(c)
	case model.RoleEMT:
		view.EMT, err = h.emtView(c)
	case model.RoleSupervisor:
		view.Supervisor, err = h.supervisorView(c)
	default:
		view.Error = "Invalid user role."
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) dispatcherView(c *gin.Context) (*model.DispatcherView, error) {
	filter := &model.CallFilter{
		Status:     model.CallStatus(c.Query("status")),
		SearchTerm: c.Query("search"),
	}
	calls, err := h.callSvc.ListCalls(c.Request.Context(), filter)
	if err != nil {
		return nil, err
	}
	return &model.DispatcherView{Calls: calls}, nil
}

func (h *Handler) emtView(c *gin.Context) (*model.EMTView, error) {
	userID, _ := middleware.CurrentUserID(c)
	calls, err := h.callSvc.AssignedCalls(c.Request.Context(), userID, c.Query("search"))
	if err != nil {
		return nil, err
	}

	view := &model.EMTView{Calls: make([]*model.EMTCall, 0, len(calls))}
	for _, assigned := range calls {
		view.Calls = append(view.Calls, &model.EMTCall{
			EmergencyCall: assigned,
			CanFilePCR:    assigned.Status == model.CallStatusCompleted && assigned.PCRID == nil,
		})
	}
	return view, nil
}

func (h *Handler) supervisorView(c *gin.Context) (*model.SupervisorView, error) {
	stats, err := h.callSvc.Stats(c.Request.Context())
	if err != nil {
		return nil, err
	}
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return &model.SupervisorView{Stats: stats, Users: users}, nil
}
