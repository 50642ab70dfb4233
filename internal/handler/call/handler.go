package call

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/emsops/dispatch-api/internal/handler"
	"github.com/emsops/dispatch-api/internal/middleware"
	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/repository"
	"github.com/emsops/dispatch-api/internal/service/call"
	"github.com/emsops/dispatch-api/internal/service/session"
)

type Handler struct {
	svc        *call.Service
	sessionSvc *session.Service
	auth       *middleware.AuthMiddleware
}

func NewHandler(svc *call.Service, sessionSvc *session.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, sessionSvc: sessionSvc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	calls := r.Group("/calls")
	{
		calls.GET("", h.auth.RequireRole(model.RoleDispatcher, model.RoleSupervisor), h.ListCalls)
		calls.POST("", h.auth.RequireRole(model.RoleDispatcher), h.LogCall)
		calls.GET("/assigned", h.auth.RequireRole(model.RoleEMT), h.AssignedCalls)
		calls.GET("/:id", h.GetCall)
		calls.PATCH("/:id/status", h.auth.RequireRole(model.RoleDispatcher, model.RoleEMT), h.UpdateStatus)
	}
}

// ListCalls serves the dispatcher call list: an optional exact status
// filter (absent means all) ANDed with a case-insensitive search across
// location, caller name and description, newest first.
func (h *Handler) ListCalls(c *gin.Context) {
	var filter model.CallFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid status filter"))
		return
	}

	calls, err := h.svc.ListCalls(c.Request.Context(), &filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"calls": calls}))
}

func (h *Handler) LogCall(c *gin.Context) {
	var req model.LogCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	logged, err := h.svc.LogCall(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	if id := c.GetHeader("X-Session-ID"); id != "" {
		if _, err := h.sessionSvc.CallLogged(id); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("session transition skipped")
		}
	}

	c.JSON(http.StatusCreated, &handler.Response{
		Status:  "success",
		Message: session.MsgCallLogged,
		Data:    logged,
	})
}

// AssignedCalls serves the responder view: calls assigned to the
// current user, newest first.
func (h *Handler) AssignedCalls(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	calls, err := h.svc.AssignedCalls(c.Request.Context(), userID, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"calls": calls}))
}

func (h *Handler) GetCall(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid call id"))
		return
	}

	found, err := h.svc.GetCall(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("call not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

// UpdateStatus replaces the status of a call. Dispatchers may set any
// status; responders are limited to the field transitions and cannot
// reopen closed calls.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid call id"))
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	status := model.CallStatus(req.Status)
	role, _ := middleware.CurrentUserRole(c)
	if role == model.RoleEMT {
		err = h.svc.UpdateStatusAsResponder(c.Request.Context(), id, status)
	} else {
		err = h.svc.UpdateStatus(c.Request.Context(), id, status)
	}
	if err != nil {
		switch {
		case errors.Is(err, call.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid status"))
		case errors.Is(err, call.ErrCallClosed):
			c.JSON(http.StatusConflict, handler.NewErrorResponse("call is already closed"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": id, "status": status}))
}
