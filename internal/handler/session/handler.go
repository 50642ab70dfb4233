package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emsops/dispatch-api/internal/handler"
	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/service/call"
	"github.com/emsops/dispatch-api/internal/service/session"
)

const headerSessionID = "X-Session-ID"

type Handler struct {
	svc     *session.Service
	callSvc *call.Service
}

func NewHandler(svc *session.Service, callSvc *call.Service) *Handler {
	return &Handler{svc: svc, callSvc: callSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	grp := r.Group("/session")
	{
		grp.POST("", h.Start)
		grp.GET("", h.Current)
		grp.POST("/navigate", h.Navigate)
	}
}

// Start opens a new session at the login screen.
func (h *Handler) Start(c *gin.Context) {
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(h.svc.Start()))
}

// Current returns the session's view state. A filePCR state without a
// target call reports an empty view rather than failing.
func (h *Handler) Current(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	if sess.View == model.ViewFilePCR && sess.TargetCall == nil {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": sess.ID, "view": nil}))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

// Navigate applies a view transition trigger to the session.
func (h *Handler) Navigate(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	var err error
	switch req.Action {
	case "to-signup":
		sess, err = h.svc.NavigateToSignup(sess.ID)
	case "to-login":
		sess, err = h.svc.NavigateToLogin(sess.ID)
	case "new-call":
		if !h.requireRole(c, sess, model.RoleDispatcher) {
			return
		}
		sess, err = h.svc.RequestLogCall(sess.ID)
	case "file-pcr":
		if !h.requireRole(c, sess, model.RoleEMT) {
			return
		}
		var target *model.EmergencyCall
		target, err = h.callSvc.GetCall(c.Request.Context(), req.CallID)
		if err != nil {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("call not found"))
			return
		}
		sess, err = h.svc.RequestFilePCR(sess.ID, target)
	case "cancel":
		sess, err = h.svc.Cancel(sess.ID)
	case "back":
		sess, err = h.svc.Back(sess.ID)
	}
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidTransition):
			c.JSON(http.StatusConflict, handler.NewErrorResponse("invalid view transition"))
		case errors.Is(err, session.ErrNotEligible):
			c.JSON(http.StatusConflict, handler.NewErrorResponse("call is not eligible for a patient care record"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) lookup(c *gin.Context) (*model.Session, bool) {
	id := c.GetHeader(headerSessionID)
	if id == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing session header"))
		return nil, false
	}

	sess, err := h.svc.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("session not found"))
		return nil, false
	}
	return sess, true
}

func (h *Handler) requireRole(c *gin.Context, sess *model.Session, role model.UserRole) bool {
	if sess.User == nil || sess.User.Role != role {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
		return false
	}
	return true
}
