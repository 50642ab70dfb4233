package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/emsops/dispatch-api/internal/handler"
	"github.com/emsops/dispatch-api/internal/model"
	"github.com/emsops/dispatch-api/internal/service/auth"
	"github.com/emsops/dispatch-api/internal/service/session"
)

const headerSessionID = "X-Session-ID"

type Handler struct {
	svc        *auth.Service
	sessionSvc *session.Service
}

func NewHandler(svc *auth.Service, sessionSvc *session.Service) *Handler {
	return &Handler{svc: svc, sessionSvc: sessionSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	grp := r.Group("/auth")
	{
		grp.POST("/login", h.Login)
		grp.POST("/signup", h.Signup)
		grp.POST("/logout", h.Logout)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid credentials"))
		return
	}

	h.advanceSession(c, func(id string) error {
		_, err := h.sessionSvc.LoginSucceeded(id, tokens.User)
		return err
	})

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			c.JSON(http.StatusConflict, handler.NewErrorResponse("username already exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	h.advanceSession(c, func(id string) error {
		_, err := h.sessionSvc.SignupSucceeded(id)
		return err
	})

	c.JSON(http.StatusCreated, &handler.Response{
		Status:  "success",
		Message: session.MsgAccountCreated,
		Data:    user,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.advanceSession(c, func(id string) error {
		_, err := h.sessionSvc.Logout(id)
		return err
	})

	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}

// advanceSession applies a view transition when the client carries a
// session. A stale or missing session never fails the auth operation
// itself.
func (h *Handler) advanceSession(c *gin.Context, fn func(id string) error) {
	id := c.GetHeader(headerSessionID)
	if id == "" {
		return
	}
	if err := fn(id); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("session transition skipped")
	}
}
