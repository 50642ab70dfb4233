package pcr

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
	"github.com/emsops/dispatch-api/internal/service/pcr"
	"github.com/emsops/dispatch-api/internal/service/session"
)

type Handler struct {
	svc        *pcr.Service
	sessionSvc *session.Service
	auth       *middleware.AuthMiddleware
}

func NewHandler(svc *pcr.Service, sessionSvc *session.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, sessionSvc: sessionSvc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	pcrs := r.Group("/pcrs")
	{
		pcrs.POST("", h.auth.RequireRole(model.RoleEMT), h.FilePCR)
		pcrs.GET("", h.auth.RequireRole(model.RoleEMT, model.RoleSupervisor), h.ListPCRs)
		pcrs.GET("/:id", h.GetPCR)
	}
	r.GET("/calls/:id/pcr", h.GetByCall)
}

// FilePCR files a care record for a completed call and links the call
// to it. A second record for the same call is rejected.
func (h *Handler) FilePCR(c *gin.Context) {
	var req model.FilePCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	filed, err := h.svc.FilePCR(c.Request.Context(), req.CallID, &req)
	if err != nil {
		switch {
		case errors.Is(err, pcr.ErrNoTargetCall), errors.Is(err, pcr.ErrCallNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("call not found"))
		case errors.Is(err, pcr.ErrAlreadyFiled):
			c.JSON(http.StatusConflict, handler.NewErrorResponse("call already has a patient care record"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	if id := c.GetHeader("X-Session-ID"); id != "" {
		if _, err := h.sessionSvc.PCRSubmitted(id); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("session transition skipped")
		}
	}

	c.JSON(http.StatusCreated, &handler.Response{
		Status:  "success",
		Message: session.MsgPCRSubmitted,
		Data:    filed,
	})
}

func (h *Handler) ListPCRs(c *gin.Context) {
	records, err := h.svc.ListPCRs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) GetPCR(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record id"))
		return
	}

	record, err := h.svc.GetPCR(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient care record not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) GetByCall(c *gin.Context) {
	callID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid call id"))
		return
	}

	record, err := h.svc.GetByCall(c.Request.Context(), callID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient care record not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}
