package handler

import (
	"fmt"
	"net/http"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type RulingsHandler struct{ svc service.RulingService }

func NewRulingsHandler(svc service.RulingService) *RulingsHandler {
	return &RulingsHandler{svc: svc}
}

// Submit commits a ruling against a reel. A 409 with retryable=true means the
// reel moved underneath the request and resubmitting is safe.
func (h *RulingsHandler) Submit(c *gin.Context) {
	var req dto.SubmitRulingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RulingsHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RulingsHandler) ListByReel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var filter dto.RulingFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListByReel(c.Request.Context(), id, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RulingsHandler) Slip(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.svc.Slip(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="ruling-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
