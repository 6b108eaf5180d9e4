package handler

import (
	"net/http"

	"github.com/Pratham4590/PBM-OP-sub000/internal/apierror"
	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// maxLabelImageBytes caps label uploads forwarded to the extraction service.
const maxLabelImageBytes = 10 << 20

type ReelsHandler struct{ svc service.ReelService }

func NewReelsHandler(svc service.ReelService) *ReelsHandler {
	return &ReelsHandler{svc: svc}
}

func (h *ReelsHandler) Register(c *gin.Context) {
	var req dto.RegisterReelRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReelsHandler) RegisterBatch(c *gin.Context) {
	var req dto.BatchRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterBatch(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Extract forwards a label photo (multipart field "image") to the extraction
// service. Nothing is persisted; the client confirms pairs via RegisterBatch.
func (h *ReelsHandler) Extract(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxLabelImageBytes)
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Missing image file"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Unreadable image file"))
		return
	}
	defer f.Close()

	resp, err := h.svc.Extract(c.Request.Context(), fh.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReelsHandler) List(c *gin.Context) {
	var filter dto.ReelFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReelsHandler) Get(c *gin.Context) {
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

func (h *ReelsHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ChangeStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ChangeStatus(c.Request.Context(), callerFrom(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReelsHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReelsHandler) StatusLogs(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.StatusLogs(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
