package handler

import (
	"net/http"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves paper types, item types and programs.
type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) CreatePaperType(c *gin.Context) {
	var req dto.CreatePaperTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreatePaperType(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListPaperTypes(c *gin.Context) {
	resp, err := h.svc.ListPaperTypes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetPaperType(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetPaperType(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) CreateItemType(c *gin.Context) {
	var req dto.CreateItemTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateItemType(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListItemTypes(c *gin.Context) {
	resp, err := h.svc.ListItemTypes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) CreateProgram(c *gin.Context) {
	var req dto.CreateProgramRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateProgram(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	resp, err := h.svc.ListPrograms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetProgram(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetProgram(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
