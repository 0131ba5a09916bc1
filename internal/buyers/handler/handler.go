package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buyer_portal_backend/internal/buyers/service"
	"buyer_portal_backend/internal/buyers/transport"
	"buyer_portal_backend/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid buyer id"
	msgMissingFile    = "no file uploaded"
)

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/history", h.History)
}

// List handles GET /buyers with filter, search, and page query parameters.
func (h *Handler) List(c *gin.Context) {
	var req transport.ListBuyersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /buyers.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	buyer, err := h.svc.Create(c.Request.Context(), req, httpkit.GetIdentity(c), c.ClientIP())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.CreateBuyerResponse{Data: buyer})
}

// GetByID handles GET /buyers/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	buyer, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, buyer)
}

// Update handles PUT /buyers/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	buyer, err := h.svc.Update(c.Request.Context(), id, req, httpkit.GetIdentity(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.UpdateBuyerResponse{Data: buyer})
}

// Delete handles DELETE /buyers/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id, httpkit.GetIdentity(c))) {
		return
	}
	httpkit.NoContent(c)
}

// History handles GET /buyers/:id/history.
func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	entries, err := h.svc.History(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, entries)
}

// Import handles POST /buyers/import with a multipart CSV file.
func (h *Handler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	defer file.Close()

	count, err := h.svc.ImportCSV(c.Request.Context(), file, httpkit.GetIdentity(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ImportResponse{Success: true, Count: count})
}

// Export handles GET /buyers/export, streaming the filtered list as CSV.
func (h *Handler) Export(c *gin.Context) {
	var req transport.ListBuyersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="buyers.csv"`)
	if err := h.svc.ExportCSV(c.Request.Context(), req, c.Writer); err != nil {
		// Headers may already be gone; all we can do is abort the stream.
		c.Abort()
	}
}
