package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/data/repos"
	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/http/middleware"
	"github.com/nexusatelier/atelier-backend/internal/http/response"
)

type AssetHandler struct {
	assets repos.AssetRepo
}

func NewAssetHandler(assets repos.AssetRepo) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// GET /api/v1/assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	var assetType *domain.AssetType
	if t := c.Query("type"); t != "" {
		at := domain.AssetType(t)
		assetType = &at
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	assets, err := h.assets.ListByUser(c.Request.Context(), nil, middleware.UserID(c), assetType, limit, offset)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, domain.ErrCodeInternal, err)
		return
	}
	response.RespondOK(c, gin.H{"assets": assets})
}

// GET /api/v1/assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, domain.ErrCodeAssetNotFound, errors.New("asset not found"))
		return
	}
	asset, err := h.assets.GetByID(c.Request.Context(), nil, assetID)
	if err != nil || asset == nil || asset.UserID != middleware.UserID(c) {
		response.RespondError(c, http.StatusNotFound, domain.ErrCodeAssetNotFound, errors.New("asset not found"))
		return
	}
	response.RespondOK(c, gin.H{"asset": asset})
}
