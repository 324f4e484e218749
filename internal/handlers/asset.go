package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/smartscale/portfolio-api/internal/errors"
	"github.com/smartscale/portfolio-api/internal/storage"
	"go.uber.org/zap"
)

// AssetReader opens stored assets by name.
type AssetReader interface {
	Open(ctx context.Context, name string) (io.ReadCloser, *storage.AssetInfo, error)
}

// AssetHandler serves uploaded images read-only.
type AssetHandler struct {
	assets AssetReader
	log    *zap.Logger
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assets AssetReader, log *zap.Logger) *AssetHandler {
	return &AssetHandler{
		assets: assets,
		log:    log,
	}
}

// Serve streams the asset named in the path.
func (h *AssetHandler) Serve(c *gin.Context) {
	body, info, err := h.assets.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, storage.ErrAssetNotFound) {
			apierrors.NotFound(c, "File not found")
			return
		}
		h.log.Error("Failed to open asset", zap.String("name", c.Param("name")), zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, body, map[string]string{
		"Cache-Control":          "public, max-age=86400",
		"X-Content-Type-Options": "nosniff",
	})
}
