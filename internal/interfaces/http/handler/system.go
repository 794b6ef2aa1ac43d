package handler

import (
	"github.com/b2bportal/backend/internal/infrastructure/cache"
	"github.com/b2bportal/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// SystemHandler exposes health checks and privileged maintenance actions.
type SystemHandler struct {
	BaseHandler
	db              *persistence.Database
	masterDataCache *cache.MasterDataCache
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, masterDataCache *cache.MasterDataCache) *SystemHandler {
	return &SystemHandler{
		db:              db,
		masterDataCache: masterDataCache,
	}
}

// Health reports service liveness and database reachability.
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	if err := h.db.Ping(); err != nil {
		status = "degraded"
	}
	h.Success(c, gin.H{"status": status})
}

// InvalidateMasterDataCache drops the master-data cache so the next lookup
// rebuilds from storage. Admin-only; the router guards this route.
// DELETE /api/v1/admin/cache/master-data
func (h *SystemHandler) InvalidateMasterDataCache(c *gin.Context) {
	h.masterDataCache.Invalidate()
	h.NoContent(c)
}
