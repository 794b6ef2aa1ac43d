package handler

import (
	"time"

	"github.com/b2bportal/backend/internal/application/reconcile"
	"github.com/b2bportal/backend/internal/domain/catalog"
	"github.com/b2bportal/backend/internal/domain/shared"
	"github.com/b2bportal/backend/internal/infrastructure/feed"
	"github.com/b2bportal/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler handles supplier feed ingestion.
type CatalogHandler struct {
	BaseHandler
	service  *reconcile.Service
	guard    shared.RunGuard
	guardTTL time.Duration
}

// NewCatalogHandler creates a new CatalogHandler. The guard enforces one
// reconciliation run per supplier at a time.
func NewCatalogHandler(service *reconcile.Service, guard shared.RunGuard, guardTTL time.Duration) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		guard:    guard,
		guardTTL: guardTTL,
	}
}

// FeedResponse reports one reconciliation run plus any rows the parser had
// to drop before the run started.
type FeedResponse struct {
	*reconcile.Result
	ParseErrors []feed.RowError `json:"parseErrors,omitempty"`
}

// UploadFeed ingests one supplier's CSV feed and reconciles the catalog
// against it.
// POST /api/v1/suppliers/:supplier/feed
func (h *CatalogHandler) UploadFeed(c *gin.Context) {
	supplier := catalog.NormalizeBrandKey(c.Param("supplier"))
	if supplier == "" {
		h.BadRequest(c, "supplier is required")
		return
	}

	ctx := c.Request.Context()
	log := logger.GetGinLogger(c)

	// Concurrent runs for one supplier race on the cleanup diff, so the
	// second caller is turned away instead of queued.
	acquired, err := h.guard.Acquire(ctx, "reconcile:"+supplier, h.guardTTL)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !acquired {
		h.HandleError(c, shared.ErrConflict.WithMessage("A reconciliation run for this supplier is already in progress"))
		return
	}
	defer func() {
		if err := h.guard.Release(ctx, "reconcile:"+supplier); err != nil {
			log.Warn("failed to release reconciliation guard", zap.String("supplier", supplier), zap.Error(err))
		}
	}()

	parser, closeFeed, err := h.openFeed(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	defer closeFeed()

	rows, parseErrors, err := parser.ParseAll()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ReconcileSupplierFeed(ctx, supplier, rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, FeedResponse{Result: result, ParseErrors: parseErrors})
}

// openFeed accepts the feed either as a multipart "file" field or as the
// raw request body. The returned cleanup must run once parsing is done.
func (h *CatalogHandler) openFeed(c *gin.Context) (*feed.Parser, func(), error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, nil, err
		}
		parser, err := feed.NewParser(f)
		if err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		return parser, func() { _ = f.Close() }, nil
	}
	parser, err := feed.NewParser(c.Request.Body)
	if err != nil {
		return nil, nil, err
	}
	return parser, func() {}, nil
}
