package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/checker"
	"github.com/certwatch-io/certwatch/internal/core"
	"github.com/certwatch-io/certwatch/internal/metrics"
	"github.com/certwatch-io/certwatch/internal/scheduler"
	"github.com/certwatch-io/certwatch/internal/settings"
	"github.com/certwatch-io/certwatch/internal/watchlist"
)

// HistoryStore is the slice of the repository the handlers need for
// the check-history endpoints.
type HistoryStore interface {
	ListHistory(ctx context.Context, limit int) ([]core.CertificateSnapshot, error)
	ClearHistory(ctx context.Context) error
}

// BatchChecker runs ad-hoc multi-domain checks.
type BatchChecker interface {
	FetchBatch(ctx context.Context, domains []string) checker.BatchResult
}

// RegistrationChecker looks up WHOIS registration data.
type RegistrationChecker interface {
	Check(domain string) (*core.RegistrationDetails, error)
}

type Handler struct {
	service      *watchlist.Service
	batch        BatchChecker
	registration RegistrationChecker
	history      HistoryStore
	settings     *settings.Store
	scheduler    *scheduler.Scheduler
	metrics      *metrics.Collector
	logger       *zap.Logger
}

func NewHandler(
	service *watchlist.Service,
	batch BatchChecker,
	registration RegistrationChecker,
	history HistoryStore,
	st *settings.Store,
	sched *scheduler.Scheduler,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		service:      service,
		batch:        batch,
		registration: registration,
		history:      history,
		settings:     st,
		scheduler:    sched,
		metrics:      collector,
		logger:       logger,
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses.
// Anything unrecognized is a fetch or infrastructure failure.
func respondError(c *gin.Context, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, core.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func bindPositiveInt(raw string, out *int) error {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fmt.Errorf("%q is not a positive integer", raw)
	}
	*out = n
	return nil
}
