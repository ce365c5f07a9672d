package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/secrimpo/internal/logging"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
	"github.com/dmitrijs2005/secrimpo/internal/timex"
)

// Version is reported by the probe endpoint.
const Version = "1.0.0"

// SyncService is the server-side sync logic the handlers delegate to.
type SyncService interface {
	Sync(ctx context.Context, env *syncapi.Envelope) *syncapi.Response
	Status(ctx context.Context, user string) (*syncapi.Status, error)
	History(ctx context.Context, user string, limit int) ([]syncapi.HistoryEntry, error)
}

type Endpoint struct {
	sync   SyncService
	logger logging.Logger
	now    func() time.Time
}

// Register mounts the sync endpoints on r.
func Register(r gin.IRouter, svc SyncService, logger logging.Logger) {
	ep := &Endpoint{sync: svc, logger: logger, now: time.Now}

	g := r.Group("/sincronizar")
	g.POST("/teste", ep.Probe)
	g.POST("", ep.Sync)
	g.GET("/status/:usuario", ep.Status)
	g.GET("/historico/:usuario", ep.History)
}

func errorResponse(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, syncapi.ErrorBody{Detail: detail})
}

func (ep *Endpoint) Probe(c *gin.Context) {
	c.JSON(http.StatusOK, syncapi.ProbeResponse{
		Status:    "ok",
		Message:   "sync server reachable",
		Timestamp: timex.Time{Time: ep.now().UTC()},
		Version:   Version,
	})
}

func (ep *Endpoint) Sync(c *gin.Context) {
	var env syncapi.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		errorResponse(c, http.StatusBadRequest, FormatBindingError(err))
		return
	}
	if err := env.ValidateHeader(); err != nil {
		errorResponse(c, http.StatusBadRequest, syncapi.FormatValidationError(err))
		return
	}
	if env.Data.Len() == 0 {
		errorResponse(c, http.StatusBadRequest, "field 'dados' must not be empty")
		return
	}

	c.JSON(http.StatusOK, ep.sync.Sync(c.Request.Context(), &env))
}

func userParam(c *gin.Context) (string, bool) {
	user := strings.TrimSpace(c.Param("usuario"))
	if user == "" {
		errorResponse(c, http.StatusBadRequest, "field 'usuario' is required")
		return "", false
	}
	return user, true
}

func (ep *Endpoint) Status(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}

	st, err := ep.sync.Status(c.Request.Context(), user)
	if err != nil {
		ep.logger.Error(c.Request.Context(), "status failed", "user", user, "error", err)
		errorResponse(c, http.StatusInternalServerError, "error reading sync status")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (ep *Endpoint) History(c *gin.Context) {
	user, ok := userParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "field 'limit' must be an integer")
			return
		}
		limit = n
	}

	entries, err := ep.sync.History(c.Request.Context(), user, limit)
	if err != nil {
		ep.logger.Error(c.Request.Context(), "history failed", "user", user, "error", err)
		errorResponse(c, http.StatusInternalServerError, "error reading sync history")
		return
	}
	c.JSON(http.StatusOK, entries)
}
