// Package http implements the REST surface exposed to the host: utterance
// routing (can-answer/handle), confirmation responses, inventory views and
// pass-through process operations.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voxlaunch/voxlaunch/internal/confirm"
	"github.com/voxlaunch/voxlaunch/internal/inventory"
	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/orchestrator"
	"github.com/voxlaunch/voxlaunch/internal/process"
	"github.com/voxlaunch/voxlaunch/internal/settings"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

// Handlers bundles the API dependencies.
type Handlers struct {
	orch        *orchestrator.Service
	coordinator *confirm.Coordinator
	cache       *inventory.Cache
	store       *settings.Store
	logger      *logging.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(orch *orchestrator.Service, coordinator *confirm.Coordinator, cache *inventory.Cache, store *settings.Store, logger *logging.Logger) *Handlers {
	return &Handlers{
		orch:        orch,
		coordinator: coordinator,
		cache:       cache,
		store:       store,
		logger:      logger,
	}
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"inventory": h.cache.Stats(),
	})
}

type utteranceRequest struct {
	Text string `json:"text" binding:"required"`
}

// Query reports whether an utterance would resolve, without acting on it.
func (h *Handlers) Query(c *gin.Context) {
	var req utteranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_answer": h.orch.CanAnswer(req.Text)})
}

// Handle resolves an utterance and performs the lifecycle action.
func (h *Handlers) Handle(c *gin.Context) {
	var req utteranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	handled := h.orch.Handle(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, gin.H{"handled": handled})
}

type respondRequest struct {
	App    string `json:"app" binding:"required"`
	Answer string `json:"answer"`
}

// Respond feeds a yes/no/unrecognized answer into an active confirmation
// session.
func (h *Handlers) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The dialog outlives this request; do not tie the action to it.
	accepted := h.coordinator.Respond(context.Background(), req.App, confirm.ParseAnswer(req.Answer))
	if !accepted {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session for app"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}

// ListApps returns the current inventory snapshot.
func (h *Handlers) ListApps(c *gin.Context) {
	snap := h.cache.Snapshot()
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"apps": []types.AppIdentity{}, "valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"apps":       snap.Apps,
		"generation": snap.Generation,
		"taken_at":   snap.TakenAt,
		"valid":      h.cache.Valid(),
	})
}

// RefreshInventory forces a re-scan. A failed scan keeps serving the prior
// snapshot and reports 502.
func (h *Handlers) RefreshInventory(c *gin.Context) {
	if err := h.cache.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "stale": h.cache.Snapshot() != nil})
		return
	}
	c.JSON(http.StatusOK, h.cache.Stats())
}

// Aliases returns the merged alias table, read-only.
func (h *Handlers) Aliases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"aliases": h.orch.Aliases()})
}

// IsRunning reports running state for one app.
func (h *Handlers) IsRunning(c *gin.Context) {
	app := types.AppIdentity{Name: c.Param("name")}
	c.JSON(http.StatusOK, gin.H{"running": h.orch.IsRunning(c.Request.Context(), app)})
}

// SwitchTo brings an app to the foreground.
func (h *Handlers) SwitchTo(c *gin.Context) {
	app := types.AppIdentity{Name: c.Param("name")}
	c.JSON(http.StatusOK, gin.H{"switched": h.orch.SwitchTo(c.Request.Context(), app)})
}

// CloseApp closes an app using the requested strategy: "script", "process" or
// the default layered policy.
func (h *Handlers) CloseApp(c *gin.Context) {
	app := types.AppIdentity{Name: c.Param("name")}
	ctx := c.Request.Context()

	var closed bool
	switch c.Query("strategy") {
	case "script":
		closed = h.orch.CloseByScript(ctx, app)
	case "process":
		closed = h.orch.CloseByProcess(ctx, app)
	default:
		closed = h.orch.CloseByScript(ctx, app) || h.orch.CloseByProcess(ctx, app)
	}
	c.JSON(http.StatusOK, gin.H{"closed": closed})
}

// MatchProcesses lists running processes matching a name fragment.
func (h *Handlers) MatchProcesses(c *gin.Context) {
	fragment := c.Query("q")
	if fragment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter required"})
		return
	}

	procs := make([]process.Proc, 0, 8)
	for p := range h.orch.MatchProcess(c.Request.Context(), fragment) {
		procs = append(procs, p)
	}
	c.JSON(http.StatusOK, gin.H{"processes": procs, "count": len(procs)})
}

type userCommandRequest struct {
	Trigger string `json:"trigger" binding:"required"`
	Target  string `json:"target" binding:"required"`
}

// SetUserCommand registers a user-defined launch command.
func (h *Handlers) SetUserCommand(c *gin.Context) {
	var req userCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetUserCommand(req.Trigger, req.Target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

type aliasRequest struct {
	Name    string   `json:"name" binding:"required"`
	Aliases []string `json:"aliases" binding:"required"`
}

// SetAlias replaces the alias list for a canonical application name.
func (h *Handlers) SetAlias(c *gin.Context) {
	var req aliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetAlias(req.Name, req.Aliases); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}
