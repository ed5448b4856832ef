package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/artifacts"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/state"
)

// StateHandler exposes the state gateway over HTTP. The gateway's
// swallow-and-log contract maps onto status codes here: 503 when the gateway
// never initialized, 502 when the backend refused a write, 404 when a
// document is absent.
type StateHandler struct {
	gw  *state.Gateway
	art *artifacts.Store // nil when MinIO is not configured
}

func NewStateHandler(gw *state.Gateway, art *artifacts.Store) *StateHandler {
	return &StateHandler{gw: gw, art: art}
}

// Register wires the state endpoints onto the given router group. The auth
// middleware, when non-nil, guards only the mutating routes; reads stay open.
func (h *StateHandler) Register(g *gin.RouterGroup, auth gin.HandlerFunc) {
	if auth == nil {
		auth = func(c *gin.Context) { c.Next() }
	}
	g.GET("/state", h.GetState)
	g.PUT("/state", auth, h.PutState)
	g.GET("/models/:id", h.GetModel)
	g.PUT("/models/:id", auth, h.PutModel)
	g.POST("/models/:id/artifact", auth, h.UploadArtifact)
	g.GET("/models/:id/artifact", h.ArtifactURL)
	g.GET("/models/:id/artifact/download", h.DownloadArtifact)
	g.POST("/anomalies", auth, h.PostAnomaly)
	g.POST("/healing-actions", auth, h.PostHealingAction)
	g.POST("/metrics-report", auth, h.PostMetricsReport)
}

func (h *StateHandler) gatewayReady(c *gin.Context) bool {
	if !h.gw.Initialized() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "state gateway not initialized"})
		return false
	}
	return true
}

// GetState returns the current trading state document.
func (h *StateHandler) GetState(c *gin.Context) {
	if !h.gatewayReady(c) {
		return
	}
	st := h.gw.LoadState(c.Request.Context())
	if st == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// PutState merges the request body into the current state and appends a
// history snapshot.
func (h *StateHandler) PutState(c *gin.Context) {
	if !h.gatewayReady(c) {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.gw.SaveState(c.Request.Context(), body) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "state save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "fields": len(body)})
}

func (h *StateHandler) GetModel(c *gin.Context) {
	if !h.gatewayReady(c) {
		return
	}
	meta := h.gw.ModelMetadata(c.Request.Context(), c.Param("id"))
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *StateHandler) PutModel(c *gin.Context) {
	if !h.gatewayReady(c) {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.gw.SaveModelMetadata(c.Request.Context(), c.Param("id"), body) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "model metadata save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "model": c.Param("id")})
}

// UploadArtifact streams the request body to object storage and records the
// artifact key on the model document.
func (h *StateHandler) UploadArtifact(c *gin.Context) {
	if !h.gatewayReady(c) {
		return
	}
	if h.art == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "artifact storage not configured"})
		return
	}
	modelID := c.Param("id")
	key, err := h.art.Upload(c.Request.Context(), modelID, c.Request.Body, c.Request.ContentLength, c.ContentType())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "artifact upload failed"})
		return
	}
	if !h.gw.SaveModelMetadata(c.Request.Context(), modelID, map[string]any{"artifact_key": key}) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "artifact key record failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"model": modelID, "artifact_key": key})
}

// DownloadArtifact streams a model's stored weights back to the caller.
func (h *StateHandler) DownloadArtifact(c *gin.Context) {
	if h.art == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "artifact storage not configured"})
		return
	}
	obj, err := h.art.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not available"})
		return
	}
	defer obj.Close()
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, obj)
}

// ArtifactURL returns a presigned download URL for a model's weights.
func (h *StateHandler) ArtifactURL(c *gin.Context) {
	if h.art == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "artifact storage not configured"})
		return
	}
	u, err := h.art.PresignedURL(c.Request.Context(), c.Param("id"), 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

func (h *StateHandler) appendEntry(c *gin.Context, record func(map[string]any) bool) {
	if !h.gatewayReady(c) {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !record(body) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "append failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"logged": true})
}

func (h *StateHandler) PostAnomaly(c *gin.Context) {
	h.appendEntry(c, func(body map[string]any) bool {
		return h.gw.LogAnomaly(c.Request.Context(), body)
	})
}

func (h *StateHandler) PostHealingAction(c *gin.Context) {
	h.appendEntry(c, func(body map[string]any) bool {
		return h.gw.LogHealingAction(c.Request.Context(), body)
	})
}

func (h *StateHandler) PostMetricsReport(c *gin.Context) {
	h.appendEntry(c, func(body map[string]any) bool {
		return h.gw.RecordPerformanceMetrics(c.Request.Context(), body)
	})
}
