package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rawblock/seedfinder/internal/ingest"
	"github.com/rawblock/seedfinder/internal/search"
	"github.com/rawblock/seedfinder/internal/store"
	"github.com/rawblock/seedfinder/pkg/models"
)

// maxObservations caps a single job's observation set to prevent a
// runaway filter-tree build from an unbounded request body.
const maxObservations = 10_000

// maxThreads caps the worker count a client may request for one job.
const maxThreads = 256

// job is the in-memory record of one running or finished search,
// independent of the durable row store.Store persists on completion.
type job struct {
	mu       sync.Mutex
	id       string
	status   models.JobStatus
	mode     models.CrackerMode
	output   models.OutputMode
	estimate uint64
	swept    uint64
	results  []uint64
	errMsg   string
	cancel   context.CancelFunc
}

func (j *job) snapshot() models.Job {
	j.mu.Lock()
	defer j.mu.Unlock()
	return models.Job{
		ID:       j.id,
		Status:   j.status,
		Mode:     j.mode,
		Output:   j.output,
		Estimate: j.estimate,
		Swept:    j.swept,
		Error:    j.errMsg,
	}
}

type APIHandler struct {
	store *store.Store
	hub   *Hub

	mu   sync.Mutex
	jobs map[string]*job
}

func SetupRouter(dbStore *store.Store, hub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		store: dbStore,
		hub:   hub,
		jobs:  make(map[string]*job),
	}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", hub.Subscribe)
		pub.GET("/jobs/:id/estimate", handler.handleEstimate)
	}

	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	auth.Use(NewRateLimiter(30, 5).Middleware())
	{
		auth.POST("/jobs", handler.handleSubmitJob)
		auth.GET("/jobs/:id", handler.handleJobStatus)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "operational",
		"storeConnected": h.store != nil,
	})
}

type submitJobRequest struct {
	Observations []struct {
		X    int32  `json:"x"`
		Y    int32  `json:"y"`
		Z    int32  `json:"z"`
		Kind string `json:"kind"`
	} `json:"observations"`
	Output  string `json:"output"`
	Mode    string `json:"mode"`
	Threads int    `json:"threads"`
}

// parseMode maps the request's "mode" field to a CrackerMode, defaulting
// to ModeNormal for anything other than a case-insensitive "paper1.18"
// match.
func parseMode(s string) models.CrackerMode {
	if strings.EqualFold(s, "paper1.18") {
		return models.ModePaper1_18
	}
	return models.ModeNormal
}

// handleSubmitJob validates and spawns a search job in the background,
// returning immediately with a job ID the client polls or listens for
// over the WebSocket stream.
func (h *APIHandler) handleSubmitJob(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Observations) == 0 || len(req.Observations) > maxObservations {
		c.JSON(http.StatusBadRequest, gin.H{"error": "observations must be between 1 and 10000"})
		return
	}

	observations := make([]models.Observation, 0, len(req.Observations))
	for _, o := range req.Observations {
		kind := models.Other
		if strings.EqualFold(o.Kind, "bedrock") {
			kind = models.Bedrock
		}
		observations = append(observations, models.Observation{X: o.X, Y: o.Y, Z: o.Z, Kind: kind})
	}

	mode := parseMode(req.Mode)
	observations, validationErrs := ingest.ValidateForMode(observations, mode)
	if len(observations) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no observations survived mode validation", "details": errStrings(validationErrs)})
		return
	}

	output := models.OutputWorldSeed
	if strings.EqualFold(req.Output, "structure") {
		output = models.OutputStructureSeed
	}

	threads := req.Threads
	if threads <= 0 || threads > maxThreads {
		threads = 8
	}

	id := uuid.New().String()
	j := &job{
		id:       id,
		status:   models.JobQueued,
		mode:     mode,
		output:   output,
		estimate: search.EstimateResults(observations),
	}

	h.mu.Lock()
	h.jobs[id] = j
	h.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	j.mu.Lock()
	j.cancel = cancel
	j.mu.Unlock()

	go h.runJob(ctx, j, observations, threads)

	c.JSON(http.StatusAccepted, gin.H{
		"id":          id,
		"estimate":    j.estimate,
		"diagnostics": errStrings(validationErrs),
	})
}

func errStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func (h *APIHandler) runJob(ctx context.Context, j *job, observations []models.Observation, threads int) {
	j.mu.Lock()
	j.status = models.JobRunning
	j.mu.Unlock()

	events := make(chan models.ProgressEvent, 64)
	done := make(chan struct{})
	var found []models.SeedResult
	go func() {
		defer close(done)
		for ev := range events {
			h.hub.BroadcastEvent(j.id, ev)
			j.mu.Lock()
			switch ev.Kind {
			case models.ProgressSwept:
				j.swept += ev.Count
			case models.ProgressSeedFound:
				j.results = append(j.results, ev.Seed)
			}
			j.mu.Unlock()
			if ev.Kind == models.ProgressSeedFound {
				found = append(found, models.SeedResult{
					JobID: j.id, Seed: ev.Seed, FoundAt: time.Now(),
				})
			}
		}
	}()

	j.mu.Lock()
	mode := j.mode
	output := j.output
	j.mu.Unlock()

	err := search.Search(ctx, observations, threads, mode, output, events)
	close(events)
	<-done

	j.mu.Lock()
	if err != nil {
		j.status = models.JobFailed
		j.errMsg = err.Error()
	} else {
		j.status = models.JobDone
	}
	j.mu.Unlock()
	snapshot := j.snapshot()

	if h.store != nil {
		now := time.Now()
		snapshot.ObservationCount = len(observations)
		snapshot.CreatedAt = now
		snapshot.UpdatedAt = now
		_ = h.store.SaveJob(context.Background(), snapshot)
		for _, r := range found {
			_ = h.store.SaveSeedResult(context.Background(), r)
		}
	}
}

func (h *APIHandler) lookup(id string) (*job, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	j, ok := h.jobs[id]
	return j, ok
}

func (h *APIHandler) handleJobStatus(c *gin.Context) {
	j, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"id":       j.id,
		"status":   j.status,
		"estimate": j.estimate,
		"swept":    j.swept,
		"results":  j.results,
		"error":    j.errMsg,
	})
}

// handleEstimate returns the cached pre-search estimate computed at
// submission time, without re-running the filter-power calculation.
func (h *APIHandler) handleEstimate(c *gin.Context) {
	j, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	j.mu.Lock()
	estimate := j.estimate
	j.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"id": j.id, "estimate": estimate})
}
