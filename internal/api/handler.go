package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mounirl1/replystack-sub000/internal/browser"
	"github.com/mounirl1/replystack-sub000/internal/extractor"
	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/internal/orchestrator"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

const extractTimeout = 90 * time.Second

// Handler exposes the daemon's internal control surface: health, status,
// on-demand extraction, manual auto-extraction runs and credential handoff.
type Handler struct {
	host     browser.TabHost
	orch     *orchestrator.Orchestrator
	kv       kvstore.Store
	registry *extractor.Registry
	token    string
}

func New(host browser.TabHost, orch *orchestrator.Orchestrator, kv kvstore.Store, registry *extractor.Registry, token string) *Handler {
	return &Handler{
		host:     host,
		orch:     orch,
		kv:       kv,
		registry: registry,
		token:    token,
	}
}

func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/health", h.handleHealth)

	api := app.Group("/api", h.requireToken)
	api.Get("/status", h.handleStatus)
	api.Post("/extract", h.handleExtract)
	api.Post("/auto-extract/run", h.handleAutoExtractRun)
	api.Post("/auth/token", h.handleSetToken)
}

// requireToken guards everything under /api. An empty configured token
// disables the check, which only makes sense for local development.
func (h *Handler) requireToken(c *fiber.Ctx) error {
	if h.token == "" {
		return c.Next()
	}
	if c.Get("Authorization") != "Bearer "+h.token {
		return c.Status(401).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Next()
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"browser": browser.IsInitialized(),
	})
}

func (h *Handler) handleStatus(c *fiber.Ctx) error {
	ctx := c.Context()

	var token string
	authenticated, _ := h.kv.Get(ctx, kvstore.KeyToken, &token)

	var profile models.UserProfile
	h.kv.Get(ctx, kvstore.KeyUser, &profile)

	var cached []models.CachedLocation
	h.kv.Get(ctx, kvstore.KeyLocations, &cached)

	summary, lastRun := h.orch.LastSummary()
	status := fiber.Map{
		"browser":       browser.IsInitialized(),
		"authenticated": authenticated && token != "",
		"plan":          profile.Plan,
		"locations":     len(cached),
		"last_run":      summary,
	}
	if !lastRun.IsZero() {
		status["last_run_at"] = lastRun
	}
	return c.JSON(status)
}

type ExtractRequest struct {
	URL string `json:"url"`
}

type ExtractResponse struct {
	URL           string            `json:"url"`
	Platform      models.Platform   `json:"platform"`
	Result        models.SyncResult `json:"result"`
	ExtractTimeMs int64             `json:"extract_time_ms"`
}

// handleExtract opens a background tab on the given page, runs one
// extraction cycle and closes the tab again.
func (h *Handler) handleExtract(c *fiber.Ctx) error {
	log := logger.Log

	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.Status(400).JSON(fiber.Map{"error": "url is required"})
	}

	platform := h.registry.DetectPlatform(req.URL)
	if platform == "" {
		return c.Status(422).JSON(fiber.Map{"error": "no extractor for this page", "url": req.URL})
	}

	log.Info().Str("url", req.URL).Str("platform", string(platform)).Msg("extract request received")

	ctx, cancel := context.WithTimeout(c.Context(), extractTimeout)
	defer cancel()

	start := time.Now()
	tab, err := h.host.OpenBackground(ctx, req.URL)
	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("open tab failed")
		return c.Status(500).JSON(fiber.Map{"error": err.Error(), "url": req.URL})
	}
	defer tab.Close()

	reply, err := tab.Extract(ctx, models.ExtractionRequest{
		Type:     models.MsgRequestExtraction,
		Platform: platform,
	})
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("extract failed")
		return c.Status(500).JSON(fiber.Map{
			"error":           err.Error(),
			"url":             req.URL,
			"extract_time_ms": elapsed.Milliseconds(),
		})
	}

	if reply.Gated {
		return c.Status(409).JSON(fiber.Map{"error": "not authenticated or location unknown", "url": req.URL})
	}

	log.Info().
		Str("url", req.URL).
		Int("created", reply.Result.Created).
		Int("updated", reply.Result.Updated).
		Int64("time_ms", elapsed.Milliseconds()).
		Msg("extract completed")

	return c.JSON(ExtractResponse{
		URL:           req.URL,
		Platform:      platform,
		Result:        reply.Result,
		ExtractTimeMs: elapsed.Milliseconds(),
	})
}

// handleAutoExtractRun kicks off a full pass without waiting for the
// scheduler. The pass runs in the background; the orchestrator itself
// rejects overlapping runs.
func (h *Handler) handleAutoExtractRun(c *fiber.Ctx) error {
	go func() {
		if _, err := h.orch.Run(context.Background()); err != nil {
			logger.Log.Error().Err(err).Msg("manual auto-extraction pass failed")
		}
	}()
	return c.Status(202).JSON(fiber.Map{"started": true})
}

type tokenRequest struct {
	Token string `json:"token"`
}

// handleSetToken receives the backend credential handed off after login.
func (h *Handler) handleSetToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Token == "" {
		if err := h.kv.Clear(c.Context(), kvstore.KeyToken); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		logger.Log.Info().Msg("credential cleared")
		return c.JSON(fiber.Map{"authenticated": false})
	}

	if err := h.kv.Set(c.Context(), kvstore.KeyToken, req.Token); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	logger.Log.Info().Msg("credential stored")
	return c.JSON(fiber.Map{"authenticated": true})
}
