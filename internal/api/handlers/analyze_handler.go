package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/intake"
	"github.com/veriscan/backend/internal/metrics"
	"github.com/veriscan/backend/internal/resolver"
	"github.com/veriscan/backend/pkg/logger"
)

type AnalyzeHandler struct {
	queue    *intake.Queue
	resolver *resolver.Resolver
}

func NewAnalyzeHandler(queue *intake.Queue, res *resolver.Resolver) *AnalyzeHandler {
	return &AnalyzeHandler{
		queue:    queue,
		resolver: res,
	}
}

// HandleAnalyze accepts a claim text or article URL, resolves it to
// analyzable content and admits it to the verification queue. The verdict is
// produced asynchronously and read back via the history endpoints.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req struct {
		ArticleText string `json:"article_text"`
		ArticleURL  string `json:"article_url"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	rawText := strings.TrimSpace(req.ArticleText)
	rawURL := strings.TrimSpace(req.ArticleURL)

	var content, originalURL string
	switch {
	case rawURL != "":
		originalURL = resolver.NormalizeURL(rawURL)
	case resolver.LooksLikeURL(rawText):
		// A URL pasted into the text field is handled as a URL.
		originalURL = resolver.NormalizeURL(rawText)
	case rawText != "":
		content = rawText
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No text or URL provided",
		})
	}

	if originalURL != "" {
		resolved, err := h.resolver.ResolveURL(c.Context(), originalURL)
		if err != nil {
			logger.Warn("Content resolution failed", zap.String("url", originalURL), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to extract URL content",
			})
		}
		content = resolved.Text
	}

	receipt, err := h.queue.Submit(content, originalURL)
	if err != nil {
		if errors.Is(err, intake.ErrInvalidInput) {
			metrics.JobsSubmitted.WithLabelValues("rejected").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Analysis text missing",
			})
		}
		logger.Error("Failed to queue job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue analysis",
		})
	}

	metrics.JobsSubmitted.WithLabelValues(string(receipt.Status)).Inc()

	message := "Analysis queued."
	if receipt.Status == intake.StatusRequeued {
		message = "Re-analysis queued."
	}

	return c.JSON(fiber.Map{
		"status":        receipt.Status,
		"content_hash":  receipt.ContentHash,
		"analyzed_text": content,
		"message":       message,
	})
}
