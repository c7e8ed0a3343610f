package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/veriscan/backend/internal/intake"
	"github.com/veriscan/backend/internal/storage/models"
	"github.com/veriscan/backend/internal/storage/sqlite"
	"github.com/veriscan/backend/pkg/logger"
)

type HistoryHandler struct {
	store *sqlite.Client
	queue *intake.Queue
}

func NewHistoryHandler(store *sqlite.Client, queue *intake.Queue) *HistoryHandler {
	return &HistoryHandler{
		store: store,
		queue: queue,
	}
}

func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	records, err := h.store.GetHistory()
	if err != nil {
		logger.Error("Failed to load history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	if records == nil {
		records = []models.AnalysisRecord{}
	}
	return c.JSON(records)
}

func (h *HistoryHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.store.GetStats()
	if err != nil {
		logger.Error("Failed to load stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load stats",
		})
	}

	return c.JSON(stats)
}

func (h *HistoryHandler) GetLatest(c *fiber.Ctx) error {
	rec, err := h.store.GetLatest()
	if err != nil {
		logger.Error("Failed to load latest result", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load latest result",
		})
	}

	if rec == nil {
		return c.JSON(fiber.Map{
			"status":  "empty",
			"message": "No results yet.",
		})
	}
	return c.JSON(rec)
}

// DeleteItem removes one record and unmarks its hash so the content can be
// analyzed fresh later.
func (h *HistoryHandler) DeleteItem(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	contentHash, err := h.store.DeleteRecord(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		logger.Error("Failed to delete record", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete item",
		})
	}

	h.queue.Forget(contentHash)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Item deleted.",
	})
}

// ClearHistory truncates all records and resets duplicate tracking.
func (h *HistoryHandler) ClearHistory(c *fiber.Ctx) error {
	if err := h.store.ClearHistory(); err != nil {
		logger.Error("Failed to clear history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear history",
		})
	}

	h.queue.Reset()

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "History cleared.",
	})
}
