package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxContentLength    int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed submissions before they reach the handlers:
// wrong content type, or bodies past the configured size.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxContentLength == 0 {
		cfg.MaxContentLength = 1024 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" {
			allowed := false
			for _, allowedType := range cfg.AllowedContentTypes {
				if strings.Contains(contentType, allowedType) {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if len(c.Body()) > cfg.MaxContentLength {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Request body too large",
					zap.Int("size", len(c.Body())),
					zap.String("path", c.Path()),
				)
			}
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Request body too large",
			})
		}

		return c.Next()
	}
}
