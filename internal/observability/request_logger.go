package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	apperrors "github.com/movementpass/public-api/pkg/util"
)

// UnmatchedRoute labels requests that matched no registered route.
const UnmatchedRoute = "unmatched"

// RequestLogger logs every request and feeds the HTTP metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.ToDomainError(err).HTTPStatus
		}

		metrics.RecordRequest(RouteLabel(c, err), utils.CopyString(c.Method()), status, elapsed)
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

// RouteLabel names the registered route template that served c, or
// UnmatchedRoute when routing failed. The result never aliases fiber's
// request buffers, so it is safe to keep as a metric label.
func RouteLabel(c *fiber.Ctx, err error) string {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && (fiberErr.Code == http.StatusNotFound || fiberErr.Code == http.StatusMethodNotAllowed) {
		return UnmatchedRoute
	}
	r := c.Route()
	if r == nil || r.Path == "" {
		return UnmatchedRoute
	}
	return utils.CopyString(r.Path)
}
