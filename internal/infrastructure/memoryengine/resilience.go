package memoryengine

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/infrastructure/resilience"
)

func classifyEngineError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{
				Retryable:     true,
				RecordFailure: true,
			}
		}
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

// wrapEngineError translates a transport failure into the service error
// taxonomy while keeping the engine's own message reachable via Unwrap.
func (c *Client) wrapEngineError(operation, index string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) ||
		domain.IsKind(err, domain.ErrDocumentNotFound) ||
		domain.IsKind(err, domain.ErrIndexConfig) ||
		domain.IsKind(err, domain.ErrCapacity) {
		return err
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		body := strings.ToLower(statusErr.Body)
		switch {
		case isIndexConfigFailure(statusErr.StatusCode, body):
			c.logger.Error("memory engine rejected index configuration",
				"operation", operation,
				"index", index,
				"status", statusErr.Status,
				"engine_message", strings.TrimSpace(statusErr.Body))
			return domain.WrapError(domain.ErrIndexConfig, operation, err)
		case isCapacityFailure(statusErr.StatusCode, body):
			c.logger.Error("memory engine rejected oversized partition batch, reduce partition size or switch the embedding backend",
				"operation", operation,
				"index", index,
				"status", statusErr.Status,
				"engine_message", strings.TrimSpace(statusErr.Body))
			return domain.WrapError(domain.ErrCapacity, operation, err)
		}
	}

	class := classifyEngineError(err)
	if class.Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return domain.WrapError(domain.ErrEngine, operation, err)
}

func isIndexConfigFailure(statusCode int, body string) bool {
	if statusCode != http.StatusBadRequest && statusCode != http.StatusUnprocessableEntity {
		return false
	}
	return strings.Contains(body, "index")
}

func isCapacityFailure(statusCode int, body string) bool {
	if statusCode == http.StatusRequestEntityTooLarge {
		return true
	}
	if statusCode != http.StatusBadRequest && statusCode != http.StatusUnprocessableEntity {
		return false
	}
	return strings.Contains(body, "batch") || strings.Contains(body, "too large") || strings.Contains(body, "too many")
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
