package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/uvstore/storefront/pkg/errors"
)

// upstreamErrorBody is the error shape returned by the storefront APIs.
// Some endpoints return {"message": "..."} while newer ones return
// {"error": {"code": ..., "message": ...}}; both are tolerated.
type upstreamErrorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError that preserves the upstream error semantics. The response
// body is fully consumed and closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	message := ""
	var body upstreamErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil {
		if body.Error != nil {
			message = body.Error.Message
		} else {
			message = body.Message
		}
	}
	if message == "" {
		message = string(bodyBytes)
	}

	return mapUpstreamError(resp.StatusCode, message, upstream)
}

func mapUpstreamError(status int, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status >= 500:
		return apperrors.Remote(upstream, fmt.Errorf("status %d: %s", status, message))
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualified,
			Status:  status,
			Err:     apperrors.ErrRemote,
		}
	}
}
