package mirakl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Kind classifies a marketplace API failure. Every operation reports its
// failures through this one taxonomy so error messages stay consistent.
type Kind int

const (
	KindUnclassified Kind = iota
	KindAuth
	KindForbidden
	KindNotFound
	KindRateLimited
	KindBadRequest
	KindValidation
	KindServerFault
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "authentication failure"
	case KindForbidden:
		return "access denied"
	case KindNotFound:
		return "not found"
	case KindRateLimited:
		return "rate limited"
	case KindBadRequest:
		return "bad request"
	case KindValidation:
		return "validation error"
	case KindServerFault:
		return "server fault"
	default:
		return "unclassified error"
	}
}

// APIError is the error surfaced for any failed marketplace call. The
// remote's own message is carried verbatim when it sent one.
type APIError struct {
	Kind       Kind
	StatusCode int
	Operation  string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Operation, e.Kind, e.Message)
	}

	return fmt.Sprintf("%s: %s (status %d)", e.Operation, e.Kind, e.StatusCode)
}

// Retryable reports whether the failure class is worth another attempt.
// Only rate limiting and remote server faults are.
func (e *APIError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindServerFault
}

type apiErrorBody struct {
	Message string `json:"message"`
}

// classify maps a non-2xx marketplace response onto the error taxonomy.
func classify(op string, resp *resty.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Operation:  op,
	}

	var body apiErrorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Message = body.Message
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized:
		apiErr.Kind = KindAuth
	case code == http.StatusForbidden:
		apiErr.Kind = KindForbidden
	case code == http.StatusNotFound:
		apiErr.Kind = KindNotFound
	case code == http.StatusTooManyRequests:
		apiErr.Kind = KindRateLimited
		apiErr.RetryAfter = retryAfterHint(resp)
	case code == http.StatusBadRequest:
		apiErr.Kind = KindBadRequest
	case code == http.StatusUnprocessableEntity:
		apiErr.Kind = KindValidation
	case code >= http.StatusInternalServerError:
		apiErr.Kind = KindServerFault
	default:
		apiErr.Kind = KindUnclassified
	}

	return apiErr
}

// retryAfterHint reads the server-supplied Retry-After header, interpreted
// as whole seconds. Zero means no usable hint.
func retryAfterHint(resp *resty.Response) time.Duration {
	seconds, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// decode unmarshals a successful response body. A malformed body is a
// non-retryable unclassified failure rather than a propagated half-parsed
// value.
func decode(op string, resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return &APIError{
			Kind:       KindUnclassified,
			StatusCode: resp.StatusCode(),
			Operation:  op,
			Message:    "malformed response: " + err.Error(),
		}
	}

	return nil
}
