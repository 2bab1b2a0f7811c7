package translator

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/uilingo/uilingo/modelapi"
)

// Kind classifies a translation fault so callers can show the right
// remediation: reconfigure credentials, wait and retry, or request
// model access.
type Kind int

const (
	// KindConfiguration means the client setup or credentials are
	// unusable, or the service cannot be reached at all. Not retryable
	// without an external fix.
	KindConfiguration Kind = iota
	// KindModelNotFound means the service rejected the request as
	// invalid, typically an unsupported or unavailable model.
	KindModelNotFound
	// KindAccessDenied means authorization was denied.
	KindAccessDenied
	// KindRateLimited means the request was throttled. Transient:
	// callers should back off and retry.
	KindRateLimited
	// KindService is any other provider-side fault; Code carries the
	// provider's error code.
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindModelNotFound:
		return "ModelNotFound"
	case KindAccessDenied:
		return "AccessDenied"
	case KindRateLimited:
		return "RateLimited"
	case KindService:
		return "ServiceError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a classified translation fault. The original fault is always
// retained as the wrapped cause.
type Error struct {
	// Kind is the fault classification.
	Kind Kind
	// Code is the provider error code (KindService only).
	Code string
	// Model is the offending model identifier (KindModelNotFound only).
	Model string
	// Message is a human-readable, actionable description.
	Message string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// configError wraps a construction-time failure (unusable credentials
// or client setup).
func configError(message string, cause error) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: message,
		cause:   cause,
	}
}

// classify maps a fault from the remote call into the error taxonomy,
// most specific category first. The original error is kept as the cause.
func classify(err error, model string) *Error {
	var apiErr *modelapi.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 400, 404:
			return &Error{
				Kind:    KindModelNotFound,
				Model:   model,
				Message: fmt.Sprintf("model %q was rejected by the service; check that the model is available in your account and region", model),
				cause:   err,
			}
		case 401, 403:
			return &Error{
				Kind:    KindAccessDenied,
				Message: "the model service denied access; check your API key and its permissions",
				cause:   err,
			}
		case 429:
			return &Error{
				Kind:    KindRateLimited,
				Message: "the model service throttled the request; wait before retrying",
				cause:   err,
			}
		case 503:
			return &Error{
				Kind:    KindService,
				Code:    "ServiceUnavailable",
				Message: "the model service is temporarily unavailable; retry later",
				cause:   err,
			}
		case 500:
			return &Error{
				Kind:    KindService,
				Code:    "InternalServerError",
				Message: "the model service reported an internal fault; retry later",
				cause:   err,
			}
		}
		code := apiErr.Code
		if code == "" {
			code = "UnknownError"
		}
		return &Error{
			Kind:    KindService,
			Code:    code,
			Message: fmt.Sprintf("the model service reported a fault (%s)", code),
			cause:   err,
		}
	}

	// Local transport or client configuration fault: the request never
	// produced a service-level answer.
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &Error{
			Kind:    KindConfiguration,
			Message: "cannot reach the model service; check the endpoint, proxy, and network settings",
			cause:   err,
		}
	}

	return &Error{
		Kind:    KindService,
		Code:    "UnknownError",
		Message: "the translation request failed unexpectedly",
		cause:   err,
	}
}
