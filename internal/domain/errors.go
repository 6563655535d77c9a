package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned whenever the provider credential is absent.
var ErrMissingAPIKey = &ConfigError{Message: "API key is not configured on the server."}

// StatusCoder is implemented by errors that know which HTTP status they map to.
type StatusCoder interface {
	HTTPStatus() int
}

// HTTPStatus returns the status carried by err, or 500 when err does not
// describe one.
func HTTPStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ValidationError reports missing or malformed user input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// ConfigError reports an operator-correctable server misconfiguration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string   { return e.Message }
func (e *ConfigError) HTTPStatus() int { return http.StatusInternalServerError }

// UpstreamError wraps a failed call to the provider or the relay.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error   { return e.Err }
func (e *UpstreamError) HTTPStatus() int { return http.StatusInternalServerError }

// GenerationFailedError is returned when the provider marks the job itself as failed.
type GenerationFailedError struct {
	Reason string
}

func (e *GenerationFailedError) Error() string {
	return "Video generation failed: " + e.Reason
}

func (e *GenerationFailedError) HTTPStatus() int { return http.StatusInternalServerError }

// MissingResultError is returned when a finished operation carries neither an
// error nor a video.
type MissingResultError struct{}

func (e *MissingResultError) Error() string {
	return "Video generation succeeded, but no download link was returned."
}

func (e *MissingResultError) HTTPStatus() int { return http.StatusInternalServerError }

// QuotaExceededError is raised client-side before any network call is made.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("You have reached your daily limit of %d videos. Please try again tomorrow.", e.Limit)
}

func (e *QuotaExceededError) HTTPStatus() int { return http.StatusTooManyRequests }
