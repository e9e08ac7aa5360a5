package view

import (
	"errors"
	"fmt"

	"assetmix/internal/assetapi"
	"assetmix/internal/log"
)

var (
	// ErrInvalidAsset wraps a local validation failure. No request is sent.
	ErrInvalidAsset = errors.New("invalid asset input")
	// ErrStale reports a response dropped because the view changed while it
	// was in flight.
	ErrStale = errors.New("stale response")
	// ErrUnknownView is returned by SwitchView for anything but the two panels.
	ErrUnknownView = errors.New("unknown view")
)

// User-facing alert texts.
const (
	MsgLoadAssetsFailed     = "Could not reach the asset service. Check the logs for details."
	MsgInvalidAsset         = "Please enter a valid name and amount."
	MsgSubmitFailed         = "Failed to add asset, please try again."
	MsgRecommendationFailed = "Failed to calculate the recommendation. Make sure you have added assets."
	MsgSaveFailed           = "Failed to save the configuration. Make sure the asset service is running."
	MsgSaveSucceeded        = "Configuration saved."
	MsgHistoryFailed        = "Failed to load history. Check the asset service."
)

// AlertError is an operation failure the user must be told about.
type AlertError struct {
	Op      string
	Message string
	Err     error
}

func (e *AlertError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *AlertError) Unwrap() error { return e.Err }

// AlertMessage returns the text to show for err, or "" when err carries none.
func AlertMessage(err error) string {
	var ae *AlertError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}

func errorType(err error) string {
	var se *assetapi.StatusError
	if errors.As(err, &se) {
		return log.ErrorTypeUpstream
	}
	return log.ErrorTypeNetwork
}
