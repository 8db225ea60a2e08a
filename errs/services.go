package errs

import "errors"

// Notification & Configuration Errors
var (
	ErrMailNotConfigured = errors.New("mail transport not configured")
	ErrMailDelivery      = errors.New("mail delivery failed")
	ErrUnknownTemplate   = errors.New("unknown notification template")
	ErrConfigInvalid     = errors.New("configuration invalid")
)
