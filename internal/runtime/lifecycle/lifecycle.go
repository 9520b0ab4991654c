// Package lifecycle holds small lifecycle-related types shared by the app and
// its services.
package lifecycle

// StopReason records why the app (or a service) is being stopped. It is only
// used for logging and shutdown diagnostics.
type StopReason string

const (
	StopUnknown    StopReason = "unknown"
	StopSIGINT     StopReason = "sigint"
	StopSIGTERM    StopReason = "sigterm"
	StopFatalError StopReason = "fatal_error"
	StopAppStop    StopReason = "app_stop"
)
