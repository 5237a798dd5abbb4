package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrProfilesNotFound  = goerr.New("profiles file not found")
	ErrInvalidProfile    = goerr.New("invalid profile configuration")
	ErrDuplicateProfile  = goerr.New("duplicate profile name")
	ErrInvalidLogLevel   = goerr.New("invalid log level")
	ErrInvalidLogFormat  = goerr.New("invalid log format")
	ErrUnknownBusMode    = goerr.New("unknown bus mode")
	ErrPassphraseMissing = goerr.New("passphrase is required to unlock an encrypted profile")
)

// Context keys for error values
const (
	ProfilesPathKey = "profiles_path"
	ProfileNameKey  = "profile_name"
	BusModeKey      = "bus_mode"
)
