package finance

import (
	"os"
	"strings"
)

// Credential variable names.
const (
	EnvGoldAPIKey = "GOLDAPI_API_KEY"
	EnvFMPKey     = "FMP_API_KEY"
	EnvRapidAPI   = "RAPIDAPI_KEY"
)

// Credentials resolves provider secrets by variable name. Lookups happen on every
// call so a rotated key takes effect without a restart.
type Credentials interface {
	Lookup(name string) (string, bool)
}

// EnvCredentials reads the process environment.
type EnvCredentials struct{}

func (EnvCredentials) Lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// StaticCredentials is a fixed credential set.
type StaticCredentials map[string]string

func (s StaticCredentials) Lookup(name string) (string, bool) {
	v, ok := s[name]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
