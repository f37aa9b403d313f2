package appenv

import (
	"os"
	"strings"
)

// Env represents the application runtime environment.
type Env string

const (
	Production Env = "production"
	Test       Env = "test"
)

// Current returns the effective runtime environment from APP_ENV. Unknown or
// empty values default to Production.
func Current() Env {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))) {
	case string(Test):
		return Test
	default:
		return Production
	}
}

func IsProduction() bool { return Current() == Production }
func IsTest() bool       { return Current() == Test }
