package instance

import (
	"os"

	"github.com/aquaforma/poolquote-backend/pkg/env"
)

const envInstanceID = "POOLQUOTE_INSTANCE_ID"

// GetID identifies this process in lock ownership and logs. DYNO and the hostname are fallbacks.
func GetID() string {
	if id, ok := env.First(envInstanceID, "DYNO"); ok {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
