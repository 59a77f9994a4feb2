package config

import (
	"github.com/caarlos0/env/v11"
)

// envPrefix namespaces every variable read by parseEnv, e.g.
// CHARKEEPER_DATA_DIR.
const envPrefix = "CHARKEEPER_"

// parseEnv overlays Config with CHARKEEPER_* environment variables. Unset
// variables leave the current value untouched. Panics on malformed values,
// matching the JSON and flag loaders.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
