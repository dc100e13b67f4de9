// Package config loads the mixer configuration and provides it, whole and
// by section, to the Fx graph.
package config

import (
	"go.uber.org/fx"
)

// Module provides *Config plus the sections consumed on their own.
var Module = fx.Module("config",
	fx.Provide(
		LoadConfig,
		func(c *Config) AdminConfig { return c.Admin },
		func(c *Config) SinkConfig { return c.Sink },
	),
)
