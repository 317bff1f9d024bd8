package option

import (
	"time"

	"github.com/anchore/clio"
	"github.com/anchore/spawnguard/host"
)

type Simulate struct {
	// TickInterval is the time between host scheduling passes
	TickInterval time.Duration `json:"tick-interval" yaml:"tick-interval" mapstructure:"tick-interval"`
	// Checksum is the expected sha256 of a world file fetched over http(s)
	Checksum string `json:"checksum" yaml:"checksum" mapstructure:"checksum"`
}

func DefaultSimulate() Simulate {
	return Simulate{
		TickInterval: host.DefaultTickInterval,
	}
}

func (o *Simulate) AddFlags(flags clio.FlagSet) {
	flags.StringVarP(&o.Checksum, "checksum", "", "expected sha256 digest (hex, optionally prefixed with sha256:) of a world file downloaded from a URL")
}

func (o Simulate) LoopConfig() host.LoopConfig {
	return host.LoopConfig{
		TickInterval:  o.TickInterval,
		DrainOnUnload: true,
	}
}
