package cli

import (
	"github.com/anchore/clio"
	"github.com/anchore/spawnguard/cmd/spawnguard/cli/command"
	"github.com/anchore/spawnguard/internal/bus"
	"github.com/anchore/spawnguard/internal/log"
)

// Application constructs the spawnguard CLI application
func Application(id clio.Identification) clio.Application {
	app := clio.New(*SetupConfig(id))

	root := command.Root(app)
	root.AddCommand(
		command.Check(app),
		command.Simulate(app),
		command.Config(),
		clio.VersionCommand(id),
	)

	return app
}

// SetupConfig is the shared clio setup: the global config file flag (.spawnguard.yaml), logging
// flags, and the process-wide bus and logger handed to the internal facades.
func SetupConfig(id clio.Identification) *clio.SetupConfig {
	return clio.NewSetupConfig(id).
		WithGlobalConfigFlag().
		WithGlobalLoggingFlags().
		WithConfigInRootHelp().
		WithInitializers(
			func(state *clio.State) error {
				bus.Set(state.Bus)
				log.Set(state.Logger)
				return nil
			},
		)
}
