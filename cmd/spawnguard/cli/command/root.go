package command

import (
	"github.com/spf13/cobra"

	"github.com/anchore/clio"
)

// Root creates the root command; it only prints help
func Root(app clio.Application) *cobra.Command {
	return app.SetupRootCommand(&cobra.Command{
		Use:   "spawnguard",
		Short: "An entity admission filter for simulation hosts",
		Long: `spawnguard decides, by keyword matching against an object's short name and type, whether newly
created world objects may exist, and can sweep already existing objects once the host is ready.

Policies are configured in .spawnguard.yaml (see "spawnguard config") or with flags.`,
		Args: cobra.NoArgs,
	})
}
