package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wagoodman/go-partybus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/anchore/clio"
	"github.com/anchore/spawnguard/cmd/spawnguard/cli/internal"
	"github.com/anchore/spawnguard/cmd/spawnguard/cli/option"
	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/host"
	"github.com/anchore/spawnguard/internal/bus"
	"github.com/anchore/spawnguard/internal/input"
	"github.com/anchore/spawnguard/internal/log"
	"github.com/anchore/spawnguard/spawnguard"
)

type SimulateConfig struct {
	option.Filter   `json:"" yaml:",inline" mapstructure:",squash"`
	option.Simulate `json:"" yaml:",inline" mapstructure:",squash"`
	option.Output   `json:"" yaml:",inline" mapstructure:",squash"`
}

// Simulate creates the simulate command
func Simulate(app clio.Application) *cobra.Command {
	cfg := &SimulateConfig{
		Filter:   option.DefaultFilter(),
		Simulate: option.DefaultSimulate(),
		Output:   option.DefaultOutput(),
	}

	return app.SetupCommand(&cobra.Command{
		Use:   "simulate WORLD-FILE",
		Short: "Run the filter against a simulated world",
		Long: `Load a world description, run the filter inside a simulated host and report which entities
were destroyed and which were kept.

The world file lists entities that exist before the host is ready ("existing") and entities
created afterwards ("spawns"). Use "-" to read it from stdin; http(s) URLs are downloaded.`,
		Example: `  spawnguard simulate world.yaml --clean-up-on-startup -m deny -d chicken
  cat world.yaml | spawnguard simulate - -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) > 0 {
				src = args[0]
			}
			return runSimulate(cmd.Context(), cfg, src, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}, cfg)
}

// runSimulate writes the report to out and the progress of startup sweeps to progressOut.
func runSimulate(ctx context.Context, cfg *SimulateConfig, src string, out, progressOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if src == "-" {
		if isStdin, _ := input.IsStdinPipeOrRedirect(); !isStdin {
			return fmt.Errorf("no world file given and nothing piped on stdin")
		}
	}

	reader, err := input.GetReader(ctx, src, cfg.Checksum)
	if err != nil {
		return err
	}
	wf, err := host.ReadWorldFile(reader)
	_ = reader.Close()
	if err != nil {
		return err
	}

	rejections := internal.NewRejectionRecorder()
	display := internal.NewProgressDisplay(progressOut, isTerminal(progressOut))
	detachRecorder := bus.Attach(rejections)
	detachDisplay := bus.Attach(display)

	filterCfg := cfg.FilterConfig()
	world, err := simulateWorld(ctx, filterCfg, cfg.LoopConfig(), wf)

	detachDisplay()
	detachRecorder()
	// unloading the filter cancels any running sweep, so every displayed task is finished here
	display.Wait()
	if err != nil {
		return err
	}

	rep := internal.NewSimulationReport(filterCfg, world, rejections)
	if cfg.Output.Is(option.JSON) {
		return internal.WriteJSON(out, rep)
	}
	internal.WriteSimulationTable(out, rep)
	return nil
}

// simulateWorld plays the world file through a host loop: the existing entities are present when
// the host becomes ready, the spawns are created afterwards, then the filter is unloaded.
func simulateWorld(ctx context.Context, cfg spawnguard.Config, loopCfg host.LoopConfig, wf *host.WorldFile) (*host.World, error) {
	hostBus := partybus.NewBus()
	sub := hostBus.Subscribe(event.HostEvents...)
	defer func() { _ = sub.Unsubscribe() }()

	world := host.NewWorld(hostBus)
	wf.Populate(world)

	filter := spawnguard.NewFilter(cfg, world)
	loop := host.NewLoop(filter, sub.Events(), loopCfg)

	log.WithFields("existing", len(wf.Existing), "spawns", len(wf.Spawns)).Debugf("simulating with %s", cfg.Rules)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(ctx)
	})
	g.Go(func() error {
		world.Ready()

		// spawns must not be part of the startup sweep snapshot
		select {
		case <-loop.Ready():
		case <-ctx.Done():
			return ctx.Err()
		}

		wf.SpawnAll(world)
		world.Unload()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	return world, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
