package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anchore/clio"
	"github.com/anchore/spawnguard/cmd/spawnguard/cli/internal"
	"github.com/anchore/spawnguard/cmd/spawnguard/cli/option"
	"github.com/anchore/spawnguard/internal/input"
	"github.com/anchore/spawnguard/internal/log"
	"github.com/anchore/spawnguard/spawnguard"
)

type CheckConfig struct {
	option.Filter `json:"" yaml:",inline" mapstructure:",squash"`
	option.Output `json:"" yaml:",inline" mapstructure:",squash"`
	FailOnReject  bool `json:"fail-on-reject" yaml:"fail-on-reject" mapstructure:"fail-on-reject"`
}

func (c *CheckConfig) AddFlags(flags clio.FlagSet) {
	flags.BoolVarP(&c.FailOnReject, "fail-on-reject", "", "exit non-zero when any object is rejected")
}

var errRejected = fmt.Errorf("one or more objects were rejected")

// Check creates the check command
func Check(app clio.Application) *cobra.Command {
	cfg := &CheckConfig{
		Filter: option.DefaultFilter(),
		Output: option.DefaultOutput(),
	}

	return app.SetupCommand(&cobra.Command{
		Use:   "check [SHORT-NAME[:TYPE]...]",
		Short: "Evaluate object identities against the policy",
		Long: `Evaluate object identities against the configured policy without touching a world.

Each identity is a short name optionally followed by ":" and the runtime type name; an identity
starting with ":" has no short name. Identities are also read one per line from stdin when piped.`,
		Example: `  spawnguard check --mode deny --deny chicken chicken.small:Chicken wolf:Wolf
  echo ":AutoTurret_Friendly" | spawnguard check -m deny-exception -d turret -e autoturret_friendly`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stdin io.Reader
			if isStdin, _ := input.IsStdinPipeOrRedirect(); isStdin {
				stdin = os.Stdin
			}
			return runCheck(cfg, args, stdin, cmd.OutOrStdout())
		},
	}, cfg)
}

func runCheck(cfg *CheckConfig, args []string, stdin io.Reader, out io.Writer) error {
	ids := make([]spawnguard.Identity, 0, len(args))
	for _, arg := range args {
		ids = append(ids, ParseIdentity(arg))
	}

	if stdin != nil {
		fromStdin, err := readIdentities(stdin)
		if err != nil {
			return err
		}
		ids = append(ids, fromStdin...)
	}

	if len(ids) == 0 {
		return fmt.Errorf("no identities given, pass them as arguments or on stdin")
	}

	rules := cfg.RuleSet()
	log.Debugf("evaluating %d identities against %s", len(ids), rules)

	results := make([]internal.CheckResult, 0, len(ids))
	rejected := false
	for _, id := range ids {
		r := internal.NewCheckResult(id, spawnguard.Evaluate(id, rules))
		rejected = rejected || r.Rejected()
		results = append(results, r)
	}

	if cfg.Output.Is(option.JSON) {
		if err := internal.WriteJSON(out, results); err != nil {
			return err
		}
	} else {
		internal.WriteCheckTable(out, results)
	}

	if rejected && cfg.FailOnReject {
		return errRejected
	}
	return nil
}

// ParseIdentity parses SHORT-NAME[:TYPE]. Without a type the short name is also used as the type.
func ParseIdentity(s string) spawnguard.Identity {
	s = strings.TrimSpace(s)
	short, typ, found := strings.Cut(s, ":")
	if !found {
		return spawnguard.Identity{ShortName: s, TypeName: s}
	}
	return spawnguard.Identity{ShortName: strings.TrimSpace(short), TypeName: strings.TrimSpace(typ)}
}

func readIdentities(r io.Reader) ([]spawnguard.Identity, error) {
	var ids []spawnguard.Identity
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, ParseIdentity(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading identities from stdin: %w", err)
	}
	return ids, nil
}
