package option

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/anchore/clio"
	"github.com/anchore/spawnguard/internal/log"
	"github.com/anchore/spawnguard/spawnguard"
)

// CurrentConfigVersion is the configuration schema version written by this release.
//
// History:
//   - 1.0.x: deny list only
//   - 1.1.x: deny list with an exception list
//   - 1.2.x: explicit mode, allow list
const CurrentConfigVersion = "1.2.0"

type Filter struct {
	Version          string   `json:"version" yaml:"version" mapstructure:"version"`
	Mode             string   `json:"mode" yaml:"mode" mapstructure:"mode"`
	CleanUpOnStartup bool     `json:"clean-up-on-startup" yaml:"clean-up-on-startup" mapstructure:"clean-up-on-startup"`
	Deny             []string `json:"deny" yaml:"deny" mapstructure:"deny"`
	Allow            []string `json:"allow" yaml:"allow" mapstructure:"allow"`
	Exceptions       []string `json:"exceptions" yaml:"exceptions" mapstructure:"exceptions"`
}

func DefaultFilter() Filter {
	return Filter{
		Version:          CurrentConfigVersion,
		Mode:             string(spawnguard.DenyException),
		CleanUpOnStartup: false,
		Deny:             []string{},
		Allow:            []string{},
		Exceptions:       []string{},
	}
}

func (o *Filter) AddFlags(flags clio.FlagSet) {
	flags.StringVarP(&o.Mode, "mode", "m", fmt.Sprintf("policy shape to enforce %v", spawnguard.Modes))
	flags.BoolVarP(&o.CleanUpOnStartup, "clean-up-on-startup", "", "remove existing objects matching the policy once the host is ready")
	flags.StringArrayVarP(&o.Deny, "deny", "d", "keyword of objects to reject (repeatable)")
	flags.StringArrayVarP(&o.Allow, "allow", "a", "keyword of objects to permit when using the allow-deny mode (repeatable)")
	flags.StringArrayVarP(&o.Exceptions, "exception", "e", "keyword that overrides the deny list when using the deny-exception mode (repeatable)")
}

// PostLoad upgrades configuration written by older releases and validates the result.
func (o *Filter) PostLoad() error {
	o.Migrate()
	return o.Validate()
}

// Migrate upgrades configuration written by an older release in place to CurrentConfigVersion.
// Current, newer and unparsable versions are left untouched; Validate reports the latter.
func (o *Filter) Migrate() {
	from := o.Version
	if cmp, err := compareVersions(from, CurrentConfigVersion); err != nil || cmp >= 0 {
		return
	}

	log.Warnf("config changes detected, updating from version %q to %q", from, CurrentConfigVersion)

	if cmp, _ := compareVersions(from, "1.0.0"); cmp < 0 {
		// nothing from before the first release is carried over
		*o = DefaultFilter()
		return
	}

	// releases before 1.2.0 had no mode; the shape follows from the lists in use
	legacy, _ := compareVersions(from, "1.1.0")
	switch {
	case len(o.Allow) > 0:
		o.Mode = string(spawnguard.AllowDeny)
	case legacy < 0:
		o.Mode = string(spawnguard.DenyOnly)
	default:
		o.Mode = string(spawnguard.DenyException)
	}

	o.Version = CurrentConfigVersion
	log.Infof("config update complete, updated from version %q to %q", from, CurrentConfigVersion)
}

// Validate reports every problem with the filter configuration at once.
func (o *Filter) Validate() error {
	var errs error

	mode, err := spawnguard.ParseMode(o.Mode)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if _, err := compareVersions(o.Version, CurrentConfigVersion); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		return errs
	}

	o.Mode = string(mode)
	if mode != spawnguard.AllowDeny && len(o.Allow) > 0 {
		log.Warnf("allow list is ignored in %q mode", mode)
	}
	if mode != spawnguard.DenyException && len(o.Exceptions) > 0 {
		log.Warnf("exception list is ignored in %q mode", mode)
	}
	if o.CleanUpOnStartup && o.RuleSet().IsEmpty() {
		log.Warn("clean up on startup is enabled but the policy is empty, nothing will be removed")
	}
	return nil
}

// RuleSet converts the configuration into the rule set the filter enforces
func (o Filter) RuleSet() spawnguard.RuleSet {
	mode, err := spawnguard.ParseMode(o.Mode)
	if err != nil {
		mode = spawnguard.DenyOnly
	}
	return spawnguard.NewRuleSet(mode, o.Deny, o.Allow, o.Exceptions)
}

func (o Filter) FilterConfig() spawnguard.Config {
	return spawnguard.Config{
		Rules:          o.RuleSet(),
		SweepOnStartup: o.CleanUpOnStartup,
	}
}

// compareVersions compares dotted numeric versions; missing components count as zero and an
// empty version sorts before everything.
func compareVersions(a, b string) (int, error) {
	pa, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	pb, err := parseVersion(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
	}
	return 0, nil
}

func parseVersion(v string) ([]int, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return []int{-1}, nil
	}
	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid config version %q", v)
		}
		out = append(out, n)
	}
	return out, nil
}
