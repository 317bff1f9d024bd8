package command

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anchore/spawnguard/cmd/spawnguard/cli/option"
)

// FullConfig is every option that can be set in .spawnguard.yaml
type FullConfig struct {
	option.Filter   `yaml:",inline"`
	option.Simulate `yaml:",inline"`
	option.Output   `yaml:",inline"`
	FailOnReject    bool `yaml:"fail-on-reject"`
}

var configComments = map[string]string{
	"version": "configuration schema version; older files are upgraded when loaded",
	"mode": `which lists are consulted:
  deny            reject objects matching the deny list
  allow-deny      reject objects matching neither the allow list nor the deny list
  deny-exception  reject objects matching the deny list unless they match an exception`,
	"clean-up-on-startup": "destroy existing objects matching the policy once the host is ready",
	"deny":                "keywords of objects to reject, matched case-insensitively as substrings of the short name or type",
	"allow":               "keywords of objects to permit (allow-deny mode only)",
	"exceptions":          "keywords that override the deny list (deny-exception mode only)",
	"tick-interval":       "time between host scheduling passes when simulating",
	"checksum":            "expected sha256 digest of a world file downloaded from a URL",
	"output":              `output format: "table" or "json"`,
	"fail-on-reject":      "exit non-zero from check when any object is rejected",
}

// Config creates the config command
func Config() *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate a commented configuration file",
		Long: `Generate a YAML configuration file with every available option set to its default value.

The output can be saved as .spawnguard.yaml and customized.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(outputFile, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "output file path (default: stdout)")
	return cmd
}

func runConfig(outputFile string, stdout io.Writer) error {
	contents, err := generateConfig(DefaultFullConfig())
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	if outputFile == "" {
		_, err = stdout.Write(contents)
		return err
	}

	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(outputFile, contents, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Configuration written to: %s\n", outputFile)
	return err
}

func DefaultFullConfig() FullConfig {
	return FullConfig{
		Filter:   option.DefaultFilter(),
		Simulate: option.DefaultSimulate(),
		Output:   option.DefaultOutput(),
	}
}

func generateConfig(cfg FullConfig) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	// mapping nodes alternate key and value
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if comment, ok := configComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}
	doc.HeadComment = "spawnguard configuration\nsave as .spawnguard.yaml or pass with --config"

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
