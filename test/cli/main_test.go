package cli

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

const (
	binaryPath      = "../../.tmp/spawnguard"
	emptyConfigPath = "../../.tmp/spawnguard_empty.yaml"
)

func buildBinary() error {
	buildCmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/spawnguard")
	buildCmd.Stderr = os.Stderr
	return buildCmd.Run()
}

func generateEmptyConfig() error {
	if err := os.MkdirAll(filepath.Dir(emptyConfigPath), 0750); err != nil {
		return err
	}
	return os.WriteFile(emptyConfigPath, nil, 0600)
}

func setup() {
	if err := buildBinary(); err != nil {
		log.Fatalf("Failed to build binary: %v", err)
	}
	if err := generateEmptyConfig(); err != nil {
		log.Fatalf("Failed to generate empty config: %v", err)
	}
}

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}
