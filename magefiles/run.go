//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs gles-probe. GLES_PROBE_CONFIG points it at a config file.
func (Run) Probe() error {
	args := []string{"run", "main.go"}
	if path := os.Getenv("GLES_PROBE_CONFIG"); path != "" {
		args = append(args, "-config", path)
	}
	fmt.Println("Run gles-probe...")
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
