//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the gles-probe binary into bin/.
func (Build) Probe() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/gles-probe", "."), withStream()); err != nil {
		return err
	}
	return nil
}
