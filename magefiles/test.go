//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	return goTest(".", "-race", "./...")
}

// Runs the D3D layer and backend tests only.
func (Test) Renderer() error {
	return goTest("engine/renderer", "./...")
}
