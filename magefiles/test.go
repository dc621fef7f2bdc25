//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the package tests with the race detector, which needs cgo.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Runs the tests of a single package, e.g. mage test:pkg ./engine/systems
func (Test) Pkg(pkg string) error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "-v", pkg), withEnv("CGO_ENABLED=1"), withStream())
	return err
}
