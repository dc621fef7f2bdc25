//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and starts the preview with the default configuration.
func (Run) App() error {
	mg.Deps(Build.All)
	fmt.Println("Run cardforge...")
	if _, err := executeCmd("bin/cardforge", withStream()); err != nil {
		return err
	}
	return nil
}

// Starts the preview in debug mode with the configuration in cardforge.toml.
func (Run) Debug() error {
	mg.Deps(Build.All)
	if _, err := executeCmd("bin/cardforge", withArgs("--debug", "--config", "cardforge.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
