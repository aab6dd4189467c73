//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "vocabaudio"
	mainPkg = "./cmd/vocabaudio"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the vocabaudio binary into ./bin. go-sqlite3 needs cgo.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println("Building", binary)
	env := map[string]string{"CGO_ENABLED": "1"}
	return sh.RunWithV(env, "go", "build", "-o", filepath.Join("bin", binary), mainPkg)
}

// Install installs the binary into GOPATH/bin.
func Install() error {
	mg.Deps(Tidy)
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "install", mainPkg)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Tidy keeps go.mod and go.sum in order.
func Tidy() error {
	return sh.Run("go", "mod", "tidy")
}

// Check runs vet and the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes build output.
func Clean() error {
	fmt.Println("Cleaning")
	return os.RemoveAll("bin")
}
