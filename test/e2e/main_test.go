//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// cdusyncBin is the server binary under test. Empty skips every test.
var cdusyncBin string

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	bin, cleanup, err := serverBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "e2e: %v; tests will skip\n", err)
	}
	defer cleanup()
	cdusyncBin = bin
	return m.Run()
}

// serverBinary uses CDUSYNC_BIN when set and otherwise builds cmd/cdusync
// from this checkout into a temporary directory.
func serverBinary() (string, func(), error) {
	nop := func() {}
	if v := os.Getenv("CDUSYNC_BIN"); v != "" {
		return v, nop, nil
	}

	dir, err := os.MkdirTemp("", "cdusync-e2e-")
	if err != nil {
		return "", nop, fmt.Errorf("temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	bin := filepath.Join(dir, "cdusync")
	build := exec.Command("go", "build", "-o", bin, "./cmd/cdusync")
	build.Dir = filepath.Join("..", "..")
	if out, err := build.CombinedOutput(); err != nil {
		cleanup()
		return "", nop, fmt.Errorf("build cdusync: %w\n%s", err, out)
	}
	return bin, cleanup, nil
}
