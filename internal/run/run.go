// Package run executes the external commands tabletmode orchestrates.
// Every subprocess in the system goes through this package so tests can
// substitute fakes for the real binaries.
package run

import (
	"os"
	"os/exec"
)

// Runner runs a command to completion. A non-zero exit status is reported
// as the returned error, as with exec.ExitError.
type Runner interface {
	Run(name string, args ...string) error
}

// Starter spawns a command without waiting for it to finish.
type Starter interface {
	Start(name string, args ...string) (Handle, error)
}

// Handle is one spawned command. Wait blocks until the process exits and
// releases its resources; a Handle is not reusable afterwards.
type Handle interface {
	Wait() error
}

// Exec runs commands via os/exec. Stdout is discarded because the
// orchestrated tools are chatty; stderr passes through for diagnostics.
type Exec struct{}

// Run executes the command and waits for it to complete.
func (Exec) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Start spawns the command and returns its handle without waiting.
func (Exec) Start(name string, args ...string) (Handle, error) {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
