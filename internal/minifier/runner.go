package minifier

import (
	"io"
	"os"
	"os/exec"
)

// Runner executes an external program in dir and waits for it.
type Runner interface {
	Run(dir string, name string, args ...string) error
}

// ExecRunner runs programs as subprocesses. Their output is passed through
// to Stdout and Stderr, or to the process's own streams when those are nil.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) Run(dir string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}
