//go:build windows

package dispatch

import (
	"os/exec"
	"syscall"
)

const termGrace = 0

func sysProcAttr(Mode) *syscall.SysProcAttr {
	return nil
}

// signalChild kills only the immediate child on Windows; process group
// semantics and graceful termination signals are a Unix concept.
func signalChild(cmd *exec.Cmd, _ syscall.Signal) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func exitedBySignal(_ *exec.ExitError) bool {
	return false
}
