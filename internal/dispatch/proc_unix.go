//go:build !windows

package dispatch

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const termGrace = 2 * time.Second

// sysProcAttr returns the launch attributes for the given mode. Captured
// children get their own process group so the whole agent process tree can
// be signalled at once. Interactive children stay in the wrapper's group: a
// separate group is not the terminal's foreground group, and the child's
// first read from the controlling tty would stop it with SIGTTIN.
func sysProcAttr(mode Mode) *syscall.SysProcAttr {
	if mode == ModeInteractive {
		return nil
	}
	return &syscall.SysProcAttr{Setpgid: true}
}

// signalChild delivers sig to the child, addressing its whole process group
// when the child was launched as a group leader.
func signalChild(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if cmd.SysProcAttr != nil && cmd.SysProcAttr.Setpgid {
		if pgid, err := unix.Getpgid(pid); err == nil {
			_ = unix.Kill(-pgid, sig)
			return
		}
	}
	_ = unix.Kill(pid, sig)
}

func exitedBySignal(err *exec.ExitError) bool {
	status, ok := err.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}
