//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; Terminate also kills the leader directly.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// detach starts the browser as leader of its own process group so that
// renderer and zygote children die with it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
