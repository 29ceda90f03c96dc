//go:build !windows

package bridge

import "syscall"

// detachSysProcAttr puts the worker in its own session so it survives the
// orchestrator exiting.
func detachSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
