//go:build !unix

package native

import "os/exec"

// setProcessGroup is a no-op where process groups are unavailable; the
// default cancel kills only the shell.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error { return nil }
