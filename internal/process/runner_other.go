//go:build !unix

package process

import "os/exec"

// setProcessGroup is a no-op on non unix systems, only the interpreter process is killed.
func setProcessGroup(_ *exec.Cmd) {}
