// Package core holds process-wide helpers shared by every long-lived goroutine
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	hookMu    sync.Mutex
	crashHook func()
	crashOut  io.Writer = os.Stderr
	exit                = os.Exit
)

// SetCrashHook registers the function that restores the terminal before a crash report
// Passing nil clears it
func SetCrashHook(fn func()) {
	hookMu.Lock()
	crashHook = fn
	hookMu.Unlock()
}

// HandleCrash restores the terminal, prints the panic value and stack, then exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	hookMu.Lock()
	hook := crashHook
	hookMu.Unlock()
	if hook != nil {
		// The hook itself must not mask the original panic
		func() {
			defer func() { _ = recover() }()
			hook()
		}()
	}

	fmt.Fprintf(crashOut, "\r\nCRASH: %v\r\n", r)
	fmt.Fprintf(crashOut, "stack:\r\n%s\r\n", debug.Stack())
	exit(1)
}

// Go runs fn on a new goroutine with crash handling
// Use instead of the go keyword for goroutines that outlive a single call
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
