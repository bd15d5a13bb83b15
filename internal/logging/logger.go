// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"os"
	"sync/atomic"

	"github.com/pterm/pterm"
)

// VerboseEnv enables debug output when set to "1".
const VerboseEnv = "SQLAPI_VERBOSE"

var verbose atomic.Bool

func init() {
	if os.Getenv(VerboseEnv) == "1" {
		SetVerbose(true)
	}
}

// SetVerbose toggles debug output for the whole process.
func SetVerbose(v bool) {
	verbose.Store(v)
	if v {
		pterm.EnableDebugMessages()
	} else {
		pterm.DisableDebugMessages()
	}
}

// Verbose reports whether debug output is enabled.
func Verbose() bool { return verbose.Load() }

// Debugf prints a masked debug line when verbose mode is on.
func Debugf(format string, args ...any) {
	if !verbose.Load() {
		return
	}
	pterm.Debug.Println(Mask(pterm.Sprintf(format, args...)))
}

// Warnf prints a masked warning line.
func Warnf(format string, args ...any) {
	pterm.Warning.Println(Mask(pterm.Sprintf(format, args...)))
}
