// Copyright © 2025 The Hisplice Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package logging wires up the one colorized, terminal-aware logging
// backend every other package's package-level logger is built from.
package logging

import (
	"io"
	"os"

	"github.com/acarl005/stripansi"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/shenwei356/go-logging"
)

// MustGetLogger returns a logger bound to name, configured with the
// shared backend installed by Init (or a sane default if Init was never
// called — useful in tests).
func MustGetLogger(name string) *logging.Logger {
	return logging.MustGetLogger(name)
}

// strippingWriter removes ANSI color codes before handing bytes to a
// non-interactive sink (a redirected log file, for instance).
type strippingWriter struct {
	w io.Writer
}

func (s strippingWriter) Write(p []byte) (int, error) {
	clean := stripansi.Strip(string(p))
	if _, err := s.w.Write([]byte(clean)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// LevelFor maps a single --verbose flag to the two levels the CLI cares
// about: DEBUG when set, INFO otherwise.
func LevelFor(verbose bool) logging.Level {
	if verbose {
		return logging.DEBUG
	}
	return logging.INFO
}

// Init installs the shared backend: color output to stderr when it's a
// terminal, plain stripped output otherwise. Call once from main.
func Init(level logging.Level) {
	var backend logging.Backend
	if isatty.IsTerminal(os.Stderr.Fd()) {
		backend = logging.NewLogBackend(colorable.NewColorable(os.Stderr), "", 0)
	} else {
		backend = logging.NewLogBackend(strippingWriter{os.Stderr}, "", 0)
	}
	formatter := logging.MustStringFormatter(
		"%{time:15:04:05.000} %{level:.4s} %{module}: %{message}",
	)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}
