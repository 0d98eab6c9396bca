// Package printer submits a finished sheet to the OS print spooler.
// Printing is strictly best-effort: a composed sheet must never be lost to a
// spooler problem, so all failures here are reported, not fatal.
package printer

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoDefaultPrinter means CUPS has no default destination configured. The
// pipeline downgrades it to a manual-print instruction.
var ErrNoDefaultPrinter = errors.New("no default printer configured")

// Sink accepts a file for printing.
type Sink interface {
	Submit(path string) error
}

// CUPS prints through the lpstat/lp command-line tools.
type CUPS struct{}

func (CUPS) Submit(path string) error {
	out, err := exec.Command("lpstat", "-d").Output()
	if err != nil {
		return fmt.Errorf("lpstat -d: %w", err)
	}
	if defaultPrinterFromLpstat(string(out)) == "" {
		return ErrNoDefaultPrinter
	}
	if err := exec.Command("lp", path).Run(); err != nil {
		return fmt.Errorf("lp %s: %w", path, err)
	}
	return nil
}

// defaultPrinterFromLpstat parses `lpstat -d` output. Returns "" when no
// default destination exists.
func defaultPrinterFromLpstat(out string) string {
	line := strings.TrimSpace(out)
	if line == "" || strings.HasPrefix(line, "no system default destination") {
		return ""
	}
	if _, name, ok := strings.Cut(line, ":"); ok {
		return strings.TrimSpace(name)
	}
	return ""
}

// Null is a no-op sink for tests and --no-print runs.
type Null struct{}

func (Null) Submit(string) error { return nil }
