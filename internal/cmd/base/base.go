// Package base provides the pieces shared by all CLI commands.
package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every subcommand and carries the UI and logger.
type Command struct {
	// UI is used for command output.
	UI cli.Ui

	// Log is the logger for the command.
	Log hclog.Logger
}

// FlagSet wraps flag.FlagSet with help rendering for command usage text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a FlagSet around f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help returns the rendered flag defaults for inclusion in command help.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	f.SetOutput(&buf)
	f.PrintDefaults()
	return "\n\nOptions:\n" + buf.String()
}
