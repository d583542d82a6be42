package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// RequireRootPath validates that exactly one root directory argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireRootPath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`%w: missing required argument: <root>

Usage: %s

Example:
  %s ./src --format yaml`, cdeps.ErrUsage, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: accepts 1 arg(s), received %d", cdeps.ErrUsage, len(args))
	}
	return nil
}
