package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// DisallowArguments is a Cobra arguments validator that disallows positional
// arguments, with a clearer message than cobra.NoArgs.
func DisallowArguments(_ *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New("command does not accept arguments")
	}
	return nil
}

// ExactArguments returns a Cobra arguments validator requiring exactly n
// positional arguments, naming what they are in the error message.
func ExactArguments(n int, description string) cobra.PositionalArgs {
	return func(_ *cobra.Command, arguments []string) error {
		if len(arguments) != n {
			return fmt.Errorf("expected %s (%d argument(s)), got %d", description, n, len(arguments))
		}
		return nil
	}
}
