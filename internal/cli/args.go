package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/autoscribe-dev/autoscribe/internal/errors"
)

// noArgs is cobra.NoArgs returning an argument error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("unexpected argument %q", args[0]),
			cmd.UseLine(),
		)
	}
	return nil
}

// maxOneArg is cobra.MaximumNArgs(1) returning an argument error.
func maxOneArg(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("accepts at most 1 argument, received %d", len(args)),
			cmd.UseLine(),
		)
	}
	return nil
}

// boolOverride resolves a --name/--no-name flag pair. It returns nil when
// neither flag was given.
func boolOverride(cmd *cobra.Command, name string) (*bool, error) {
	flags := cmd.Flags()
	onSet := flags.Changed(name)
	offSet := flags.Changed("no-" + name)

	switch {
	case onSet && offSet:
		return nil, clierrors.InvalidFlagCombination(
			fmt.Sprintf("--%s and --no-%s", name, name),
			"Pass only one of them",
		)
	case onSet:
		v, err := flags.GetBool(name)
		if err != nil {
			return nil, err
		}
		return &v, nil
	case offSet:
		v, err := flags.GetBool("no-" + name)
		if err != nil {
			return nil, err
		}
		v = !v
		return &v, nil
	}
	return nil, nil
}
