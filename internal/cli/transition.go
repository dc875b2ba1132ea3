package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avular-upgrade/internal/app"
	"avular-upgrade/internal/core"
	"avular-upgrade/internal/types"
)

type transitionOptions struct {
	DryRun bool
}

func newTransitionCommand() *cobra.Command {
	opts := transitionOptions{}
	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Transition the system to the newest supported release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.DryRun = viper.GetBool("dry_run")
			return runTransition(cmd.Context(), opts)
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Resolve and preview without changing anything")
	_ = viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))
	return cmd
}

func runTransition(ctx context.Context, opts transitionOptions) error {
	service := app.NewService(configFromViper())
	result, err := service.Transition(ctx, app.TransitionRequest{DryRun: opts.DryRun})
	if opts.DryRun && err == nil {
		fmt.Printf("would transition to %q\n", result.Target)
		for _, change := range result.Preview {
			fmt.Printf("  %s: %s -> %s (%s)\n", change.Path, change.From, change.To, change.URI)
		}
		return nil
	}
	if result.Outcome != nil {
		printOutcome(*result.Outcome)
	}
	return err
}

func printOutcome(outcome core.TransitionOutcome) {
	switch outcome.Phase {
	case types.PhaseSucceeded:
		fmt.Printf("transition to %q succeeded, reboot to finish switching releases\n", outcome.Target)
	case types.PhaseIdle:
		if outcome.Cancelled {
			fmt.Println("transition cancelled, nothing was changed")
		}
	case types.PhaseRolledBack:
		fmt.Printf("repository configuration restored from %s; already-installed packages were not rolled back\n", outcome.Backup.Dir)
		if outcome.RollbackResync != nil && outcome.RollbackResync.Status != types.StageStatusOK {
			fmt.Println("warning: the package index re-synchronization after the restore did not complete cleanly")
		}
	case types.PhaseFailedTerminal:
		if outcome.Backup.ID != "" {
			fmt.Printf("system left inconsistent: sources may point at %q with packages partially upgraded; backup remains at %s\n",
				outcome.Target, outcome.Backup.Dir)
		}
	}
	for _, path := range outcome.Rewrite.Failed {
		fmt.Printf("warning: %s could not be rewritten\n", path)
	}
}
