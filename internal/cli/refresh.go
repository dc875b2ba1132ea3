package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avular-upgrade/internal/app"
	"avular-upgrade/internal/types"
)

type refreshOptions struct{}

func newRefreshCommand() *cobra.Command {
	opts := refreshOptions{}
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh installed packages within the current release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd.Context(), opts)
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func runRefresh(ctx context.Context, _ refreshOptions) error {
	service := app.NewService(configFromViper())
	result, err := service.Refresh(ctx, app.RefreshRequest{})
	for _, stage := range result.Stages {
		if stage.Status == types.StageStatusFailed {
			fmt.Printf("refresh failed at %q, full output at %s\n", stage.Name, stage.OutputPath)
		}
	}
	if err != nil {
		return err
	}
	fmt.Println("packages are up to date")
	return nil
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("release-feed-url", "", "Release lifecycle feed endpoint")
	cmd.Flags().String("mirror-url", "", "Vendor mirror dists listing endpoint")
	cmd.Flags().String("sources-file", "", "Root apt sources file")
	cmd.Flags().String("sources-dir", "", "Apt sources drop-in directory")
	cmd.Flags().String("backup-dir", "", "Backup namespace directory")
	cmd.Flags().String("capture-dir", "", "Stage output capture directory")
	cmd.Flags().Bool("assume-yes", false, "Answer every confirmation affirmatively")
	cmd.Flags().Bool("non-interactive", false, "Log instead of rendering prompts and progress")

	_ = viper.BindPFlag("release_feed_url", cmd.Flags().Lookup("release-feed-url"))
	_ = viper.BindPFlag("mirror_url", cmd.Flags().Lookup("mirror-url"))
	_ = viper.BindPFlag("sources_file", cmd.Flags().Lookup("sources-file"))
	_ = viper.BindPFlag("sources_dir", cmd.Flags().Lookup("sources-dir"))
	_ = viper.BindPFlag("backup_dir", cmd.Flags().Lookup("backup-dir"))
	_ = viper.BindPFlag("capture_dir", cmd.Flags().Lookup("capture-dir"))
	_ = viper.BindPFlag("assume_yes", cmd.Flags().Lookup("assume-yes"))
	_ = viper.BindPFlag("non_interactive", cmd.Flags().Lookup("non-interactive"))
}

func configFromViper() app.Config {
	cfg := app.DefaultConfig()
	if value := viper.GetString("release_feed_url"); value != "" {
		cfg.ReleaseFeedURL = value
	}
	if value := viper.GetString("mirror_url"); value != "" {
		cfg.MirrorURL = value
	}
	if value := viper.GetString("sources_file"); value != "" {
		cfg.RootFile = value
	}
	if value := viper.GetString("sources_dir"); value != "" {
		cfg.DropInDir = value
	}
	if value := viper.GetString("backup_dir"); value != "" {
		cfg.BackupRoot = value
	}
	if value := viper.GetString("capture_dir"); value != "" {
		cfg.CaptureDir = value
	}
	cfg.AssumeYes = viper.GetBool("assume_yes")
	cfg.Interactive = !viper.GetBool("non_interactive")
	return cfg
}
