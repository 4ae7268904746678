package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/petrel/internal/capability"
	"github.com/simonhull/firebird-suite/petrel/internal/config"
	"github.com/simonhull/firebird-suite/petrel/internal/logging"
	"github.com/simonhull/firebird-suite/petrel/internal/output"
)

// ApplyCmd returns the apply command
func ApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Add the notification service extension to the iOS project",
		Long: `Apply the request in petrel.yml to the native iOS project.

This command will:
1. Set aps-environment and app groups in the app entitlements
2. Add background modes and intents to the app Info.plist
3. Merge the remote notification delegate code into AppDelegate
4. Write the extension sources, Info.plist and entitlements
5. Add the extension target to the Xcode project

Flags may also be set through PETREL_* environment variables,
for example PETREL_TEAM_ID or PETREL_PROJECT_ROOT.

Example:
  petrel apply --config petrel.yml --project-root . --diff`,
		Args: cobra.NoArgs,
		RunE: runApply,
	}

	cmd.Flags().StringP("config", "c", config.DefaultFile, "Request file")
	cmd.Flags().String("project-root", ".", "Directory holding the ios/ folder")
	cmd.Flags().Bool("dry-run", false, "Show what would change without writing")
	cmd.Flags().Bool("diff", false, "Show a diff of every changed file")
	cmd.Flags().String("team-id", "", "Apple development team for the extension")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logging.New(logging.Options{Verbose: verbose})
	defer func() { _ = log.Sync() }()

	root, err := filepath.Abs(settings.ProjectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	output.Verbose("Project root: " + root)

	file, err := config.LoadFile(settings.ConfigFile)
	if err != nil {
		return err
	}
	req, err := file.Normalize(root)
	if err != nil {
		return err
	}
	output.Verbose("Extension bundle: " + req.BundleName)

	pipeline := capability.New(log, cmd.OutOrStdout())
	report, err := pipeline.Apply(cmd.Context(), capability.Invocation{
		ProjectRoot: root,
		App:         file.App,
		Request:     req,
		TeamID:      settings.TeamID,
		DryRun:      settings.DryRun,
		Diff:        settings.Diff,
	})
	if err != nil {
		return err
	}

	if report.DelegateSkipped != "" {
		output.Warn("Skipped app delegate code")
		output.Step(report.DelegateSkipped)
		output.Step("Merge appDelegate.remoteNotificationsDelegate by hand, or rerun once the file exists")
	}

	switch {
	case len(report.Operations) == 0:
		output.Info("Nothing to do, " + req.BundleName + " is up to date")
	case settings.DryRun:
		output.Info(fmt.Sprintf("Dry run: %d file(s) would change", len(report.Operations)))
	case report.Target.Created:
		output.Success("Added " + req.BundleName + " target")
	default:
		output.Success("Updated " + req.BundleName + " files; target already present")
	}
	return nil
}
