package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/velvet-lang/weave/internal/libsync"
	"github.com/velvet-lang/weave/internal/ui/styles"
)

// updateCmd represents the update command.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update materialized libraries from upstream",
	Long: `Pull the latest changes for every library in the project's weave-library/,
the same directory 'weave check' resolves into.

Local edits are stashed before the pull and reapplied afterwards. If they
conflict with upstream, the library is reported and the edits stay in the
stash. Directories that are not git repositories are skipped.

The command fails only when every library failed to update.

Examples:
  weave update               # Update all libraries
  weave update --workers 8   # Update up to 8 libraries at once`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().IntP("workers", "w", 0, "Libraries updated in parallel (default from weave.yaml)")
}

// runUpdate handles the update command.
func runUpdate(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = s.cfg.Update.Workers
	}

	cacheRoot := s.cacheRoot()
	syncer := libsync.New(newSourceControl(s.logger),
		libsync.WithWorkers(workers),
		libsync.WithTimeout(s.cfg.Update.PullTimeout),
		libsync.WithLogger(s.logger),
	)

	report, err := syncer.UpdateAll(cmd.Context(), cacheRoot)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(report.Outcomes) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.WarningTextStyle.Render("No libraries to update in "+cacheRoot))
		return nil
	}

	for _, o := range report.Outcomes {
		line := fmt.Sprintf("%s %s %s", styles.Icon(o.Status.String()), styles.NameStyle.Render(o.Name), o.Status)
		if o.Stashed && o.Status == libsync.Updated {
			line += styles.MutedTextStyle.Render(" (local changes reapplied)")
		}
		if o.Err != nil && o.Status != libsync.Skipped {
			line += ": " + styles.ErrorTextStyle.Render(o.Err.Error())
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, report.Summary())

	if report.AllFailed() {
		return fmt.Errorf("all %d libraries failed to update", len(report.Outcomes))
	}
	return nil
}
