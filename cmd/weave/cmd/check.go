package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/velvet-lang/weave/internal/resolve"
	"github.com/velvet-lang/weave/internal/ui/styles"
)

// DefaultSourceFile is resolved when no file argument is given.
const DefaultSourceFile = "main.vel"

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Resolve the dependencies of a source file",
	Long: `Resolve every dependency declared in a source file.

Libraries are cloned, local paths copied, and archives extracted into
the project's weave-library/, also for files in subdirectories. Relative
local: paths are read from the file's own directory. Libraries already
present are not fetched again.

Examples:
  weave check               # Resolve main.vel
  weave check src/app.vel   # Resolve another file
  weave check --offline     # Use only the built-in registry`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// cacheRoot is the library cache shared by check and update.
func (s *session) cacheRoot() string {
	return filepath.Join(s.projectDir, s.cfg.Cache.Dir)
}

// buildResolver wires a resolver from the session configuration. Every
// source file in the project resolves into the project's cache root.
func (s *session) buildResolver(cmd *cobra.Command) *resolve.Resolver {
	snapshot := s.loadRegistry(cmd.Context())
	return resolve.New(snapshot,
		newSourceControl(s.logger),
		newArchiveFetcher(s.cfg),
		resolve.WithCacheDir(s.cacheRoot()),
		resolve.WithLogger(s.logger),
	)
}

// runCheck handles the check command.
func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	file := DefaultSourceFile
	if len(args) == 1 {
		file = args[0]
	}
	path := s.sourcePath(file)

	r := s.buildResolver(cmd)
	deps, err := r.ResolveFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, d := range deps {
		line := fmt.Sprintf("%s %s %s", styles.IconOK, styles.KindStyle.Render(d.Kind.String()), styles.NameStyle.Render(d.Name))
		if d.Path != "" {
			line += " " + styles.MutedTextStyle.Render("-> "+d.Path)
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Resolved %d %s in %s\n", len(deps), plural(len(deps), "dependency", "dependencies"), file)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
