package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/velvet-lang/weave/internal/registry"
	"github.com/velvet-lang/weave/internal/ui/styles"
)

// libsCmd represents the libs command.
var libsCmd = &cobra.Command{
	Use:   "libs",
	Short: "List libraries available from the registry",
	Long: `List the libraries that can be declared by name.

The list merges the remote registry over the libraries in weave.yaml and
the built-in set. With --offline the remote registry is not fetched.`,
	Args: cobra.NoArgs,
	RunE: runLibs,
}

func init() {
	rootCmd.AddCommand(libsCmd)
}

// runLibs handles the libs command.
func runLibs(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	snapshot := s.loadRegistry(cmd.Context())

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.TitleStyle.Render(fmt.Sprintf("%d libraries", snapshot.Len())))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range snapshot.Entries() {
		pin := "-"
		if e.Pin() != registry.PinNone {
			pin = fmt.Sprintf("%s (%s)", e.Version, e.Pin())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, pin, e.URL)
	}
	return tw.Flush()
}
