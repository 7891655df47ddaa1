package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	weaveerrors "github.com/velvet-lang/weave/internal/errors"
	"github.com/velvet-lang/weave/internal/resolve"
	"github.com/velvet-lang/weave/internal/ui/styles"
)

// addCmd represents the add command.
var addCmd = &cobra.Command{
	Use:   "add <dependency>",
	Short: "Declare a dependency in a source file",
	Long: `Append a dependency declaration to a source file.

The dependency is classified first; unknown names are rejected. Nothing is
fetched until the next 'weave check'.

Examples:
  weave add crux-lib
  weave add local:../shared/util.vel
  weave add https://pkg.example.com/json-1.0.tar.gz --file src/app.vel`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("file", "f", DefaultSourceFile, "Source file to modify")
}

// runAdd handles the add command.
func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	token := strings.TrimSpace(args[0])
	token = strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">")
	file, _ := cmd.Flags().GetString("file")
	path := s.sourcePath(file)

	dep, err := s.buildResolver(cmd).Classify(token)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return weaveerrors.ReadFailure(path, err)
	}
	source := string(data)

	for _, decl := range resolve.Scan(source) {
		if decl.Token == token {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already declared in %s (line %d)\n", token, file, decl.Line)
			return nil
		}
	}

	var b strings.Builder
	b.WriteString(source)
	if source != "" && !strings.HasSuffix(source, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "<%s>\n", token)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Info("added dependency", "file", path, "token", token, "kind", dep.Kind.String())
	fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s to %s\n", styles.IconOK, dep.Kind, styles.NameStyle.Render(token), file)
	return nil
}
