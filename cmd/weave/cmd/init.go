package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/velvet-lang/weave/internal/config"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default weave.yaml",
	Long: `Create weave.yaml with the default settings in the project directory.

Use --force to overwrite an existing file.

Examples:
  weave init          # Write weave.yaml
  weave init --force  # Overwrite an existing weave.yaml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration")
}

// runInit handles the init command. It does not read an existing weave.yaml,
// so a broken file can be replaced with --force.
func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = "."
	}

	path := filepath.Join(dir, config.DefaultConfigFile)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(config.NewConfig(), path); err != nil {
		return err
	}

	cmd.Printf("Created %s\n", path)
	cmd.Println("Declare dependencies in main.vel, then run 'weave check'.")
	return nil
}
