// Package cmd provides the CLI commands for weave.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/velvet-lang/weave/internal/config"
	weaveerrors "github.com/velvet-lang/weave/internal/errors"
	"github.com/velvet-lang/weave/internal/fetch"
	"github.com/velvet-lang/weave/internal/git"
	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/ports"
	"github.com/velvet-lang/weave/internal/project"
	"github.com/velvet-lang/weave/internal/registry"
	"github.com/velvet-lang/weave/internal/version"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Weave - dependency manager for Velvet",
	Long: `Weave resolves the dependencies declared in Velvet source files.

A declaration is a line of the form <token>:
  <std>                       builtin namespace (std, math, io)
  <crux-lib>                  library from the weave registry
  <local:path/to/file.vel>    local file or directory
  <https://host/pkg.tar.gz>   remote archive (.tar.gz, .tgz, .zip)

Libraries, local files, and archives are materialized into the project's
weave-library/ directory.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	addPersistentFlags(rootCmd)
}

func addPersistentFlags(c *cobra.Command) {
	c.PersistentFlags().StringP("dir", "C", "", "Project directory (default: current directory)")
	c.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	c.PersistentFlags().Bool("offline", false, "Do not fetch the remote registry")
}

// Capability constructors, replaced in tests.
var (
	newSourceControl = func(logger *logging.Logger) ports.SourceControl {
		return git.New(logger)
	}
	newHTTPFetcher = func(cfg *config.Config) ports.HTTPFetcher {
		return fetch.NewClient(cfg.Registry.Timeout)
	}
	newArchiveFetcher = func(cfg *config.Config) ports.ArchiveFetcher {
		return fetch.NewArchiveFetcher(fetch.NewClient(cfg.Registry.Timeout))
	}
)

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.Version = version.Current().String()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(rootCmd, err)
		os.Exit(1)
	}
}

// Root returns the root command for testing purposes.
func Root() *cobra.Command {
	return rootCmd
}

func printError(cmd *cobra.Command, err error) {
	if we, ok := weaveerrors.As(err); ok {
		fmt.Fprint(cmd.ErrOrStderr(), we.Format())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
}

// session is the per-invocation state shared by commands.
type session struct {
	projectDir string
	cfg        *config.Config
	logger     *logging.Logger
}

// close flushes and closes the log file.
func (s *session) close() {
	_ = logging.CloseGlobal()
}

// openSession resolves the project directory, loads weave.yaml, and starts
// file logging. Without --dir the nearest parent holding weave.yaml,
// weave-library/ or main.vel is used. Logging failures are reported as
// warnings only.
func openSession(cmd *cobra.Command) (*session, error) {
	dir, _ := cmd.Flags().GetString("dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	offline, _ := cmd.Flags().GetBool("offline")

	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir, err = project.NewDetector().Find(wd)
		if err != nil {
			return nil, err
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	if offline {
		cfg.Registry.Offline = true
	}

	s := &session{projectDir: dir, cfg: cfg}

	logConfig, err := cfg.LoggingConfig(dir)
	if err == nil {
		if verbose {
			logConfig.Level = logging.LevelDebug
		}
		err = logging.InitGlobal(logConfig)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to initialize logging: %v\n", err)
	}
	s.logger = logging.Global()
	s.logger.Info("weave starting", "command", cmd.Name(), "dir", dir, "version", version.Current().Version)
	return s, nil
}

// loadConfig loads weave.yaml from projectDir, falling back to defaults.
func loadConfig(projectDir string) (*config.Config, error) {
	cfg, err := config.LoadFromDir(projectDir)
	if err == nil {
		return cfg, nil
	}

	var verrs config.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		we := weaveerrors.ConfigValidationError(verrs[0].Field, verrs[0].Message, nil)
		return nil, we.WithCause(err)
	}
	return nil, weaveerrors.ConfigParseError(filepath.Join(projectDir, config.DefaultConfigFile), err)
}

// sourcePath returns file relative to the project directory.
func (s *session) sourcePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.projectDir, file)
}

// loadRegistry builds the registry snapshot, fetching the remote manifest
// unless offline.
func (s *session) loadRegistry(ctx context.Context) *registry.Snapshot {
	loader := registry.NewLoaderFromConfig(newHTTPFetcher(s.cfg), s.cfg, s.logger)
	return loader.Load(ctx, registry.Fallback(s.cfg))
}
