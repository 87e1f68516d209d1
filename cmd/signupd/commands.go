package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/nomis52/signupd/buildinfo"
	"github.com/nomis52/signupd/config"
	"github.com/nomis52/signupd/logging"
	"github.com/nomis52/signupd/registry"
	"github.com/nomis52/signupd/server"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "signupd",
		Short: "Extracurricular activity signup service",
		Long: `signupd serves the Mergington High School activity list and lets
students sign up for activities over a small JSON API and web UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newActivitiesCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server until SIGINT or SIGTERM. SIGHUP re-reads the
config file and applies its logging level.`,
		Example: `  signupd serve
  signupd serve -c /etc/signupd/signupd.yaml
  SIGNUPD_LISTEN_ADDR=:9000 signupd serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	srv, err := server.New(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := reloadLogLevel(configPath, logger); err != nil {
					logger.Warn("failed to reload log level", "error", err)
				}
			}
		}
	}()

	props := buildinfo.Get()
	logger.Info("signupd starting", "version", props.Version, "git_commit", props.GitCommit)
	return srv.Run(ctx)
}

// reloadLogLevel re-reads the config and applies its logging level. Other
// settings need a restart.
func reloadLogLevel(configPath string, logger *logging.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.Info("log level reloaded", "level", level.String())
	return nil
}

func newActivitiesCmd() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Print the activities the server would start with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := registry.Seed()
			if seedFile != "" {
				var err error
				if seed, err = registry.LoadSeedFile(seedFile); err != nil {
					return err
				}
			}
			return printActivities(cmd.OutOrStdout(), seed)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file to read instead of the built-in activities")
	return cmd
}

func printActivities(w io.Writer, activities map[string]registry.Activity) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTIVITY\tSCHEDULE\tENROLLED")
	for _, name := range registry.Sorted(activities) {
		a := activities[name]
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\n", name, a.Schedule, len(a.Participants), a.MaxParticipants)
	}
	return tw.Flush()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			props := buildinfo.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "signupd version %s\n", props.Version)
			fmt.Fprintf(out, "  commit: %s\n", props.GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", props.BuildTime)
		},
	}
}
