package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"postboard/app/config"
	"postboard/app/logging"
	"postboard/app/repositories"
	"postboard/app/server"

	"github.com/spf13/cobra"
)

const cliVersion = "1.0.0"

const defaultConfigPath = "postboard.toml"

// exit is swapped out by tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the CLI against os.Args and exits non-zero on failure.
func RealMain() {
	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "postboard",
		Short:        "A small blog with image uploads",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the TOML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newConfigCmd(&configPath, load),
		newDBCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "postboard version %s\n", cliVersion)
			},
		},
	)
	return root
}

type loader func() (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func newConfigCmd(configPath *string, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig("data")
			if err := config.Init(*configPath, cfg); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", *configPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			m := &config.Manager{}
			return m.Write(cmd.OutOrStdout(), cfg)
		},
	})
	return cmd
}

func newDBCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Back up and restore the badger database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "backup [file]",
		Short: "Write a full backup of the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := requireBadger(cfg); err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
				return fmt.Errorf("no database exists at %s", cfg.Database.Path)
			}

			backupFile := filepath.Join("data", "backups", fmt.Sprintf("backup_%d.db", time.Now().Unix()))
			if len(args) == 1 {
				backupFile = args[0]
			}
			if err := os.MkdirAll(filepath.Dir(backupFile), 0755); err != nil {
				return fmt.Errorf("failed to create backup directory: %w", err)
			}

			db, err := repositories.OpenBadger(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Create(backupFile)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			if _, err := repositories.Backup(db, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database backed up successfully to %s\n", backupFile)
			return nil
		},
	})

	var yes bool
	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := requireBadger(cfg); err != nil {
				return err
			}

			backupFile := args[0]
			fi, err := os.Stat(backupFile)
			if err != nil {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", backupFile)
			}

			dbPath := cfg.Database.Path
			if _, err := os.Stat(dbPath); err == nil {
				if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Existing database found. Do you want to replace it? [y/N] ") {
					fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
					return nil
				}
				if err := os.RemoveAll(dbPath); err != nil {
					return fmt.Errorf("failed to remove existing database: %w", err)
				}
			}
			if err := os.MkdirAll(dbPath, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}

			db, err := repositories.OpenBadger(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Open(backupFile)
			if err != nil {
				return fmt.Errorf("failed to open backup file: %w", err)
			}
			defer f.Close()

			if err := repositories.Restore(db, f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database restored successfully")
			return nil
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing database without asking")
	cmd.AddCommand(restore)
	return cmd
}

func requireBadger(cfg *config.Config) error {
	if cfg.Database.Type != "badger" {
		return fmt.Errorf("backup and restore need a badger database, configured type is %s", cfg.Database.Type)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
