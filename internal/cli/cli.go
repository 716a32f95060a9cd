//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-posload.
package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-posload/internal/config"
	"github.com/pgEdge/pgedge-posload/internal/db"
	"github.com/pgEdge/pgedge-posload/internal/logging"
	"github.com/pgEdge/pgedge-posload/internal/views"
	"github.com/pgEdge/pgedge-posload/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-posload",
		Short: "Load point-of-sale exports into PostgreSQL for analysis",
		Long: `pgedge-posload reads the CSV exports of a point-of-sale system
(category sales, the sales summary and per-item transaction details),
cleans and validates them, and loads them into PostgreSQL in a single
transaction. Rows that fail validation are dropped and counted, never
loaded. A set of read-only analytical views can then be queried with
the 'report' command.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-posload.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	versionCmd.Flags().BoolVar(&versionShort, "short", false,
		"print only the version number")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newTabWriter(cmd *cobra.Command) *tabwriter.Writer {
	return newTabWriterTo(cmd.OutOrStdout())
}

func newTabWriterTo(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			cmd.Println(version.Short())
			return
		}
		cmd.Println(version.Info())
	},
}

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List available analytical views",
	Long: `List the read-only analytical views that can be queried with
'pgedge-posload report <view>'.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available views:")
		fmt.Fprintln(out)
		w := newTabWriter(cmd)
		for _, v := range views.All() {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", v.Name, v.Table, v.Description)
		}
		_ = w.Flush()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use 'pgedge-posload report <view>' to run one.")
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the built-in destination schema",
	Long: `Print the built-in DDL script. Redirect it to a file and point
sources.schema (or --schema) at it to load with the default layout.

Warning: the script drops and recreates the destination tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), db.DefaultSchema)
	},
}
