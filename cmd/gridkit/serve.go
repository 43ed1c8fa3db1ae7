package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/preview"
)

type serveOptions struct {
	addr string
}

func newServeCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve <config.yaml>",
		Short: "Run the local layout preview server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args[0], rootFlags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8490", "Address to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, configPath string, rootFlags *rootFlags, opts *serveOptions) error {
	doc, err := config.ParseDocument(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(rootFlags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return preview.NewServer(doc, log).ListenAndServe(ctx, opts.addr)
}
