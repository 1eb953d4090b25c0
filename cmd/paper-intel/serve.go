// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-intel/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser UI",
	Long: `Serve starts the upload form. Choose two or more PDFs, submit, and the report
is rendered in the page. When the model credential is missing the page shows
a configuration banner and analysis stays disabled.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Int64("max-upload-bytes", 0, "upper bound on one upload request (default 64 MiB)")

	bindFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	bindFlag("server.max_upload_bytes", serveCmd.Flags().Lookup("max-upload-bytes"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	a, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s on %s\n", web.Title, cfg.Server.Addr)
	return web.New(a, cfg.Server, logger).ListenAndServe(ctx)
}
