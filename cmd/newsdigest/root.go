package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsDigest/internal/app"
	"NewsDigest/internal/config"
	"NewsDigest/internal/digest"
	"NewsDigest/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsdigest",
		Short:         "Aggregate news sources into one digest document",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newAuthCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		configPath string
		outputPath string
		preview    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch all sources and write the digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if outputPath != "" {
				cfg.Output.Path = outputPath
			}

			logger := logging.New(cfg.Logging)
			doc, err := app.New(cfg, logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			logger.Info("digest written", "path", cfg.Output.Path)
			if preview {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, digest.Preview(doc, cfg.Digest.PreviewLength)+"...")
				fmt.Fprintf(out, "\nFull digest: %s\n", cfg.Output.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config (default $NEWSDIGEST_CONFIG)")
	cmd.Flags().StringVar(&outputPath, "output", "", "override output.path")
	cmd.Flags().BoolVar(&preview, "preview", true, "print the start of the digest to stdout")
	return cmd
}
