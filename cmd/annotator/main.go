package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/pdf-annotator/internal/outcome"
)

var (
	configPath string
	owner      string
	jsonOutput bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		code := outcome.Classify(err)
		fmt.Fprintf(os.Stderr, "annotator: %s: %v\n", code, err)
		os.Exit(outcome.ExitCode(code))
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotator",
		Short: "Manage annotated PDF documents",
		Long: `annotator stores PDF documents with one note per page, renders page previews,
exports annotated PDFs and note digests, and moves collections in and out of
backup archives.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default config.toml)")
	cmd.PersistentFlags().StringVarP(&owner, "owner", "u", defaultOwner(), "Owner whose documents are managed")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	cmd.AddCommand(
		newMigrateCmd(),
		newDocumentsCmd(),
		newPagesCmd(),
		newNotesCmd(),
		newRenderCmd(),
		newExportCmd(),
		newImportCmd(),
		newCacheCmd(),
	)
	return cmd
}

func defaultOwner() string {
	if u := os.Getenv("ANNOTATOR_OWNER"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
