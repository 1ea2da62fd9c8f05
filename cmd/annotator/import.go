package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore backup archives or import PDF directories",
	}
	cmd.AddCommand(newImportArchiveCmd(), newImportDirCmd())
	return cmd
}

func newImportArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <file.zip>",
		Short: "Restore documents and notes from a backup archive",
		Long: `Restore documents and notes from a backup archive.

Every restored document receives a new id, so importing an archive twice
yields two copies. Records whose source file is missing from the archive,
whose checksum does not match, or whose metadata is unusable are skipped and
counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(s *Service) error {
				stats, err := s.domain.Backup.Import(cmd.Context(), owner, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), stats)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents (%d notes), skipped %d\n",
					stats.DocumentsImported, stats.AnnotationsImported, stats.DocumentsSkipped)
				return nil
			})
		},
	}
}

func newImportDirCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "dir <root>",
		Short: "Import every PDF below a directory",
		Long: `Import every PDF below a directory.

Each immediate subdirectory names the author as "Last_First" or "Last-First".
Files whose name was already uploaded by the owner are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(s *Service) error {
				stats, err := s.domain.Backup.ImportDirectory(cmd.Context(), owner, args[0], subject)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), stats)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, failed %d\n",
					stats.Imported, stats.Skipped, stats.Failed)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject assigned to every imported document")
	return cmd
}
