package main

import (
	"fmt"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/pdf-annotator/internal/compose"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Produce annotated PDFs, note digests and backup archives",
	}
	cmd.AddCommand(
		newExportPDFCmd(),
		newExportDigestCmd(),
		newExportArchiveCmd(),
		newExportInfoCmd(),
	)
	return cmd
}

// deliver moves a generated file to output, or to the suggested filename
// in the current directory when output is empty or a directory.
func deliver(cmd *cobra.Command, path, suggested, output string) error {
	dst := output
	if dst == "" {
		dst = suggested
	} else if isDir(dst) {
		dst = filepath.Join(dst, suggested)
	}

	if err := moveArtifact(path, dst); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dst)
	return nil
}

func newExportPDFCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Write the PDF with each note stamped below its page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withService(func(s *Service) error {
				if _, err := s.owned(cmd.Context(), id); err != nil {
					return err
				}
				artifact, err := s.domain.Compose.ExportPDF(cmd.Context(), id)
				if err != nil {
					return err
				}
				return deliver(cmd, artifact.Path, artifact.Filename, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory")
	return cmd
}

func newExportDigestCmd() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "digest <id>",
		Short: "Write the notes of a document as Markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := compose.ParseFormat(format)
			if err != nil {
				return err
			}

			return withService(func(s *Service) error {
				if _, err := s.owned(cmd.Context(), id); err != nil {
					return err
				}
				artifact, err := s.domain.Compose.ExportDigest(cmd.Context(), id, f)
				if err != nil {
					return err
				}
				return deliver(cmd, artifact.Path, artifact.Filename, output)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(compose.FormatMarkdown), "Digest format (md or html)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory")
	return cmd
}

func newExportArchiveCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive [id...]",
		Short: "Write a backup archive of all or the given documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return withService(func(s *Service) error {
				archive, err := s.domain.Backup.Export(cmd.Context(), owner, ids)
				if err != nil {
					return err
				}
				if err := deliver(cmd, archive.Path, archive.Filename, output); err != nil {
					return err
				}
				if !jsonOutput {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d documents archived\n", archive.Documents)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory")
	return cmd
}

func newExportInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Preview the size of a full backup archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(s *Service) error {
				info, err := s.domain.Backup.Info(cmd.Context(), owner)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), info)
				}
				t := newTable(cmd.OutOrStdout())
				fmt.Fprintf(t, "Documents\t%d\n", info.DocumentCount)
				fmt.Fprintf(t, "Notes\t%d\n", info.AnnotationCount)
				fmt.Fprintf(t, "Estimated size\t%s\n", units.HumanSize(float64(info.EstimatedSizeBytes)))
				return t.Flush()
			})
		},
	}
}
