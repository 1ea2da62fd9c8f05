package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Manage document pages",
	}
	cmd.AddCommand(newPagesDeleteCmd())
	return cmd
}

func newPagesDeleteCmd() *cobra.Command {
	var source bool

	cmd := &cobra.Command{
		Use:   "delete <id> <page>",
		Short: "Delete a page and renumber the following notes",
		Long: `Delete a page and renumber the following notes.

Without --source only the annotation set changes; with --source the page is
also removed from the stored PDF.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page, err := parsePage(args[1])
			if err != nil {
				return err
			}

			return withService(func(s *Service) error {
				if _, err := s.owned(cmd.Context(), id); err != nil {
					return err
				}
				docs := s.domain.Documents
				remove := docs.DeletePage
				if source {
					remove = docs.RemovePage
				}

				doc, err := remove(cmd.Context(), id, page)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), doc)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted page %d of %s, %d pages remain\n", page, doc.ID, doc.PageCount)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&source, "source", false, "Also remove the page from the stored PDF")
	return cmd
}

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Read and write page notes",
	}
	cmd.AddCommand(newNotesGetCmd(), newNotesSetCmd())
	return cmd
}

func newNotesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id> <page>",
		Short: "Print the note for a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page, err := parsePage(args[1])
			if err != nil {
				return err
			}

			return withService(func(s *Service) error {
				if _, err := s.owned(cmd.Context(), id); err != nil {
					return err
				}
				note, err := s.domain.Documents.Annotation(cmd.Context(), id, page)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), note)
				}
				fmt.Fprintln(cmd.OutOrStdout(), note.NoteText)
				return nil
			})
		},
	}
}

func newNotesSetCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set <id> <page> [text...]",
		Short: "Replace the note for a page",
		Long: `Replace the note for a page.

The note is taken from the remaining arguments, from --file, or from stdin
when --file is "-". An empty note clears the page.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page, err := parsePage(args[1])
			if err != nil {
				return err
			}

			text := strings.Join(args[2:], " ")
			if file != "" {
				text, err = readNote(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
			}

			return withService(func(s *Service) error {
				if _, err := s.owned(cmd.Context(), id); err != nil {
					return err
				}
				note, err := s.domain.Documents.UpsertAnnotation(cmd.Context(), id, page, text)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), note)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved note for page %d (%s)\n", note.PageNumber, formatTime(note.UpdatedAt))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `Read the note from a file ("-" for stdin)`)
	return cmd
}

func readNote(stdin io.Reader, file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
