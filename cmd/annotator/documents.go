package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/pdf-annotator/internal/documents"
)

func newDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List, add and manage documents",
	}
	cmd.AddCommand(
		newDocumentsListCmd(),
		newDocumentsAddCmd(),
		newDocumentsShowCmd(),
		newDocumentsDeleteCmd(),
		newDocumentsMetaCmd(),
	)
	return cmd
}

func newDocumentsListCmd() *cobra.Command {
	var search, subject string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filters documents.Filters
			if cmd.Flags().Changed("search") {
				filters.Search = &search
			}
			if cmd.Flags().Changed("subject") {
				filters.Subject = &subject
			}
			filters.Limit = limit

			return withService(func(s *Service) error {
				ctx := cmd.Context()
				list, err := s.domain.Documents.List(ctx, owner, filters)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), list)
				}

				stats, err := s.domain.Documents.Stats(ctx, owner)
				if err != nil {
					return err
				}

				t := newTable(cmd.OutOrStdout())
				fmt.Fprintln(t, "ID\tFILE\tPAGES\tNOTES\tAUTHOR\tSUBJECT\tLAST EDITED")
				for _, d := range list {
					fmt.Fprintf(t, "%s\t%s\t%d\t%d\t%s %s\t%s\t%s\n",
						d.ID, d.OriginalFilename, d.PageCount, d.NoteCount,
						d.LastName, d.FirstName, d.Subject, formatTime(d.LastEdited))
				}
				t.Flush()
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d documents, %d notes, %d bytes\n",
					stats.DocumentCount, stats.AnnotationCount, stats.TotalBytes)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive text in filename, author, title or subject")
	cmd.Flags().StringVar(&subject, "subject", "", "Exact subject")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of documents")
	return cmd
}

func metadataFlags(cmd *cobra.Command, m *documents.Metadata) {
	cmd.Flags().StringVar(&m.FirstName, "first", "", "Author first name")
	cmd.Flags().StringVar(&m.LastName, "last", "", "Author last name")
	cmd.Flags().StringVar(&m.Title, "title", "", "Title")
	cmd.Flags().StringVar(&m.Year, "year", "", "Year")
	cmd.Flags().StringVar(&m.Subject, "subject", "", "Subject")
}

func newDocumentsAddCmd() *cobra.Command {
	var meta documents.Metadata

	cmd := &cobra.Command{
		Use:   "add <file.pdf>...",
		Short: "Upload PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(s *Service) error {
				for _, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}

					doc, err := s.domain.Documents.Upload(cmd.Context(), documents.UploadCommand{
						Owner:    owner,
						Filename: filepath.Base(path),
						Data:     data,
						Metadata: meta,
					})
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}

					if jsonOutput {
						if err := printJSON(cmd.OutOrStdout(), doc); err != nil {
							return err
						}
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d pages\n", doc.ID, doc.OriginalFilename, doc.PageCount)
				}
				return nil
			})
		},
	}
	metadataFlags(cmd, &meta)
	return cmd
}

func newDocumentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a document and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withService(func(s *Service) error {
				ctx := cmd.Context()
				doc, err := s.owned(ctx, id)
				if err != nil {
					return err
				}
				notes, err := s.domain.Documents.Annotations(ctx, id)
				if err != nil {
					return err
				}

				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), struct {
						*documents.Document
						Annotations []documents.Annotation `json:"annotations"`
					}{doc, notes})
				}

				w := cmd.OutOrStdout()
				printDocument(w, doc)
				for _, n := range notes {
					if n.NoteText == "" {
						continue
					}
					fmt.Fprintf(w, "\n[page %d, %s]\n%s\n", n.PageNumber, formatTime(n.UpdatedAt), n.NoteText)
				}
				return nil
			})
		},
	}
}

func newDocumentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document, its notes and its source file",
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
				deleted, err := s.domain.Documents.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("%w: %s", documents.ErrNotFound, id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}
}

func newDocumentsMetaCmd() *cobra.Command {
	var meta documents.Metadata

	cmd := &cobra.Command{
		Use:   "meta <id>",
		Short: "Update document metadata; only given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var update documents.MetadataUpdate
			changed := func(name string, v *string) *string {
				if cmd.Flags().Changed(name) {
					return v
				}
				return nil
			}
			update.FirstName = changed("first", &meta.FirstName)
			update.LastName = changed("last", &meta.LastName)
			update.Title = changed("title", &meta.Title)
			update.Year = changed("year", &meta.Year)
			update.Subject = changed("subject", &meta.Subject)

			return withService(func(s *Service) error {
				if _, err := s.owned(cmd.Context(), id); err != nil {
					return err
				}
				doc, err := s.domain.Documents.UpdateMetadata(cmd.Context(), id, update)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), doc)
				}
				printDocument(cmd.OutOrStdout(), doc)
				return nil
			})
		},
	}
	metadataFlags(cmd, &meta)
	return cmd
}
