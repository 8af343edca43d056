package main

import (
	"fmt"

	"github.com/ALT-F4-LLC/eagleeye/internal/export"
	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

type exportResult struct {
	ID          string `json:"id"`
	Path        string `json:"path,omitempty"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
}

var exportCmd = &cobra.Command{
	Use:   "export <operation>",
	Short: "Export an operation as a word-processor document",
	Long: `Export an operation as a word-processor document.

The document is written as Planejamento_<name>.doc into --dir, the
configured export directory, or the working directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		toStdout, _ := cmd.Flags().GetBool("stdout")
		photos, _ := cmd.Flags().GetBool("photos")
		if toStdout && w.JSONMode {
			return cmdErr(fmt.Errorf("--stdout cannot be combined with --json"), output.ErrValidation)
		}

		ops, idx, err := findOperation(cmd, args[0])
		if err != nil {
			return err
		}
		op := ops[idx]

		doc, err := export.Render(op, export.Options{IncludePhotos: photos})
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		if toStdout {
			if _, err := doc.WriteTo(cmd.OutOrStdout()); err != nil {
				return cmdErr(fmt.Errorf("writing document: %w", err), output.ErrGeneral)
			}
			return nil
		}

		dir, ok := flagString(cmd, "dir")
		if !ok || dir == "" {
			dir = cfg.ExportDir()
		}

		path, err := export.WriteFile(doc, dir)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		w.Success(exportResult{
			ID:          op.ID,
			Path:        path,
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Bytes:       len(doc.Bytes()),
		}, fmt.Sprintf("Exported %s to %s", model.ShortID(op.ID), path))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("dir", "", "Directory to write the document into")
	exportCmd.Flags().Bool("photos", false, "Embed target photos in the document")
	exportCmd.Flags().Bool("stdout", false, "Write the document to stdout instead of a file")
	rootCmd.AddCommand(exportCmd)
}
