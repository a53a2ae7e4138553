package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tendant/texttopdf/pkg/texttopdf"
)

func NewConvertCommand(opts *globalOptions) *cobra.Command {
	var eventFile, bucket, key string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Run one conversion against the configured storage",
		Long: `Convert reads a bucket notification from --event (use - for stdin) or
builds one from --bucket and --key, runs the conversion and prints the
invocation result as JSON. The memory backend starts empty in every process,
so convert needs --storage fs (or --fs-dir) or --storage s3.`,
		Example: `  texttopdf convert --fs-dir ./data --bucket docs --key notes.txt
  texttopdf convert --storage s3 --event event.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := eventPayload(eventFile, bucket, key)
			if err != nil {
				return err
			}

			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.StorageBackend == "memory" {
				return errors.New("convert needs a persistent storage backend: use --storage fs or --storage s3")
			}
			converter, err := cfg.BuildConverter(cfg.BuildLogger())
			if err != nil {
				return err
			}

			resp := converter.Handle(cmd.Context(), raw)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return errors.New(strings.TrimPrefix(resp.Body, "Error: "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&eventFile, "event", "e", "", "path to an S3 notification JSON file, - for stdin")
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "source bucket")
	cmd.Flags().StringVarP(&key, "key", "k", "", "source object key (unencoded)")

	return cmd
}

func eventPayload(eventFile, bucket, key string) ([]byte, error) {
	switch {
	case eventFile == "-":
		return io.ReadAll(os.Stdin)
	case eventFile != "":
		return os.ReadFile(eventFile)
	case bucket != "" && key != "":
		return json.Marshal(texttopdf.NewEvent(bucket, key))
	default:
		return nil, errors.New("either --event or both --bucket and --key are required")
	}
}

func NewRenderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <file.txt>",
		Short: "Render a local text file to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = texttopdf.DeriveOutputKey(input)
				if output == input {
					output = input + ".pdf"
				}
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			text, err := texttopdf.DecodeText(data)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}

			doc := texttopdf.Layout(texttopdf.SplitLines(text))
			pdf, err := texttopdf.NewRenderer().Render(doc)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			if err := os.WriteFile(output, pdf, 0644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages, %d rows, %d bytes\n", output, len(doc.Pages), doc.RowCount(), len(pdf))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: input with .txt replaced by .pdf)")

	return cmd
}
