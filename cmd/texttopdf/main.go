package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/texttopdf/pkg/texttopdf/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalOptions struct {
	storage  string
	fsDir    string
	logLevel string
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "texttopdf",
		Short: "Convert plain-text bucket objects to PDF",
		Long: `texttopdf runs the text to PDF conversion outside of Lambda.

Storage is configured from the environment (STORAGE_BACKEND, FS_BASE_DIR,
AWS_* variables); the flags below override it.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "storage backend: memory, fs or s3")
	rootCmd.PersistentFlags().StringVar(&opts.fsDir, "fs-dir", "", "base directory for the fs backend (implies --storage fs)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(NewConvertCommand(opts))
	rootCmd.AddCommand(NewRenderCommand())

	return rootCmd
}

func (o *globalOptions) load() (*config.Config, error) {
	options := []config.Option{config.WithEnv()}
	if o.storage != "" {
		options = append(options, config.WithStorageBackend(o.storage))
	}
	if o.fsDir != "" {
		options = append(options, config.WithFSBaseDir(o.fsDir))
	}
	if o.logLevel != "" {
		level := o.logLevel
		options = append(options, func(c *config.Config) error {
			c.Log.Level = level
			return nil
		})
	}
	return config.Load(options...)
}
