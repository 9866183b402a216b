// Package cmd provides the quill command-line interface.
//
// Configuration sources, highest priority first:
//
//  1. command-line flags (--port, --cite-style, ...)
//  2. QUILL_-prefixed environment variables (QUILL_SERVER_PORT, ...)
//  3. a .quill.yml file in the current directory (or --config)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/quillforge/quill/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Composable document-authoring macros with a preview server",
	Long: `Quill renders structured documents (YAML macro trees or markdown with
front matter) to HTML through a library of composable macros: element
wrappers, pseudocode listings with line numbers and highlights,
rainbow-delimited structured code, and citations with a bibliography.

Quick start:
  quill render paper.md -o paper.html   Render a document
  quill serve paper.md                  Preview with live reload
  quill list                            Show available macros
  quill validate paper.md               Check a document without rendering`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .quill.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
	})
}

// bindFlags wires flags into viper under their config keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".quill")
	}

	viper.SetEnvPrefix("QUILL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// A missing config file is fine; defaults and env cover everything.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() logging.Logger {
	return logging.New(logging.Config{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	})
}
