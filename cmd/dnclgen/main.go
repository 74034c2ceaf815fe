// Package main provides the dnclgen CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/dnclgen/cli"
	"github.com/richinex/dnclgen/config"
	"github.com/richinex/dnclgen/model"
)

var (
	// Global flags
	provider string
	cacheDir string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "dnclgen",
		Short: "Translate DNCL pseudocode into runnable programs",
		Long: `Translate DNCL (the pseudocode used in Japanese common tests) into a
program in a general-purpose language by asking an LLM.

Answers are cached by a fingerprint of the full request, so translating the
same source with the same parameters never calls the service twice.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider ("+strings.Join(config.SupportedProviders(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Response cache directory (default $DNCL_CACHE_DIR or gpt_responses)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(keyCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(historyCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func globalOptions() cli.Options {
	return cli.Options{
		Provider: provider,
		CacheDir: cacheDir,
		Verbose:  verbose,
	}
}

// inputFlags registers the flags shared by translate and key.
func inputFlags(cmd *cobra.Command, in *cli.Input, seed *int64, maxTokens *uint32) {
	cmd.Flags().StringVar(&in.Text, "text", "", "DNCL source (may start with @directives)")
	cmd.Flags().StringVar(&in.Model, "model", "", "Model id (default depends on provider)")
	cmd.Flags().Int64Var(seed, "seed", 0, "Sampling seed (default derived from the source)")
	cmd.Flags().Uint32Var(maxTokens, "max-tokens", 0, "Completion token ceiling")
	cmd.Flags().StringVarP(&in.Target, "target", "t", "", "Target language ("+strings.Join(model.Targets(), ", ")+")")
}

// finishInput applies positional args and flags that need Changed checks.
func finishInput(cmd *cobra.Command, args []string, in *cli.Input, seed int64, maxTokens uint32) {
	if len(args) > 0 {
		in.File = args[0]
	}
	if in.File == "" && in.Text == "" {
		in.Stdin = cmd.InOrStdin()
	}
	if cmd.Flags().Changed("seed") {
		in.Seed = &seed
	}
	if cmd.Flags().Changed("max-tokens") {
		in.MaxTokens = &maxTokens
	}
}

func translateCmd() *cobra.Command {
	var in cli.Input
	var seed int64
	var maxTokens uint32

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate a DNCL program",
		Long: `Translate a DNCL program read from a file, --text, or stdin.

Inline input may begin with directives:
  @model = "gpt-4o", @seed = 42; @max_completion_tokens = 2048
Flags override directives.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finishInput(cmd, args, &in, seed, maxTokens)
			return cli.Translate(cmd.Context(), in, globalOptions(), cmd.OutOrStdout())
		},
	}

	inputFlags(cmd, &in, &seed, &maxTokens)
	cmd.Flags().StringVarP(&in.Out, "out", "o", "", "Write the code to this file")
	cmd.Flags().BoolVar(&in.CheckModel, "check-model", false, "Verify the model against the provider's model list first")

	return cmd
}

func keyCmd() *cobra.Command {
	var in cli.Input
	var seed int64
	var maxTokens uint32

	cmd := &cobra.Command{
		Use:   "key [file]",
		Short: "Print the cache key for an input without calling the service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finishInput(cmd, args, &in, seed, maxTokens)
			return cli.Key(cmd.Context(), in, globalOptions(), cmd.OutOrStdout())
		},
	}

	inputFlags(cmd, &in, &seed, &maxTokens)

	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models offered by the provider",
		Long: `List models offered by the provider.

The list is cached in available_models.toml inside the cache directory and
fetched again only when that file is removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Models(cmd.Context(), globalOptions(), cmd.OutOrStdout())
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded translations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.History(cmd.Context(), limit, globalOptions(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")

	return cmd
}
