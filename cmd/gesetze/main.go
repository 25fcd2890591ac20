package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coolbeans/gesetze/pkg/citation"
	"github.com/coolbeans/gesetze/pkg/config"
	"github.com/coolbeans/gesetze/pkg/linker"
	"github.com/coolbeans/gesetze/pkg/provider"
	"github.com/coolbeans/gesetze/pkg/server"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gesetze",
		Short: "Link German legal norms to online legal-text providers",
		Long: `Gesetze finds citations of German and European legal norms such as
"Art. 12 Abs. 1 GG" or "§ 433 II BGB" in text and turns them into links to
gesetze-im-internet.de, dejure.org, buzer.de or lexparency.de.

Configuration is read from gesetze.yaml (or --config), a .env file and
GESETZE_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default gesetze.yaml if present)")

	rootCmd.AddCommand(linkCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(romanCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

// loadConfig reads the config file and applies the resolver flags of cmd,
// if it has any.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("providers") {
		cfg.Providers, _ = flags.GetStringSlice("providers")
	}
	if flags.Changed("block") {
		cfg.Block, _ = flags.GetStringSlice("block")
	}
	if flags.Changed("title") {
		name, _ := flags.GetString("title")
		mode, err := provider.ParseTitleMode(name)
		if err != nil {
			return nil, err
		}
		cfg.Title = mode
	}
	if flags.Changed("attr") {
		pairs, _ := flags.GetStringArray("attr")
		for _, pair := range pairs {
			attr, err := linker.ParseAttribute(pair)
			if err != nil {
				return nil, err
			}
			cfg.Attributes.Set(attr.Name, attr.Value)
		}
	}
	return cfg, nil
}

func addResolverFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("providers", nil, "Provider preference order (gesetze, dejure, buzer, lexparency)")
	cmd.Flags().StringSlice("block", nil, "Providers to never link to")
	cmd.Flags().String("title", "", "Link title: "+strings.Join(provider.TitleModeNames(), ", "))
	cmd.Flags().StringArray("attr", nil, "Extra link attribute as name=value (repeatable)")
}

// readInput reads the named file, or stdin when no file is given or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// convertAbsatz rewrites a roman absatz in place. Matches without one are
// left alone.
func convertAbsatz(match *citation.Match) error {
	if _, ok := match.Absatz(); !ok {
		return nil
	}
	converted, err := match.ArabicAbsatz()
	if err != nil {
		return err
	}
	match.Parts[citation.FieldAbsatz] = converted
	return nil
}

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link [file]",
		Short: "Turn legal norm citations into links",
		Long: `Rewrite every valid citation in the input into an anchor tag.

Plain text is rewritten as a whole. HTML input only has its text nodes
rewritten, and Markdown is rendered to HTML first.

Examples:
  gesetze link notes.txt
  echo "§ 433 II BGB" | gesetze link --title full
  gesetze link --format html --providers dejure --attr class=law page.html
  gesetze link --format markdown README.md --output README.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			resolver, err := cfg.NewResolver()
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var linked string
			switch format {
			case server.FormatText:
				linked = resolver.Linkify(string(input))
			case server.FormatHTML:
				linked, err = resolver.LinkifyHTML(string(input))
			case server.FormatMarkdown:
				linked, err = resolver.LinkifyMarkdown(input)
			default:
				return fmt.Errorf("unsupported format %q (want text, html or markdown)", format)
			}
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(linked), 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				return nil
			}
			_, err = io.WriteString(cmd.OutOrStdout(), linked)
			return err
		},
	}

	cmd.Flags().StringP("format", "f", server.FormatText, "Input format (text, html, markdown)")
	cmd.Flags().StringP("output", "o", "", "Write the result to a file instead of stdout")
	addResolverFlags(cmd)

	return cmd
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "List the citations found in the input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			arabic, _ := cmd.Flags().GetBool("arabic")

			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			matches := citation.ExtractAll(string(input))
			if arabic {
				for _, match := range matches {
					if err := convertAbsatz(match); err != nil {
						return err
					}
				}
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), matches)
			}

			out := cmd.OutOrStdout()
			for _, match := range matches {
				if arabic {
					fmt.Fprintf(out, "%d-%d\t%s\t%s\n", match.Start, match.End, match.Text, match)
					continue
				}
				fmt.Fprintf(out, "%d-%d\t%s\n", match.Start, match.End, match.Text)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print matches with spans and parts as JSON")
	cmd.Flags().Bool("arabic", false, "Convert roman absatz values to arabic numerals and print the parts")

	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <citation>",
		Short: "Split a citation into its parts",
		Long: `Split a citation into norm, absatz, satz, nr, lit and gesetz.

Examples:
  gesetze analyze "Art. 12 Abs. 1 GG"
  gesetze analyze --arabic "§ 433 II BGB"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			arabic, _ := cmd.Flags().GetBool("arabic")

			match, ok := citation.Analyze(args[0])
			if !ok {
				return fmt.Errorf("no citation found in %q", args[0])
			}

			if arabic {
				if err := convertAbsatz(match); err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), match)
			}

			out := cmd.OutOrStdout()
			for _, field := range citation.Fields {
				if value, ok := match.Part(field); ok {
					fmt.Fprintf(out, "%-7s %s\n", field+":", value)
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the match as JSON")
	cmd.Flags().Bool("arabic", false, "Convert a roman absatz to arabic numerals")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <citation>",
		Short: "Check whether any provider can link a citation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			resolver, err := cfg.NewResolver()
			if err != nil {
				return err
			}

			match, ok := resolver.Pattern().Analyze(args[0])
			if !ok {
				return fmt.Errorf("no citation found in %q", args[0])
			}
			resolution, ok := resolver.Resolve(match)
			if !ok {
				return fmt.Errorf("%q: no provider can link this citation", match.Text)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "provider: %s\n", resolution.Provider)
			fmt.Fprintf(out, "href:     %s\n", resolution.Href())
			if title := resolution.Title(); title != "" {
				fmt.Fprintf(out, "title:    %s\n", title)
			}
			return nil
		},
	}

	addResolverFlags(cmd)

	return cmd
}

func providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List providers in effective order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			resolver, err := cfg.NewResolver()
			if err != nil {
				return err
			}

			active := make(map[string]bool)
			for _, p := range resolver.Active() {
				active[p.ID()] = true
			}

			out := cmd.OutOrStdout()
			for index, id := range resolver.Providers() {
				p, _ := resolver.Provider(id)
				status := ""
				if !active[id] {
					status = " (blocked)"
				}
				fmt.Fprintf(out, "%d. %-11s %-24s %4d laws%s\n", index+1, id, p.Name(), p.Library().Len(), status)
			}
			return nil
		},
	}

	addResolverFlags(cmd)

	return cmd
}

func romanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roman <numeral>",
		Short: "Convert a roman numeral to arabic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := citation.RomanToArabic(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serve the linking API over HTTP.

Endpoints:
  GET  /health
  GET  /api/providers
  POST /api/analyze   {"text": "..."}
  POST /api/validate  {"text": "..."}
  POST /api/link      {"text": "...", "format": "text|html|markdown"}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			resolver, err := cfg.NewResolver()
			if err != nil {
				return err
			}

			if cfg.Watch {
				watcher, err := cfg.WatchLibraries(resolver, log)
				if err != nil {
					return err
				}
				if watcher != nil {
					defer watcher.Stop()
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(resolver, log, cfg.Server.MaxBodyBytes)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	addResolverFlags(cmd)

	return cmd
}
