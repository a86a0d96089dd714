// Package cli implements the reqflow command line tool.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/denysbsb/reqflow"
	"github.com/denysbsb/reqflow/config"
	"github.com/denysbsb/reqflow/mapping"
)

type getOptions struct {
	configPath string
	mapper     string
	headers    []string
	timeout    time.Duration
	verbose    bool
}

// NewRootCommand builds the command tree writing results to stdout and
// diagnostics to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "reqflow",
		Short: "HTTP requests with lifecycle plugins and JSONPath response mapping",
		Long: `reqflow performs HTTP requests through a client that publishes its
request lifecycle to plugins, and maps JSON responses into named results
with the mappers defined in a YAML, TOML or JSON config file.`,
		Version:       reqflow.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)

	var noColor bool
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	}

	root.AddCommand(newGetCommand(stdout, stderr))
	root.AddCommand(newMapCommand(stdout))
	root.AddCommand(newVersionCommand(stdout))
	return root
}

// Execute runs the tool with the process arguments and returns the exit code.
func Execute() int {
	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		return 1
	}
	return 0
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return writeJSON(stdout, reqflow.GetVersionInfo())
			}
			_, err := fmt.Fprintln(stdout, reqflow.GetVersion())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version metadata as JSON")
	return cmd
}

func newGetCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &getOptions{}
	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "GET a URL and print the (optionally mapped) JSON body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), opts, args[0], stdout, stderr)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .toml, .json)")
	cmd.Flags().StringVarP(&opts.mapper, "mapper", "m", "", "name of the mapper to apply")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "request header 'Name: value' (repeatable)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (overrides config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log lifecycle events to stderr")
	return cmd
}

func newMapCommand(stdout io.Writer) *cobra.Command {
	var configPath, mapperName string
	cmd := &cobra.Command{
		Use:   "map FILE",
		Short: "Apply a configured mapper to a local JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			m, err := cfg.Mapper(mapperName, nil)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result, err := m.TransformJSON(data)
			if err != nil {
				return err
			}
			return writeJSON(stdout, result)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .toml, .json)")
	cmd.Flags().StringVarP(&mapperName, "mapper", "m", "", "name of the mapper to apply")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("mapper")
	return cmd
}

func runGet(ctx context.Context, opts *getOptions, url string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg config.Config
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var m *mapping.Mapper
	if opts.mapper != "" {
		built, err := cfg.Mapper(opts.mapper, nil)
		if err != nil {
			return err
		}
		m = built
	}

	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: color.NoColor, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	clientOpts := cfg.ClientOptions(reqflow.NewZerologLogger(zl))
	clientOpts = append(clientOpts,
		reqflow.WithLifecycle(reqflow.NewLifecycle()),
		reqflow.WithPlugins(reqflow.NewRegistry()),
		reqflow.WithDefaultHeaders(headers),
	)
	if opts.timeout > 0 {
		clientOpts = append(clientOpts, reqflow.WithTimeout(opts.timeout))
	}
	if opts.verbose {
		clientOpts = append(clientOpts, reqflow.WithPlugin("log", reqflow.NewLoggingPlugin(zl.Level(zerolog.DebugLevel))))
	}

	client := reqflow.New(clientOpts...)
	if !client.IsValid() {
		return client.ValidationError()
	}

	resp, err := client.Get(ctx, url)
	if err != nil {
		if failed := reqflow.ResponseOf(err); failed != nil && failed.Err == nil {
			printStatus(stderr, failed, false)
			_ = writeBody(stdout, failed.Body)
		}
		return err
	}
	printStatus(stderr, resp, true)

	if m == nil {
		return writeBody(stdout, resp.Body)
	}
	result, err := resp.Map(m)
	if err != nil {
		return err
	}
	return writeJSON(stdout, result)
}

func parseHeaders(raw []string) (http.Header, error) {
	headers := http.Header{}
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, want 'Name: value'", h)
		}
		headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return headers, nil
}

func printStatus(w io.Writer, resp *reqflow.Response, ok bool) {
	lbl := color.New(color.FgWhite).Add(color.BgGreen).Sprintf(" OK  ")
	if !ok {
		lbl = color.New(color.FgWhite).Add(color.BgRed).Sprintf(" ERR ")
	}
	dim := color.New(color.FgWhite, color.Faint)
	fmt.Fprintf(w, "%s %d %s %s\n", lbl, resp.StatusCode, resp.URL, dim.Sprint(resp.Duration.Round(time.Millisecond)))
}

// writeBody pretty-prints JSON bodies and copies anything else verbatim.
func writeBody(w io.Writer, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		_, werr := w.Write(body)
		return werr
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
