package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/ldkit-go/config"
	"github.com/geoknoesis/ldkit-go/rdf"
	"github.com/geoknoesis/ldkit-go/shacl"
	"github.com/geoknoesis/ldkit-go/sparql"
	"github.com/geoknoesis/ldkit-go/vocab"
)

// app carries the resolved configuration and logger shared by the
// subcommands. Command output goes to stdout, logs to stderr.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	var (
		configPath string
		logLevel   string
	)
	root := &cobra.Command{
		Use:   appName,
		Short: "Linked-data toolkit: convert, query, and validate RDF graphs",
		Long: `ldkit works with RDF graphs in Turtle, JSON-LD, and N-Triples:

- convert parses one or more files, merges them, and re-serializes
- query runs a SPARQL CONSTRUCT subset over the merged inputs
- validate checks the inputs against a SHACL shapes graph

File arguments accept doublestar glob patterns (** included), so
"data/**/*.ttl" works the same in every shell and in config files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "version", "formats", "help":
				return nil
			}
			return a.init(configPath, logLevel)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultFile+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error")

	root.AddCommand(
		newConvertCmd(a),
		newQueryCmd(a),
		newValidateCmd(a),
		newFormatsCmd(a),
		newVersionCmd(a),
	)
	return root
}

// init layers configuration: defaults, then the config file, then
// flags. An explicit --config path must exist; the default file is
// optional.
func (a *app) init(configPath, logLevel string) error {
	path := configPath
	if path == "" {
		path = config.DefaultFile
	} else if _, err := os.Stat(path); err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slogLevel(cfg.LogLevel)}))
	return nil
}

func slogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		from string
		to   string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "convert [flags] FILE...",
		Short: "Parse RDF files, merge them, and serialize to another format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd.Context(), from, to, out, args)
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "input format (default: file extension, then content detection)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "output format (default: output extension, then config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func (a *app) runConvert(ctx context.Context, from, to, out string, patterns []string) error {
	paths, err := expandInputs(patterns)
	if err != nil {
		return err
	}
	g, err := a.loadGraphs(ctx, paths, from)
	if err != nil {
		return err
	}
	format, err := a.outputFormat(to, out)
	if err != nil {
		return err
	}
	return a.writeGraph(ctx, g, format, out)
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		queryPath string
		from      string
		to        string
		out       string
	)
	cmd := &cobra.Command{
		Use:   "query -q QUERY.rq [flags] FILE...",
		Short: "Run a CONSTRUCT query over RDF files and serialize the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd.Context(), queryPath, from, to, out, args)
		},
	}
	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "CONSTRUCT query file")
	cmd.Flags().StringVarP(&from, "from", "f", "", "input format (default: file extension, then content detection)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "output format (default: output extension, then config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) runQuery(ctx context.Context, queryPath, from, to, out string, patterns []string) error {
	text, err := os.ReadFile(queryPath)
	if err != nil {
		return err
	}
	q, err := sparql.ParseQuery(string(text))
	if err != nil {
		return fmt.Errorf("%s: %w", queryPath, err)
	}

	paths, err := expandInputs(patterns)
	if err != nil {
		return err
	}
	data, err := a.loadGraphs(ctx, paths, from)
	if err != nil {
		return err
	}

	result, err := q.Construct(data)
	if err != nil {
		return err
	}
	a.logger.Debug("query evaluated", "data_triples", data.Len(), "result_triples", result.Len())

	format, err := a.outputFormat(to, out)
	if err != nil {
		return err
	}
	return a.writeGraph(ctx, result, format, out)
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		shapesPath   string
		from         string
		reportFormat string
		out          string
		watch        bool
	)
	cmd := &cobra.Command{
		Use:   "validate -s SHAPES [flags] FILE...",
		Short: "Validate RDF files against a SHACL shapes graph",
		Long: `validate loads the data files and the shapes graph, evaluates the
shapes, and prints a validation report.

Exit codes: 0 when the data conforms, 1 when violations were found,
2 on operational errors (unreadable files, parse failures, malformed
shape definitions).

With --watch the command keeps running and re-validates whenever a
data or shapes file changes; errors are logged instead of fatal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.Context(), shapesPath, from, reportFormat, out, watch, args)
		},
	}
	cmd.Flags().StringVarP(&shapesPath, "shapes", "s", "", "shapes graph file")
	cmd.Flags().StringVarP(&from, "from", "f", "", "data input format (default: file extension, then content detection)")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "report format: text or an RDF format name (default: config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "report output file (default: stdout)")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-validate whenever an input file changes")
	_ = cmd.MarkFlagRequired("shapes")
	return cmd
}

func (a *app) runValidate(ctx context.Context, shapesPath, from, reportFormat, out string, watch bool, patterns []string) error {
	if reportFormat == "" {
		reportFormat = a.cfg.Validation.ReportFormat
	}
	if reportFormat != "text" {
		if f, ok := rdf.ParseFormat(reportFormat); !ok || f == rdf.FormatAuto {
			return fmt.Errorf("unknown report format %q", reportFormat)
		}
	}

	paths, err := expandInputs(patterns)
	if err != nil {
		return err
	}

	validate := func(ctx context.Context) (bool, error) {
		shapesGraph, err := a.loadGraph(ctx, shapesPath, rdf.FormatAuto)
		if err != nil {
			return false, err
		}
		shapes, err := shacl.ParseShapes(shapesGraph)
		if err != nil {
			return false, err
		}
		data, err := a.loadGraphs(ctx, paths, from)
		if err != nil {
			return false, err
		}
		report := shapes.Validate(data)
		a.logger.Debug("validated",
			"data_triples", data.Len(),
			"node_shapes", len(shapes.NodeShapes),
			"violations", len(report.Results))
		if err := a.writeReport(ctx, report, reportFormat, out); err != nil {
			return false, err
		}
		return report.Conforms, nil
	}

	if !watch {
		conforms, err := validate(ctx)
		if err != nil {
			return err
		}
		if !conforms {
			return errNotConforming
		}
		return nil
	}

	// Watch mode keeps running until interrupted. Failures are logged
	// rather than fatal so a broken edit can be fixed and re-checked.
	runOnce := func() {
		conforms, err := validate(ctx)
		switch {
		case err != nil:
			a.logger.Error("validation failed", "error", err)
		case conforms:
			a.logger.Info("conforms")
		default:
			a.logger.Warn("does not conform")
		}
	}
	runOnce()
	watched := append([]string{shapesPath}, paths...)
	return watchFiles(ctx, a.logger, watched, a.cfg.Validation.WatchDebounce.Duration(), runOnce)
}

// writeReport renders the report as text or serializes the report
// graph in the requested RDF format.
func (a *app) writeReport(ctx context.Context, report *shacl.Report, format, out string) error {
	if format == "text" {
		if out == "" {
			_, err := io.WriteString(a.stdout, report.Text())
			return err
		}
		return os.WriteFile(out, []byte(report.Text()), 0o644)
	}
	f, _ := rdf.ParseFormat(format)
	return a.writeGraph(ctx, report.Graph(), f, out)
}

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported RDF formats",
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range rdf.Formats() {
				fmt.Fprintf(a.stdout, "%-10s %-24s aliases: %s\n",
					string(f), f.ContentType(), strings.Join(formatAliases(f), ", "))
			}
		},
	}
}

func formatAliases(f rdf.Format) []string {
	switch f {
	case rdf.FormatTurtle:
		return []string{"ttl"}
	case rdf.FormatNTriples:
		return []string{"nt", "n-triples"}
	case rdf.FormatJSONLD:
		return []string{"json-ld", "json"}
	default:
		return nil
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s version %s\n", appName, version)
		},
	}
}

// expandInputs expands doublestar glob patterns into concrete file
// paths, preserving argument order and dropping duplicates. Literal
// paths pass through untouched so missing-file errors stay precise; a
// glob pattern that matches no regular file is an error.
func expandInputs(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		matched := false
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				add(m)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
	}
	return paths, nil
}

// loadGraphs parses every input and merges the results into one graph.
// A format flag applies to all inputs; otherwise each file goes by its
// extension, falling back to content detection.
func (a *app) loadGraphs(ctx context.Context, paths []string, formatFlag string) (*rdf.Graph, error) {
	override := rdf.FormatAuto
	if formatFlag != "" {
		f, ok := rdf.ParseFormat(formatFlag)
		if !ok {
			return nil, fmt.Errorf("unknown format %q", formatFlag)
		}
		override = f
	}

	merged := rdf.NewGraph()
	for _, path := range paths {
		g, err := a.loadGraph(ctx, path, override)
		if err != nil {
			return nil, err
		}
		merged.Merge(g)
	}
	return merged, nil
}

func (a *app) loadGraph(ctx context.Context, path string, override rdf.Format) (*rdf.Graph, error) {
	format := override
	if format == rdf.FormatAuto {
		if f, ok := rdf.FormatFromPath(path); ok {
			format = f
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var opts []rdf.Option
	if a.cfg.Base != "" {
		opts = append(opts, rdf.OptBase(a.cfg.Base))
	}
	g, err := rdf.ParseGraph(ctx, f, format, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Debug("parsed input", "path", path, "triples", g.Len())
	return g, nil
}

// outputFormat resolves the serialization format: flag first, then the
// output file extension, then the configured default.
func (a *app) outputFormat(flag, out string) (rdf.Format, error) {
	if flag != "" {
		f, ok := rdf.ParseFormat(flag)
		if !ok || f == rdf.FormatAuto {
			return "", fmt.Errorf("unknown output format %q", flag)
		}
		return f, nil
	}
	if out != "" {
		if f, ok := rdf.FormatFromPath(out); ok {
			return f, nil
		}
	}
	f, _ := rdf.ParseFormat(a.cfg.Format)
	return f, nil
}

func (a *app) writeGraph(ctx context.Context, g *rdf.Graph, format rdf.Format, out string) error {
	if out == "" {
		return rdf.SerializeGraph(ctx, a.stdout, g, format, rdf.OptPrefixes(a.prefixes()))
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := rdf.SerializeGraph(ctx, f, g, format, rdf.OptPrefixes(a.prefixes())); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// prefixes merges the built-in vocabulary table with configured
// extras; configured entries win on collision.
func (a *app) prefixes() map[string]string {
	table := vocab.Prefixes()
	for prefix, ns := range a.cfg.Prefixes {
		table[prefix] = ns
	}
	return table
}
