package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/byteowlz/strle/internal/config"
	"github.com/byteowlz/strle/internal/logging"
	"github.com/byteowlz/strle/internal/processor"
	"github.com/byteowlz/strle/internal/text"
	"github.com/byteowlz/strle/pkg/extractor"
)

// Exit codes for granular error handling
const (
	ExitSuccess      = 0
	ExitNetworkError = 1
	ExitProcessError = 2
	ExitInvalidInput = 3
	ExitConfigError  = 4
	ExitFileIOError  = 5
	ExitPartialError = 6 // some sources failed, some succeeded
)

var (
	cfgFile           string
	formatHint        string
	outputFile        string
	outputFormat      string
	dedupe            bool
	sortMode          string
	csvHeader         bool
	csvColumn         int
	stream            bool
	repairJSON        bool
	showParseErrors   bool
	envFile           string
	browser           string
	browserAgent      string
	userAgent         string
	timeout           int
	separator         string
	continueOnError   bool
	noFollowRedirects bool
	verbose           bool
	quiet             bool
)

const version = "1.0.0"

// Resolved in setup before any command runs
var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "strle [sources...]",
	Short: "Extract string values from JSON, CSV, dotenv and source files",
	Long: `strle harvests string literals and values from files, URLs or stdin.
JSON string leaves, CSV cells, dotenv values and quoted literals in any other
text are collected, then optionally deduplicated and sorted.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe [file]",
	Short: "Remove duplicate lines, keeping the first occurrence",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLines(cmd, args, processor.ProcessOptions{Dedupe: true})
	},
}

var sortCmd = &cobra.Command{
	Use:   "sort [file]",
	Short: "Sort lines alphabetically or by length",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := text.SortAlphaAsc
		if configured := text.ParseSortMode(cfg.PostProcess.SortMode); configured != text.SortOff {
			mode = configured
		}
		if cmd.Flags().Changed("mode") {
			name, _ := cmd.Flags().GetString("mode")
			mode = text.SortMode(strings.ToLower(strings.TrimSpace(name)))
			if !mode.Valid() || mode == text.SortOff {
				return exitError(ExitInvalidInput, "invalid sort mode %q (want %s)", name, joinModes())
			}
		}
		return runLines(cmd, args, processor.ProcessOptions{Sort: mode})
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logger != nil {
		_ = logger.Sync()
	}

	if err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		if !quiet {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(ExitInvalidInput)
	}
}

func init() {
	// Assigned here rather than in the literal to break the
	// rootCmd -> setup -> applyFlags -> rootCmd initialization cycle.
	rootCmd.PersistentPreRunE = setup
	rootCmd.RunE = run

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/strle/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load STRLE_* variables from a dotenv file")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output to file (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "text", "output format (text|json|yaml|markdown)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all non-content output")

	// Extraction flags
	rootCmd.Flags().StringVarP(&formatHint, "format", "t", "", "input format (json|csv|env|fallback); detected from the source when empty")
	rootCmd.Flags().BoolVar(&csvHeader, "csv-header", false, "skip the first CSV row")
	rootCmd.Flags().IntVar(&csvColumn, "csv-column", -1, "only extract this zero-based CSV column (-1 = all)")
	rootCmd.Flags().BoolVar(&stream, "stream", false, "stream CSV input row by row")
	rootCmd.Flags().BoolVar(&repairJSON, "repair-json", false, "retry invalid JSON after repairing it")
	rootCmd.Flags().BoolVar(&showParseErrors, "show-parse-errors", false, "log parse diagnostics as warnings")

	// Post-processing flags
	rootCmd.Flags().BoolVar(&dedupe, "dedupe", false, "remove duplicate strings")
	rootCmd.Flags().StringVar(&sortMode, "sort", "", "sort mode (off|"+joinModes()+")")

	// Remote source flags
	rootCmd.Flags().StringVarP(&browser, "browser", "b", "none", "send cookies from this browser (none|auto|chrome|firefox|safari)")
	rootCmd.Flags().StringVar(&browserAgent, "browser-agent", "", "browser agent type (auto|chrome|firefox|safari|edge)")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "custom user agent string")
	rootCmd.Flags().IntVar(&timeout, "timeout", 30, "request timeout in seconds")
	rootCmd.Flags().BoolVar(&noFollowRedirects, "no-follow-redirects", false, "disable following HTTP redirects")

	// Pipeline flags
	rootCmd.Flags().StringVar(&separator, "separator", "---", "output separator for multiple sources")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "continue with remaining sources on error")

	sortCmd.Flags().String("mode", "", "sort mode ("+joinModes()+")")

	rootCmd.AddCommand(dedupeCmd, sortCmd)
}

// initConfig writes the example config on first run
func initConfig() {
	if cfgFile != "" {
		return
	}
	configPath := config.DefaultPath()
	if configPath == "" {
		return
	}
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		return
	}
	if err := config.Default().CreateExampleConfig(configPath); err == nil && !quiet {
		fmt.Fprintf(os.Stderr, "Created config file: %s\n", configPath)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return exitError(ExitConfigError, "failed to load env file %s: %v", envFile, err)
		}
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return exitError(ExitConfigError, "failed to load config: %v", err)
	}
	cfg = loaded

	if err := applyFlags(cmd, cfg); err != nil {
		return exitError(ExitInvalidInput, "%v", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err = logging.New(level, cfg.Logging.File, quiet)
	if err != nil {
		return exitError(ExitConfigError, "failed to set up logging: %v", err)
	}
	if verbose {
		logger.Debug("configuration loaded", zap.String("config", cfgFile))
	}
	return nil
}

// applyFlags overrides config values with flags the user set explicitly
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("output-format") {
		cfg.Output.DefaultFormat = outputFormat
	}
	if _, err := processor.ParseOutputFormat(cfg.Output.DefaultFormat); err != nil {
		return err
	}

	if cmd != rootCmd {
		return nil
	}

	if flags.Changed("csv-header") {
		cfg.Extraction.CSVHasHeader = csvHeader
	}
	if flags.Changed("csv-column") {
		cfg.Extraction.CSVColumnIndex = max(csvColumn, -1)
	}
	if flags.Changed("stream") {
		cfg.CSV.StreamingEnabled = stream
	}
	if flags.Changed("repair-json") {
		cfg.Extraction.RepairJSON = repairJSON
	}
	if flags.Changed("show-parse-errors") {
		cfg.Extraction.ShowParseErrors = showParseErrors
	}
	if flags.Changed("dedupe") {
		cfg.PostProcess.DedupeEnabled = dedupe
	}
	if flags.Changed("sort") {
		mode := text.SortMode(strings.ToLower(strings.TrimSpace(sortMode)))
		if !mode.Valid() {
			return fmt.Errorf("invalid sort mode %q (want off|%s)", sortMode, joinModes())
		}
		cfg.PostProcess.SortEnabled = mode != text.SortOff
		cfg.PostProcess.SortMode = string(mode)
	}
	if flags.Changed("browser") {
		cfg.Browser.Default = browser
	}
	if flags.Changed("browser-agent") {
		cfg.Network.BrowserAgent = browserAgent
	}
	if flags.Changed("user-agent") {
		cfg.Network.UserAgent = userAgent
	}
	if flags.Changed("timeout") && timeout > 0 {
		cfg.Network.Timeout = timeout
	}
	if flags.Changed("no-follow-redirects") {
		cfg.Network.FollowRedirects = !noFollowRedirects
	}
	if flags.Changed("separator") {
		cfg.Output.Separator = separator
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	sources := args
	if len(sources) == 0 {
		if !stdinPiped() {
			return exitError(ExitInvalidInput, "no sources provided (pass files, URLs, or pipe data to stdin)")
		}
		sources = []string{extractor.StdinSource}
	}

	output, closeOutput, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOutput()

	ex := extractor.New(cfg, logger)
	ctx := cmd.Context()

	failCode := 0
	successCount := 0
	sections := &sectionWriter{w: output, separator: cfg.Output.Separator}

	for i, source := range sources {
		logger.Debug("processing", zap.Int("index", i+1), zap.Int("total", len(sources)), zap.String("source", source))

		result, err := ex.Extract(ctx, source, extractor.ExtractOptions{
			Format:  formatHint,
			Timeout: time.Duration(cfg.Network.Timeout) * time.Second,
		})
		if err != nil {
			code := ExitFileIOError
			if errors.Is(err, extractor.ErrFetch) {
				code = ExitNetworkError
			}
			logger.Error("extraction failed", zap.String("source", source), zap.Error(err))
			if !continueOnError {
				return &exitErr{code: code}
			}
			failCode = code
			continue
		}
		successCount++

		content, err := ex.Render(result.Strings, "")
		if err != nil {
			return exitError(ExitProcessError, "failed to render output: %v", err)
		}

		if err := sections.write(content); err != nil {
			return err
		}
	}

	if failCode != 0 && successCount > 0 {
		return &exitErr{code: ExitPartialError}
	}
	if failCode != 0 {
		return &exitErr{code: failCode}
	}
	return nil
}

// runLines backs the dedupe and sort commands, which treat each non-blank
// input line as one entry.
func runLines(cmd *cobra.Command, args []string, opts processor.ProcessOptions) error {
	var in io.Reader = os.Stdin
	name := extractor.StdinSource
	if len(args) == 1 && args[0] != extractor.StdinSource {
		f, err := os.Open(args[0])
		if err != nil {
			return exitError(ExitFileIOError, "failed to open %s: %v", args[0], err)
		}
		defer f.Close()
		in, name = f, args[0]
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return exitError(ExitFileIOError, "failed to read %s: %v", name, err)
	}

	sp := processor.NewStringProcessor()
	list := sp.Process(sp.SplitLines(string(data)), opts)
	logger.Debug("processed lines", zap.String("command", cmd.Name()), zap.Int("count", len(list)))

	format, _ := processor.ParseOutputFormat(cfg.Output.DefaultFormat)
	content, err := sp.Render(list, format)
	if err != nil {
		return exitError(ExitProcessError, "failed to render output: %v", err)
	}

	output, closeOutput, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOutput()
	return writeContent(output, content)
}

func openOutput() (io.Writer, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, exitError(ExitFileIOError, "failed to create output file %s: %v", outputFile, err)
	}
	return f, func() { f.Close() }, nil
}

// sectionWriter writes one rendered result per source with a separator line
// between them. Empty results produce no section.
type sectionWriter struct {
	w         io.Writer
	separator string
	written   int
}

func (s *sectionWriter) write(content string) error {
	if content == "" {
		return nil
	}
	if s.written > 0 {
		if _, err := fmt.Fprintf(s.w, "%s\n", s.separator); err != nil {
			return exitError(ExitFileIOError, "failed to write output: %v", err)
		}
	}
	if err := writeContent(s.w, content); err != nil {
		return err
	}
	s.written++
	return nil
}

func writeContent(w io.Writer, content string) error {
	if content == "" {
		return nil
	}
	if _, err := fmt.Fprintln(w, content); err != nil {
		return exitError(ExitFileIOError, "failed to write output: %v", err)
	}
	return nil
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

func joinModes() string {
	names := make([]string, len(text.SortModes))
	for i, m := range text.SortModes {
		names[i] = string(m)
	}
	return strings.Join(names, "|")
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string {
	return e.msg
}

func exitError(code int, format string, args ...interface{}) *exitErr {
	msg := fmt.Sprintf(format, args...)
	if msg != "" && !quiet {
		fmt.Fprintf(os.Stderr, "%s\n", msg)
	}
	return &exitErr{code: code, msg: msg}
}
