// Package extractor is the public entry point for harvesting strings from
// files, URLs and stdin. It resolves a source, picks an extraction strategy
// and applies the configured post-processing.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/byteowlz/strle/internal/browser"
	"github.com/byteowlz/strle/internal/config"
	"github.com/byteowlz/strle/internal/extraction"
	"github.com/byteowlz/strle/internal/fetcher"
	"github.com/byteowlz/strle/internal/filetype"
	"github.com/byteowlz/strle/internal/processor"
)

// StdinSource is the source name that reads from standard input
const StdinSource = "-"

var (
	// ErrFetch wraps failures to retrieve a remote source
	ErrFetch = errors.New("fetch failed")
	// ErrRead wraps failures to open or read a local source
	ErrRead = errors.New("read failed")
)

type Extractor struct {
	config    *config.Config
	logger    *zap.Logger
	fetcher   *fetcher.RemoteFetcher
	processor *processor.StringProcessor
	cookies   *browser.CookieExtractor
	stdin     io.Reader
}

type ExtractOptions struct {
	// Format overrides detection when set (json, csv, env, fallback).
	Format string
	// Timeout applies to remote sources; zero uses network.timeout.
	Timeout time.Duration
}

type ExtractResult struct {
	Source         string
	Format         extraction.Format
	Strings        []string
	Streamed       bool
	ParseErrors    []string
	InputBytes     int64
	ProcessingTime time.Duration
}

func New(cfg *config.Config, logger *zap.Logger) *Extractor {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	browserType, err := browser.ParseBrowserType(cfg.Browser.Default)
	if err != nil {
		logger.Warn("cookie lookup disabled", zap.Error(err))
	}

	return &Extractor{
		config:    cfg,
		logger:    logger,
		fetcher:   fetcher.NewRemoteFetcher(),
		processor: processor.NewStringProcessor(),
		cookies:   browser.NewCookieExtractor(browserType, cfg.Browser.Paths),
		stdin:     os.Stdin,
	}
}

// SetStdin replaces the reader used for the "-" source
func (e *Extractor) SetStdin(r io.Reader) {
	e.stdin = r
}

// IsRemote reports whether source is fetched over HTTP
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Extract harvests strings from a file path, an http(s) URL or "-" for
// stdin. Malformed content never fails: diagnostics land in
// ExtractResult.ParseErrors. Only source access errors are returned, wrapped
// in ErrFetch or ErrRead.
func (e *Extractor) Extract(ctx context.Context, source string, opts ExtractOptions) (*ExtractResult, error) {
	start := time.Now()
	result := &ExtractResult{Source: source, ParseErrors: []string{}}

	in, err := e.open(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	defer in.body.Close()
	if in.size >= 0 {
		e.warnLargeInput(source, in.size)
	}

	format := in.format
	if opts.Format != "" {
		format = opts.Format
	}
	result.Format = extraction.ParseFormat(format)
	extractOpts := e.extractionOptions(source, result)

	var list []string
	if result.Format == extraction.FormatCSV && e.config.CSV.StreamingEnabled {
		e.logger.Debug("streaming CSV", zap.String("source", source))
		counter := &countingReader{r: in.body}
		list = extraction.StreamCSVReader(ctx, counter, extractOpts).Collect()
		result.Streamed = true
		result.InputBytes = counter.n
	} else {
		data, err := io.ReadAll(in.body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", in.errKind, source, err)
		}
		result.InputBytes = int64(len(data))
		list = extraction.ExtractStrings(string(data), string(result.Format), extractOpts)
	}

	if in.size < 0 {
		e.warnLargeInput(source, result.InputBytes)
	}
	result.Strings = e.postProcess(source, list)
	result.ProcessingTime = time.Since(start)

	e.logger.Debug("extracted strings",
		zap.String("source", source),
		zap.String("format", string(result.Format)),
		zap.Int("count", len(result.Strings)),
		zap.Bool("streamed", result.Streamed),
		zap.Duration("elapsed", result.ProcessingTime),
	)
	return result, nil
}

// ExtractText runs the same pipeline over in-memory text. An empty format
// selects the fallback extractor.
func (e *Extractor) ExtractText(text, format string) *ExtractResult {
	start := time.Now()
	result := &ExtractResult{
		Source:      "text",
		Format:      extraction.ParseFormat(format),
		ParseErrors: []string{},
		InputBytes:  int64(len(text)),
	}

	list := extraction.ExtractStrings(text, string(result.Format), e.extractionOptions(result.Source, result))
	result.Strings = e.postProcess(result.Source, list)
	result.ProcessingTime = time.Since(start)
	return result
}

// Render formats result strings with the given output format, or the
// configured default when empty.
func (e *Extractor) Render(list []string, format string) (string, error) {
	if format == "" {
		format = e.config.Output.DefaultFormat
	}
	outputFormat, err := processor.ParseOutputFormat(format)
	if err != nil {
		return "", err
	}
	return e.processor.Render(list, outputFormat)
}

type input struct {
	body    io.ReadCloser
	format  string
	size    int64 // -1 when unknown before reading
	errKind error
}

func (e *Extractor) open(ctx context.Context, source string, opts ExtractOptions) (*input, error) {
	switch {
	case source == StdinSource:
		return &input{body: io.NopCloser(e.stdin), size: -1, errKind: ErrRead}, nil

	case IsRemote(source):
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = time.Duration(e.config.Network.Timeout) * time.Second
		}

		cookies, err := e.cookies.ExtractCookies(ctx, source)
		if err != nil {
			// Cookie extraction failure is not fatal
			e.logger.Debug("cookie extraction failed", zap.String("source", source), zap.Error(err))
		}

		e.logger.Debug("fetching", zap.String("source", source), zap.Int("cookies", len(cookies)))
		resp, err := e.fetcher.Open(ctx, source, fetcher.FetchOptions{
			Timeout:         timeout,
			UserAgent:       e.config.Network.UserAgent,
			BrowserAgent:    e.config.Network.BrowserAgent,
			Cookies:         cookies,
			FollowRedirects: e.config.Network.FollowRedirects,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
		return &input{body: resp.Body, format: resp.Format, size: resp.ContentLength, errKind: ErrFetch}, nil

	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		if info.IsDir() {
			f.Close()
			return nil, fmt.Errorf("%w: %s is a directory", ErrRead, source)
		}
		return &input{body: f, format: filetype.Detect(source), size: info.Size(), errKind: ErrRead}, nil
	}
}

func (e *Extractor) extractionOptions(source string, result *ExtractResult) *extraction.Options {
	opts := &extraction.Options{
		CSVHasHeader: e.config.Extraction.CSVHasHeader,
		RepairJSON:   e.config.Extraction.RepairJSON,
		OnParseError: func(message string) {
			result.ParseErrors = append(result.ParseErrors, message)
			if e.config.Extraction.ShowParseErrors {
				e.logger.Warn(message, zap.String("source", source))
			} else {
				e.logger.Debug(message, zap.String("source", source))
			}
		},
	}
	if idx := e.config.Extraction.CSVColumnIndex; idx >= 0 {
		opts.CSVColumnIndex = extraction.Column(idx)
	}
	return opts
}

func (e *Extractor) postProcess(source string, list []string) []string {
	out := e.processor.Process(list, processor.ProcessOptions{
		Dedupe: e.config.PostProcess.DedupeEnabled,
		Sort:   e.config.SortMode(),
	})

	if e.config.Safety.Enabled {
		if limit := e.config.Safety.LargeOutputLinesThreshold; limit > 0 && len(out) > limit {
			e.logger.Warn("large output",
				zap.String("source", source),
				zap.Int("lines", len(out)),
				zap.Int("threshold", limit),
			)
		}
	}
	return out
}

func (e *Extractor) warnLargeInput(source string, size int64) {
	if !e.config.Safety.Enabled {
		return
	}
	limit := e.config.Safety.FileSizeWarnBytes
	if limit <= 0 || size <= limit {
		return
	}
	e.logger.Warn("large input",
		zap.String("source", source),
		zap.Int64("bytes", size),
		zap.Int64("threshold", limit),
	)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
