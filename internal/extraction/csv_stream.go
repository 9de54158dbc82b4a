package extraction

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
)

// Stream lazily yields CSV cells one at a time. It is forward-only and not
// restartable: once exhausted, abandoned or closed it yields nothing more.
// A Stream must not be used from multiple goroutines at once.
//
// The underlying reader, when it is an io.Closer, is closed exactly once on
// whichever exit path comes first: exhaustion, a parse error, context
// cancellation, or Close.
type Stream struct {
	ctx     context.Context
	rows    *rowReader
	closer  io.Closer
	opts    *Options
	pending []string
	current string
	done    bool

	closeOnce sync.Once
	closeErr  error
}

// StreamCSV returns a lazy stream over the cells of text. Parsing rules and
// column selection match ExtractCSV; the header row is skipped when
// opts.CSVHasHeader is set.
func StreamCSV(ctx context.Context, text string, opts *Options) *Stream {
	if isBlank(text) {
		return &Stream{ctx: ctx, opts: opts, done: true}
	}
	return StreamCSVReader(ctx, strings.NewReader(text), opts)
}

// StreamCSVReader is StreamCSV over an arbitrary reader. If r implements
// io.Closer the stream takes ownership of it.
func StreamCSVReader(ctx context.Context, r io.Reader, opts *Options) *Stream {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Stream{
		ctx:  ctx,
		rows: newRowReader(r, opts),
		opts: opts,
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next advances to the next cell. It returns false once the stream is
// exhausted, failed or closed.
func (s *Stream) Next() bool {
	for {
		if len(s.pending) > 0 {
			s.current = s.pending[0]
			s.pending = s.pending[1:]
			return true
		}
		if s.done {
			return false
		}
		if err := s.ctx.Err(); err != nil {
			s.fail(err)
			return false
		}

		var err error
		s.pending, err = s.rows.next(s.pending[:0])
		if errors.Is(err, io.EOF) {
			s.Close()
			return false
		}
		if err != nil {
			s.fail(err)
			return false
		}
	}
}

// Value returns the cell produced by the last successful call to Next
func (s *Stream) Value() string {
	return s.current
}

// All adapts the stream for range-over-func. Breaking out of the loop
// closes the stream.
func (s *Stream) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.current) {
				return
			}
		}
	}
}

// Close releases the underlying reader. It is safe to call more than once;
// only the first call has any effect.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.done = true
		s.pending = nil
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
	})
	return s.closeErr
}

func (s *Stream) fail(err error) {
	s.Close()
	s.opts.reportParseError(csvParseError(err))
}

// Collect drains the stream into a slice
func (s *Stream) Collect() []string {
	out := emptyResult()
	for v := range s.All() {
		out = append(out, v)
	}
	return out
}
