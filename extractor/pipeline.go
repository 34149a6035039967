package extractor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aqlanhadi/ledgr/extractor/common"
	"github.com/aqlanhadi/ledgr/extractor/profile"
	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/aqlanhadi/ledgr/logger"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultMinLineLength is the shortest trimmed line, in characters, that is
// considered for parsing.
const DefaultMinLineLength = 11

// Pipeline turns statement documents into raw transaction records.
type Pipeline struct {
	profiles      *profile.Registry
	open          common.Opener
	strategies    []Strategy
	workers       int
	timeout       time.Duration
	minLineLength int
	progress      common.ProgressFunc
	log           zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProfiles sets the bank profiles used for detection.
func WithProfiles(r *profile.Registry) Option {
	return func(p *Pipeline) { p.profiles = r }
}

// WithOpener replaces the function that reads documents.
func WithOpener(open common.Opener) Option {
	return func(p *Pipeline) { p.open = open }
}

// WithStrategies replaces the ordered extraction strategies.
func WithStrategies(s ...Strategy) Option {
	return func(p *Pipeline) { p.strategies = s }
}

// WithWorkers bounds how many documents of a batch are processed at once.
// Values below one mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithDocumentTimeout limits the time spent on each document. Zero disables
// the limit.
func WithDocumentTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithMinLineLength sets the noise filter applied to text lines.
func WithMinLineLength(n int) Option {
	return func(p *Pipeline) { p.minLineLength = n }
}

// WithProgress registers a progress sink.
func WithProgress(fn common.ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithLogger sets the logger used for per-document diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// New builds a pipeline with the built-in bank profiles, the default
// document opener and the line-then-table strategy chain.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		profiles:      profile.Default(),
		open:          common.Open,
		strategies:    DefaultStrategies(),
		minLineLength: DefaultMinLineLength,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	return p
}

// ExtractOne extracts the records of a single document in line order.
func (p *Pipeline) ExtractOne(ctx context.Context, doc common.Document) ([]ledger.RawRecord, error) {
	progress := common.NewProgress(p.progress)
	report := func(message string, percent int) {
		progress.Report(message, percent, doc.Name)
	}

	ctx, cancel := p.documentContext(ctx)
	defer cancel()
	return p.extract(ctx, doc, report)
}

// BatchResult is the outcome of ExtractMany. Records holds the records of
// every successful document, concatenated in input order; PerDocument holds
// the same records indexed by input position.
type BatchResult struct {
	Records     []ledger.RawRecord
	PerDocument [][]ledger.RawRecord
	Failures    []*DocumentError
}

// Err joins the batch failures, or returns nil when every document was read.
func (r BatchResult) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// ExtractMany extracts every document concurrently on a bounded pool. A
// document that fails is logged and reported in Failures without affecting
// the others.
func (p *Pipeline) ExtractMany(ctx context.Context, docs []common.Document) BatchResult {
	results := make([][]ledger.RawRecord, len(docs))
	errs := make([]error, len(docs))

	progress := common.NewProgress(p.progress)
	var done atomic.Int64
	total := len(docs)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, doc := range docs {
		g.Go(func() error {
			report := func(message string, _ int) {
				progress.Report(message, int(done.Load())*100/total, doc.Name)
			}

			dctx, cancel := p.documentContext(ctx)
			defer cancel()
			results[i], errs[i] = p.extract(dctx, doc, report)

			n := done.Add(1)
			progress.Report(fmt.Sprintf("Processed %d of %d documents", n, total), int(n)*100/total, doc.Name)
			return nil
		})
	}
	_ = g.Wait()

	out := BatchResult{PerDocument: results}
	for i, err := range errs {
		if err != nil {
			p.log.Warn().Err(err).Int("index", i).Str("document", docs[i].Name).Msg("skipping document")
			out.Failures = append(out.Failures, &DocumentError{Index: i, Document: docs[i].Name, Err: err})
			continue
		}
		out.Records = append(out.Records, results[i]...)
	}
	return out
}

func (p *Pipeline) documentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}

func (p *Pipeline) extract(ctx context.Context, doc common.Document, report func(string, int)) (records []ledger.RawRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, doc.Name, r)
		}
	}()

	ctx = logger.WithContext(ctx, p.log.With().Str("document", doc.Name).Logger())

	report("Reading PDF file...", 10)
	src, err := p.open(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, doc.Name, err)
	}
	pages, err := src.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, doc.Name, err)
	}
	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s: no text found", ErrExtractionFailed, doc.Name)
	}

	report("Detecting bank format...", 30)
	name := p.profiles.Detect(text)
	in := Input{
		Document: doc,
		Source:   src,
		Lines:    p.splitLines(doc, text),
		Profile:  p.profiles.Lookup(name),
	}

	report(fmt.Sprintf("Processing %s format...", name), 50)
	for i, s := range p.strategies {
		if i > 0 {
			report(fmt.Sprintf("Trying %s extraction...", s.Name()), 50+20*i)
		}
		found, err := s.Extract(ctx, in)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, doc.Name, ctxErr)
		}
		if err != nil {
			p.log.Warn().Err(err).Str("document", doc.Name).Str("strategy", s.Name()).Msg("strategy failed")
			continue
		}
		if len(found) > 0 {
			p.log.Debug().Str("document", doc.Name).Str("strategy", s.Name()).Str("profile", name).Int("records", len(found)).Msg("extracted")
			records = found
			break
		}
	}

	report(fmt.Sprintf("Found %d transactions", len(records)), 100)
	return records, nil
}

func (p *Pipeline) splitLines(doc common.Document, text string) []common.Line {
	raw := strings.Split(text, "\n")
	lines := make([]common.Line, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSpace(l)
		if len([]rune(l)) < p.minLineLength {
			continue
		}
		lines = append(lines, common.Line{Document: doc.ID, Number: i + 1, Text: l})
	}
	return lines
}
