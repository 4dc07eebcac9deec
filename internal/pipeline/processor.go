package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/boletoscan/internal/boleto"
	"github.com/dgallion1/boletoscan/internal/match"
	"github.com/dgallion1/boletoscan/internal/resident"
	"github.com/dgallion1/boletoscan/internal/textextract"
)

// Report is everything learned about one boleto.
type Report struct {
	Filename      string        `json:"filename,omitempty"`
	Source        string        `json:"source,omitempty"`
	Fallback      bool          `json:"fallback"`
	TextLength    int           `json:"text_length"`
	Fields        boleto.Fields `json:"fields"`
	AmountDisplay string        `json:"amount_display,omitempty"`
	Match         match.Result  `json:"match"`
	DurationMs    int64         `json:"duration_ms"`
	ProcessedAt   time.Time     `json:"processed_at"`
}

// Processor runs extract, parse and match for single documents. It holds no
// per-document state and is safe for concurrent use.
type Processor struct {
	roster  resident.Provider
	matcher *match.Matcher
	opts    textextract.Options
	metrics *Metrics
	log     *slog.Logger

	ExtractStats *LatencyStats
	MatchStats   *LatencyStats
}

func NewProcessor(roster resident.Provider, opts textextract.Options, metrics *Metrics, log *slog.Logger) *Processor {
	return &Processor{
		roster:       roster,
		matcher:      match.New(),
		opts:         opts,
		metrics:      metrics,
		log:          log,
		ExtractStats: NewLatencyStats(time.Hour),
		MatchStats:   NewLatencyStats(time.Hour),
	}
}

// ProcessDocument extracts the text of an uploaded file and resolves it.
// Failures are reported inside the returned Report, never as an error.
func (p *Processor) ProcessDocument(ctx context.Context, filename string, data []byte) Report {
	start := time.Now()
	rep := Report{Filename: filename}

	text, ok := p.Extract(ctx, &rep, data)
	if !ok {
		return p.finish(rep, start)
	}
	p.Resolve(ctx, &rep, text)
	return p.finish(rep, start)
}

// ProcessText resolves text that was already extracted elsewhere, e.g. by
// client side OCR.
func (p *Processor) ProcessText(ctx context.Context, text string) Report {
	start := time.Now()
	rep := Report{Source: "client"}
	p.Resolve(ctx, &rep, text)
	return p.finish(rep, start)
}

// Extract fills the extraction part of rep and returns the raw text. On
// failure rep carries the failed match result and ok is false.
func (p *Processor) Extract(ctx context.Context, rep *Report, data []byte) (string, bool) {
	log := p.log.With("filename", rep.Filename)

	ex, err := textextract.ForFile(rep.Filename, p.opts)
	if err != nil {
		log.Warn("unsupported document", "error", err)
		rep.Match = match.Failed()
		return "", false
	}

	start := time.Now()
	res, err := textextract.Run(ctx, ex, data)
	elapsed := time.Since(start)
	p.ExtractStats.Record(elapsed.Milliseconds())
	if err != nil {
		log.Error("text extraction failed", "error", err)
		rep.Match = match.Failed()
		return "", false
	}
	p.metrics.observeExtraction(res.Source, elapsed)

	for _, w := range res.Warnings {
		log.Debug("fallback extractor failed", "error", w)
	}
	if res.Fallback {
		log.Info("used fallback text", "source", res.Source)
	}

	rep.Source = res.Source
	rep.Fallback = res.Fallback
	return res.Text, true
}

// Resolve parses text and matches the payer against the current roster.
func (p *Processor) Resolve(ctx context.Context, rep *Report, text string) {
	normalized := boleto.NormalizeText(text)
	rep.TextLength = len([]rune(normalized))
	rep.Fields = boleto.Parse(normalized)
	if rep.Fields.Amount != nil {
		rep.AmountDisplay = boleto.FormatBRL(*rep.Fields.Amount)
	}

	roster, err := p.roster.Residents(ctx)
	if err != nil {
		p.log.Error("load roster failed", "filename", rep.Filename, "error", err)
		rep.Match = match.Failed()
		return
	}

	start := time.Now()
	rep.Match = p.matcher.Match(rep.Fields, roster)
	p.MatchStats.Record(time.Since(start).Milliseconds())

	p.log.Debug("boleto resolved",
		"filename", rep.Filename,
		"fields", rep.Fields.Found(),
		"outcome", rep.Match.Outcome(),
		"confidence", rep.Match.Confidence,
	)
}

func (p *Processor) finish(rep Report, start time.Time) Report {
	rep.DurationMs = time.Since(start).Milliseconds()
	rep.ProcessedAt = time.Now().UTC()
	p.metrics.countDocument(rep.Match.Outcome())
	return rep
}
