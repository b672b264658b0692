package locpatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCooldown is the pause after every gateway call.
const DefaultCooldown = time.Second

// FailureSink receives units that could not be translated.
type FailureSink interface {
	Append(rec FailureRecord) error
}

// Translator runs the parse, classify, batch, translate and rewrite pipeline
// over the lines of one file at a time.
type Translator struct {
	targetLang string
	sourceLang string
	gateway    Gateway
	strategy   BatchStrategy
	classifier Classifier
	cooldown   time.Duration
	routes     map[Route]bool
	reprocess  bool
	failures   FailureSink
	log        zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language (default "english").
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithStrategy sets the batching strategy.
func WithStrategy(s BatchStrategy) TranslatorOption {
	return func(t *Translator) {
		t.strategy = s
	}
}

// WithClassifier sets the placeholder classifier.
func WithClassifier(c Classifier) TranslatorOption {
	return func(t *Translator) {
		t.classifier = c
	}
}

// WithCooldown sets the pause after every gateway call. Zero disables it.
func WithCooldown(d time.Duration) TranslatorOption {
	return func(t *Translator) {
		t.cooldown = d
	}
}

// WithRoutes restricts which routes are sent to the gateway.
func WithRoutes(routes ...Route) TranslatorOption {
	return func(t *Translator) {
		t.routes = make(map[Route]bool, len(routes))
		for _, r := range routes {
			t.routes[r] = true
		}
	}
}

// WithReprocessMarked makes lines that already carry the processed marker
// eligible again. Article fixing uses this after a translation run.
func WithReprocessMarked(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.reprocess = enabled
	}
}

// WithFailureSink sets where failed units are recorded.
func WithFailureSink(sink FailureSink) TranslatorOption {
	return func(t *Translator) {
		t.failures = sink
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.log = log
	}
}

// NewTranslator creates a Translator with the given target language and gateway.
func NewTranslator(targetLang string, gateway Gateway, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: targetLang,
		sourceLang: "english",
		gateway:    gateway,
		strategy:   DefaultStrategy(),
		classifier: DefaultClassifier(),
		cooldown:   DefaultCooldown,
		log:        zerolog.Nop(),
		sleep:      sleepContext,
	}
	WithRoutes(sendRoutes...)(t)

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Scan returns the units ProcessLines would send for these lines, without
// calling the gateway.
func (t *Translator) Scan(file string, raw []string) []Unit {
	units, _ := t.collect(file, raw)
	return units
}

// ProcessLines runs the pipeline over one file's lines. file is the name
// passed to the gateway as context. Unit and batch failures are recorded in
// the result; the only error returned is a cancelled context.
func (t *Translator) ProcessLines(ctx context.Context, file string, raw []string) (*FileResult, error) {
	res := &FileResult{Lines: append([]string(nil), raw...)}

	units, skipped := t.collect(file, raw)
	res.Units = len(units)
	res.Skipped = skipped

	accs := make(map[Route]*Accumulator, len(sendRoutes))
	for _, r := range sendRoutes {
		accs[r] = NewAccumulator(t.strategy.BatchSize())
	}

	for _, u := range units {
		if accs[u.Route].Add(u) {
			if err := t.flush(ctx, file, accs[u.Route].Take(), res); err != nil {
				return res, err
			}
		}
	}

	for _, r := range sendRoutes {
		if accs[r].Len() == 0 {
			continue
		}
		if err := t.flush(ctx, file, accs[r].Take(), res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// collect parses and classifies every line and returns the units to send.
func (t *Translator) collect(file string, raw []string) ([]Unit, int) {
	var units []Unit
	skipped := 0

	for i, r := range raw {
		line, ok := ParseLine(i, r)
		if !ok || !line.HasValue {
			continue
		}
		if line.Processed && !t.reprocess {
			skipped++
			continue
		}

		route := t.classifier.Classify(line.Value, line.Key)
		if !route.Sends() || !t.routes[route] {
			t.log.Debug().Str("file", file).Int("line", i+1).Str("route", string(route)).Msg("skipping value")
			skipped++
			continue
		}

		units = append(units, Unit{
			Line:  line,
			Text:  line.Value,
			Key:   line.Key,
			File:  file,
			Route: route,
		})
	}

	return units, skipped
}

// flush sends one batch and falls back on failure.
func (t *Translator) flush(ctx context.Context, file string, batch []Unit, res *FileResult) error {
	t.log.Info().
		Str("file", file).
		Str("route", string(batch[0].Route)).
		Int("from", batch[0].Line.Index+1).
		Int("to", batch[len(batch)-1].Line.Index+1).
		Msg("translating batch")

	results, err := t.callBatch(ctx, file, batch, res)
	if cerr := t.sleep(ctx, t.cooldown); cerr != nil {
		return cerr
	}
	if err == nil {
		for i, u := range batch {
			t.commit(res, u, results[i])
		}
		return nil
	}
	if ctxErr(ctx, err) {
		return err
	}

	t.log.Warn().Err(err).Str("file", file).Int("units", len(batch)).Msg("batch failed, degrading")
	return t.recover(ctx, file, batch, 0, res, err)
}

// recover retries a failed batch as the strategy dictates. Single units are
// tried once with TranslateOne and logged when that fails too.
func (t *Translator) recover(ctx context.Context, file string, units []Unit, depth int, res *FileResult, cause error) error {
	parts, ok := t.strategy.Degrade(units, depth)
	if !ok {
		for _, u := range units {
			t.fail(res, u, cause)
		}
		return nil
	}

	for _, part := range parts {
		if len(part) == 1 {
			u := part[0]
			t.log.Debug().Str("file", file).Int("line", u.Line.Index+1).Msg("single attempt")

			text, err := t.gateway.TranslateOne(ctx, t.singleRequest(file, u))
			if err == nil && strings.TrimSpace(text) == "" {
				err = &ProviderError{Message: "empty result"}
			}
			if cerr := t.sleep(ctx, t.cooldown); cerr != nil {
				return cerr
			}
			if err != nil {
				if ctxErr(ctx, err) {
					return err
				}
				t.fail(res, u, err)
				continue
			}
			t.commit(res, u, text)
			continue
		}

		results, err := t.callBatch(ctx, file, part, res)
		if cerr := t.sleep(ctx, t.cooldown); cerr != nil {
			return cerr
		}
		if err != nil {
			if ctxErr(ctx, err) {
				return err
			}
			if rerr := t.recover(ctx, file, part, depth+1, res, err); rerr != nil {
				return rerr
			}
			continue
		}
		for i, u := range part {
			t.commit(res, u, results[i])
		}
	}

	return nil
}

// callBatch calls TranslateBatch and enforces result arity.
func (t *Translator) callBatch(ctx context.Context, file string, units []Unit, res *FileResult) ([]string, error) {
	res.Batches++
	results, err := t.gateway.TranslateBatch(ctx, t.batchRequest(file, units))
	if err != nil {
		return nil, err
	}
	if len(results) != len(units) {
		return nil, &CountMismatchError{Expected: len(units), Got: len(results)}
	}
	for i, r := range results {
		if strings.TrimSpace(r) == "" {
			return nil, &ProviderError{Message: fmt.Sprintf("empty result for line %d", units[i].Line.Index+1)}
		}
	}
	return results, nil
}

func (t *Translator) batchRequest(file string, units []Unit) BatchRequest {
	req := BatchRequest{
		Mode:       modeFor(units[0].Route),
		File:       file,
		Texts:      make([]string, len(units)),
		Keys:       make([]string, len(units)),
		SourceLang: t.sourceLang,
		TargetLang: t.targetLang,
	}
	for i, u := range units {
		req.Texts[i] = u.Text
		req.Keys[i] = u.Key
	}
	return req
}

func (t *Translator) singleRequest(file string, u Unit) SingleRequest {
	return SingleRequest{
		Mode:       modeFor(u.Route),
		File:       file,
		Text:       u.Text,
		Key:        u.Key,
		SourceLang: t.sourceLang,
		TargetLang: t.targetLang,
	}
}

// commit splices a result into the output lines.
func (t *Translator) commit(res *FileResult, u Unit, text string) {
	if u.Route == RouteArticle || u.Route == RoutePhrase {
		text = keepSpacing(u.Text, text)
	}
	res.Lines[u.Line.Index] = Rewrite(u.Line, text)
	res.Changed = true
	res.Translated++
}

// fail records a unit whose line stays untouched.
func (t *Translator) fail(res *FileResult, u Unit, cause error) {
	rec := FailureRecord{File: u.File, Line: u.Line.Index + 1, Text: u.Text}
	res.Failed++
	res.Failures = append(res.Failures, rec)

	t.log.Error().Err(cause).Str("file", rec.File).Int("line", rec.Line).Msg("translation failed, line kept")

	if t.failures == nil {
		return
	}
	if err := t.failures.Append(rec); err != nil {
		t.log.Error().Err(err).Msg("writing failure log")
	}
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// Strategy returns the batching strategy.
func (t *Translator) Strategy() BatchStrategy {
	return t.strategy
}

func ctxErr(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
