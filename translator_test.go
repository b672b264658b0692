package locpatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// noSleep replaces the cool-down in tests.
func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestTranslator(gw Gateway, opts ...TranslatorOption) *Translator {
	t := NewTranslator("german", gw, opts...)
	t.sleep = noSleep
	return t
}

func TestTranslator_BasicTranslation(t *testing.T) {
	gw := &fakeGateway{}
	tr := newTestTranslator(gw)

	raw := lines(
		"l_german:",
		` k_hello:0 "Hello"`,
		` k_world:1 "World" #note`,
		`# comment line`,
		"",
	)

	res, err := tr.ProcessLines(context.Background(), "a_german.yml", raw)
	if err != nil {
		t.Fatalf("ProcessLines failed: %v", err)
	}

	want := lines(
		"l_german:",
		` k_hello:0 "de:Hello"  #~TR~`,
		` k_world:1 "de:World" #note  #~TR~`,
		`# comment line`,
		"",
	)
	if joined(res.Lines) != joined(want) {
		t.Errorf("lines:\n%q\nwant:\n%q", res.Lines, want)
	}
	if !res.Changed || res.Translated != 2 || res.Batches != 1 || res.Units != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if gw.batches[0].File != "a_german.yml" || gw.batches[0].TargetLang != "german" || gw.batches[0].SourceLang != "english" {
		t.Errorf("unexpected request: %+v", gw.batches[0])
	}
}

func TestTranslator_Idempotent(t *testing.T) {
	gw := &fakeGateway{}
	tr := newTestTranslator(gw)

	first, _ := tr.ProcessLines(context.Background(), "a.yml", lines(` k_a:0 "Hello"`, ` k_b:0 "Say ""hi"""`))
	gw.batches = nil

	second, err := tr.ProcessLines(context.Background(), "a.yml", first.Lines)
	if err != nil {
		t.Fatalf("ProcessLines failed: %v", err)
	}
	if joined(second.Lines) != joined(first.Lines) {
		t.Errorf("second pass changed lines:\n%q\n%q", first.Lines, second.Lines)
	}
	if second.Changed || len(gw.batches) != 0 {
		t.Error("second pass should not call the gateway")
	}
	if second.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", second.Skipped)
	}
	if strings.Count(first.Lines[1], ProcessedMarker) != 1 {
		t.Errorf("marker should appear once: %q", first.Lines[1])
	}
}

func TestTranslator_QuotesRoundTrip(t *testing.T) {
	gw := &fakeGateway{
		batch: func(req BatchRequest) ([]string, error) {
			if req.Texts[0] != `Say "hi"` {
				return nil, fmt.Errorf("gateway got %q", req.Texts[0])
			}
			return []string{"Sag \"hallo\"\nzweite Zeile"}, nil
		},
	}
	tr := newTestTranslator(gw)

	res, _ := tr.ProcessLines(context.Background(), "a.yml", lines(` k_a:0 "Say ""hi"""`))
	want := ` k_a:0 "Sag ""hallo""\nzweite Zeile"  #~TR~` + "\n"
	if res.Lines[0] != want {
		t.Errorf("got %q, want %q", res.Lines[0], want)
	}
}

func TestTranslator_SkipsValues(t *testing.T) {
	gw := &fakeGateway{}
	tr := newTestTranslator(gw)

	raw := lines(
		` k_empty:0 ""`,
		` k_var:0 "$ROOT$"`,
		` k_done:0 "Fertig"  #~TR~`,
		` k_name:0 "$CHARACTER$ rules"`,
	)
	res, _ := tr.ProcessLines(context.Background(), "a.yml", raw)

	if res.Skipped != 3 {
		t.Errorf("expected 3 skipped, got %d", res.Skipped)
	}
	if res.Units != 1 || gw.batches[0].Texts[0] != "$CHARACTER$ rules" {
		t.Errorf("only the mixed value should be sent, got %+v", gw.batches)
	}
	for i := 0; i < 3; i++ {
		if res.Lines[i] != raw[i] {
			t.Errorf("skipped line %d changed: %q", i, res.Lines[i])
		}
	}
}

func TestTranslator_BatchBoundaries(t *testing.T) {
	gw := &fakeGateway{}
	tr := newTestTranslator(gw)

	var raw []string
	for i := 0; i < 120; i++ {
		raw = append(raw, fmt.Sprintf(" k_%d:0 \"text %d\"\n", i, i))
	}

	res, err := tr.ProcessLines(context.Background(), "big.yml", raw)
	if err != nil {
		t.Fatalf("ProcessLines failed: %v", err)
	}

	if len(gw.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(gw.batches))
	}
	sizes := []int{len(gw.batches[0].Texts), len(gw.batches[1].Texts), len(gw.batches[2].Texts)}
	if sizes[0] != 50 || sizes[1] != 50 || sizes[2] != 20 {
		t.Errorf("batch sizes = %v, want [50 50 20]", sizes)
	}
	if gw.batches[1].Texts[0] != "text 50" {
		t.Errorf("batches should follow file order, got %q", gw.batches[1].Texts[0])
	}
	if res.Translated != 120 {
		t.Errorf("expected 120 translated, got %d", res.Translated)
	}
}

func TestTranslator_CountMismatchFallsBackToSingles(t *testing.T) {
	gw := &fakeGateway{
		batch: func(req BatchRequest) ([]string, error) {
			return []string{"only one"}, nil
		},
	}
	tr := newTestTranslator(gw)

	res, _ := tr.ProcessLines(context.Background(), "a.yml", lines(` k_a:0 "A"`, ` k_b:0 "B"`, ` k_c:0 "C"`))

	batch, single := gw.calls()
	if batch != 1 || single != 3 {
		t.Errorf("expected 1 batch and 3 singles, got %d and %d", batch, single)
	}
	if res.Translated != 3 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Lines[2] != ` k_c:0 "de:C"  #~TR~`+"\n" {
		t.Errorf("unexpected line %q", res.Lines[2])
	}
}

func TestTranslator_SingleFailureLogged(t *testing.T) {
	sink := &memorySink{}
	gw := &fakeGateway{
		batchErr: &ProviderError{Message: "boom"},
		one: func(req SingleRequest) (string, error) {
			if req.Text == "B" {
				return "", &ProviderError{Message: "still boom"}
			}
			return "de:" + req.Text, nil
		},
	}
	tr := newTestTranslator(gw, WithFailureSink(sink))

	raw := lines("l_german:", ` k_a:0 "A"`, ` k_b:0 "B"`)
	res, err := tr.ProcessLines(context.Background(), "a_german.yml", raw)
	if err != nil {
		t.Fatalf("ProcessLines failed: %v", err)
	}

	if res.Translated != 1 || res.Failed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Lines[2] != raw[2] {
		t.Errorf("failed line should be kept, got %q", res.Lines[2])
	}
	want := FailureRecord{File: "a_german.yml", Line: 3, Text: "B"}
	if len(sink.records) != 1 || sink.records[0] != want {
		t.Errorf("failure records = %+v, want %+v", sink.records, want)
	}
	if _, single := gw.calls(); single != 2 {
		t.Errorf("each unit should get exactly one single attempt, got %d", single)
	}
}

func TestTranslator_EmptySingleResultFails(t *testing.T) {
	gw := &fakeGateway{
		batchErr: errors.New("bad batch"),
		one:      func(req SingleRequest) (string, error) { return "  ", nil },
	}
	tr := newTestTranslator(gw)

	res, _ := tr.ProcessLines(context.Background(), "a.yml", lines(` k_a:0 "A"`))
	if res.Failed != 1 || res.Changed {
		t.Errorf("empty result should count as failure: %+v", res)
	}
}

func TestTranslator_EmptyBatchResultFallsBack(t *testing.T) {
	gw := &fakeGateway{
		batch: func(req BatchRequest) ([]string, error) {
			return []string{"de:A", ""}, nil
		},
	}
	tr := newTestTranslator(gw)

	res, _ := tr.ProcessLines(context.Background(), "a.yml", lines(` k_a:0 "A"`, ` k_b:0 "B"`))

	if batch, single := gw.calls(); batch != 1 || single != 2 {
		t.Errorf("expected 1 batch and 2 singles, got %d and %d", batch, single)
	}
	if res.Translated != 2 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Lines[1] != ` k_b:0 "de:B"  #~TR~`+"\n" {
		t.Errorf("blank batch result should not be committed, got %q", res.Lines[1])
	}
}

func TestTranslator_BlankSingleNotReusedFromCache(t *testing.T) {
	replies := []string{"", "Hallo"}
	gw := &fakeGateway{
		batchErr: &ProviderError{Message: "boom"},
		one: func(req SingleRequest) (string, error) {
			r := replies[0]
			replies = replies[1:]
			return r, nil
		},
	}
	cached := NewCachedGateway(gw, &mapCache{})
	tr := newTestTranslator(cached)
	raw := lines(`k:0 "Hello"`)

	first, _ := tr.ProcessLines(context.Background(), "a.yml", raw)
	if first.Failed != 1 || first.Lines[0] != raw[0] {
		t.Fatalf("first run should keep the line: %+v", first)
	}

	second, _ := tr.ProcessLines(context.Background(), "a.yml", raw)
	if second.Lines[0] != `k:0 "Hallo"  #~TR~`+"\n" {
		t.Errorf("second run wrote %q", second.Lines[0])
	}
	if _, single := gw.calls(); single != 2 {
		t.Errorf("expected a fresh single call on the second run, got %d", single)
	}
}

func TestTranslator_CooldownAfterEveryCall(t *testing.T) {
	gw := &fakeGateway{
		batch: func(req BatchRequest) ([]string, error) {
			return nil, errors.New("fail")
		},
	}
	tr := NewTranslator("german", gw, WithCooldown(250*time.Millisecond))

	var slept []time.Duration
	tr.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	tr.ProcessLines(context.Background(), "a.yml", lines(` k_a:0 "A"`, ` k_b:0 "B"`))

	batch, single := gw.calls()
	if len(slept) != batch+single {
		t.Errorf("expected %d cool-downs, got %d", batch+single, len(slept))
	}
	for _, d := range slept {
		if d != 250*time.Millisecond {
			t.Errorf("unexpected cool-down %v", d)
		}
	}
}

func TestTranslator_HalvingStrategy(t *testing.T) {
	gw := &fakeGateway{
		batch: func(req BatchRequest) ([]string, error) {
			if len(req.Texts) > 2 {
				return nil, errors.New("too big")
			}
			out := make([]string, len(req.Texts))
			for i, text := range req.Texts {
				out[i] = "de:" + text
			}
			return out, nil
		},
	}
	tr := newTestTranslator(gw, WithStrategy(FixedStrategy{Size: 8, FallbackDepth: 3}))

	var raw []string
	for i := 0; i < 8; i++ {
		raw = append(raw, fmt.Sprintf(" k_%d:0 \"t%d\"\n", i, i))
	}
	res, _ := tr.ProcessLines(context.Background(), "a.yml", raw)

	batch, single := gw.calls()
	if batch != 7 || single != 0 {
		t.Errorf("expected 7 batch calls (8, 4+4, 2+2+2+2) and no singles, got %d and %d", batch, single)
	}
	if res.Translated != 8 || res.Batches != 7 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestTranslator_NoFallback(t *testing.T) {
	sink := &memorySink{}
	gw := &fakeGateway{batchErr: errors.New("fail")}
	tr := newTestTranslator(gw, WithStrategy(FixedStrategy{Size: 10, FallbackDepth: 0}), WithFailureSink(sink))

	res, _ := tr.ProcessLines(context.Background(), "a.yml", lines(` k_a:0 "A"`, ` k_b:0 "B"`))
	if _, single := gw.calls(); single != 0 {
		t.Errorf("fallback disabled, got %d singles", single)
	}
	if res.Failed != 2 || len(sink.records) != 2 {
		t.Errorf("both units should be logged: %+v", res)
	}
}

func TestTranslator_ArticleAndPhraseRoutes(t *testing.T) {
	gw := &fakeGateway{
		batch: func(req BatchRequest) ([]string, error) {
			out := make([]string, len(req.Texts))
			for i := range req.Texts {
				switch req.Mode {
				case ModeArticle:
					out[i] = "das"
				case ModePhrase:
					out[i] = "der König von Gondor"
				default:
					out[i] = "de:" + req.Texts[i]
				}
			}
			return out, nil
		},
	}
	tr := newTestTranslator(gw)

	raw := lines(
		` k_rohan_article:0 "$the_$ "`,
		` k_king:0 "$the_$ King of Gondor"`,
		` k_plain:0 "Hello"`,
	)
	res, _ := tr.ProcessLines(context.Background(), "a.yml", raw)

	if len(gw.batches) != 3 {
		t.Fatalf("each route should get its own batch, got %d", len(gw.batches))
	}
	modes := []Mode{gw.batches[0].Mode, gw.batches[1].Mode, gw.batches[2].Mode}
	if modes[0] != ModeTranslate || modes[1] != ModeArticle || modes[2] != ModePhrase {
		t.Errorf("flush order = %v", modes)
	}
	if gw.batches[1].Keys[0] != "k_rohan_article" {
		t.Errorf("article batch should carry keys, got %v", gw.batches[1].Keys)
	}

	if res.Lines[0] != ` k_rohan_article:0 "das "  #~TR~`+"\n" {
		t.Errorf("article spacing not kept: %q", res.Lines[0])
	}
	if res.Lines[1] != ` k_king:0 "der König von Gondor"  #~TR~`+"\n" {
		t.Errorf("unexpected phrase line: %q", res.Lines[1])
	}
}

func TestTranslator_FixArticlesMode(t *testing.T) {
	gw := &fakeGateway{
		batch: func(req BatchRequest) ([]string, error) {
			return []string{"die"}, nil
		},
	}
	tr := newTestTranslator(gw, WithRoutes(RouteArticle, RoutePhrase), WithReprocessMarked(true))

	raw := lines(
		` k_shire_article:0 "$the_$ "  #~TR~`,
		` k_done:0 "Fertig"  #~TR~`,
		` k_new:0 "Hello"`,
	)
	res, _ := tr.ProcessLines(context.Background(), "a.yml", raw)

	if res.Lines[0] != ` k_shire_article:0 "die "  #~TR~`+"\n" {
		t.Errorf("marker should appear once: %q", res.Lines[0])
	}
	if res.Lines[1] != raw[1] || res.Lines[2] != raw[2] {
		t.Error("translate-route lines should be left alone")
	}
	if len(gw.batches) != 1 || gw.batches[0].Mode != ModeArticle {
		t.Errorf("only the article batch should be sent: %+v", gw.batches)
	}
}

func TestTranslator_ContextCancelled(t *testing.T) {
	gw := &fakeGateway{}
	tr := newTestTranslator(gw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.ProcessLines(ctx, "a.yml", lines(` k_a:0 "A"`))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTranslator_Scan(t *testing.T) {
	gw := &fakeGateway{}
	tr := newTestTranslator(gw)

	units := tr.Scan("a.yml", lines("l_german:", ` k_a:0 "A"`, ` k_b:0 "$the_$ B"`, ` k_v:0 "$V$"`))
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Route != RouteTranslate || units[1].Route != RoutePhrase {
		t.Errorf("unexpected routes: %v, %v", units[0].Route, units[1].Route)
	}
	if units[1].Line.Index != 2 || units[1].File != "a.yml" {
		t.Errorf("unexpected unit: %+v", units[1])
	}
	if batch, single := gw.calls(); batch+single != 0 {
		t.Error("Scan should not call the gateway")
	}
}

func TestTranslator_Options(t *testing.T) {
	tr := NewTranslator("german", &fakeGateway{},
		WithSourceLang("french"),
		WithStrategy(FixedStrategy{Size: 10, FallbackDepth: 2}),
	)

	if tr.TargetLang() != "german" {
		t.Errorf("TargetLang = %q", tr.TargetLang())
	}
	if tr.SourceLang() != "french" {
		t.Errorf("SourceLang = %q", tr.SourceLang())
	}
	if tr.Strategy().BatchSize() != 10 {
		t.Errorf("BatchSize = %d", tr.Strategy().BatchSize())
	}
	if tr.cooldown != DefaultCooldown {
		t.Errorf("default cooldown = %v", tr.cooldown)
	}
}
