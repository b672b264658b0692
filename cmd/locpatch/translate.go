package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaguanLabs/locpatch"
	"github.com/ZaguanLabs/locpatch/cache"
	"github.com/ZaguanLabs/locpatch/config"
	"github.com/ZaguanLabs/locpatch/provider"
	"github.com/spf13/cobra"
)

// runFlags are the flags shared by translate and fix-articles.
type runFlags struct {
	suffix    string
	batchSize int
	cooldown  time.Duration
	model     string
	noCache   bool
	dryRun    bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.suffix, "suffix", "", "File name suffix to process (default: _<target_lang>.yml)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Values per gateway call (default: config batch_size)")
	cmd.Flags().DurationVar(&f.cooldown, "cooldown", time.Second, "Pause after every gateway call (default: config cooldown)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (default: config model)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Disable the translation memory")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print the rewritten lines instead of saving the files")
}

// apply folds the flags that were set into the loaded config.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if cmd.Flags().Changed("cooldown") {
		cfg.Cooldown = f.cooldown
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.noCache {
		cfg.Cache.Backend = "none"
	}
	return cfg.Validate()
}

func (f *runFlags) fileSuffix(cfg *config.Config) string {
	if f.suffix != "" {
		return f.suffix
	}
	return locpatch.FileSuffix(cfg.TargetLang)
}

func (a *app) translateCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "translate [dir]",
		Short: "Translate every unprocessed value in the target language files",
		Long: `Walk dir (default TRANSLATE_FOLDER_PATH or the config "translate_folder")
and translate every value of every *_<target_lang>.yml file that does not
carry the #~TR~ marker. Values are sent in batches; a failed batch is
retried value by value and values that still fail are written to the
failure log.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}
			dir := dirArg(args, a.cfg.TranslateFolder)
			if err := config.RequireDir("translate_folder", dir); err != nil {
				return err
			}

			return a.runDriver(cmd.Context(), dir, nil, &flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *app) fixArticlesCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "fix-articles [file|dir]",
		Short: "Replace $the_$ placeholders with the correct article",
		Long: `Resolve article placeholders in one file or in every target language file
under a directory (default FIX_ARTICLES_FILE_PATH or the config
"fix_articles_path"). A value that is only the placeholder gets the article
inferred from its key; a phrase containing the placeholder is corrected as
a whole. Lines already marked #~TR~ are processed too.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}
			path := dirArg(args, a.cfg.FixArticlesPath)
			if err := config.RequirePath("fix_articles_path", path); err != nil {
				return err
			}

			opts := []locpatch.TranslatorOption{
				locpatch.WithRoutes(locpatch.RouteArticle, locpatch.RoutePhrase),
				locpatch.WithReprocessMarked(true),
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return a.runDriver(cmd.Context(), path, nil, &flags, opts...)
			}
			return a.runDriver(cmd.Context(), filepath.Dir(path), []string{path}, &flags, opts...)
		},
	}

	flags.register(cmd)
	return cmd
}

// runDriver builds the gateway stack and runs the driver, over files when
// given or over the whole tree otherwise.
func (a *app) runDriver(ctx context.Context, root string, files []string, flags *runFlags, opts ...locpatch.TranslatorOption) error {
	gw, closeGateway, err := a.buildGateway(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeGateway(); err != nil {
			a.log.Warn().Err(err).Msg("closing translation memory")
		}
	}()

	base := []locpatch.TranslatorOption{
		locpatch.WithSourceLang(a.cfg.SourceLang),
		locpatch.WithStrategy(locpatch.FixedStrategy{Size: a.cfg.BatchSize, FallbackDepth: a.cfg.FallbackDepth}),
		locpatch.WithCooldown(a.cfg.Cooldown),
		locpatch.WithLogger(a.log),
	}
	t := locpatch.NewTranslator(a.cfg.TargetLang, gw, append(base, opts...)...)

	d, err := locpatch.NewDriver(locpatch.DriverConfig{
		Root:       root,
		Suffix:     flags.fileSuffix(a.cfg),
		FailureLog: a.cfg.FailureLog,
		DryRun:     flags.dryRun,
	}, t, locpatch.WithDriverLogger(a.log))
	if err != nil {
		return err
	}

	var report *locpatch.RunReport
	if files != nil {
		report, err = d.RunFiles(ctx, files)
	} else {
		report, err = d.Run(ctx)
	}
	a.printReport(report, d.FailureLog())
	if cg, ok := gw.(*locpatch.CachedGateway); ok {
		hits, misses := cg.Stats()
		a.log.Debug().Int64("hits", hits).Int64("misses", misses).Msg("translation memory")
	}
	return err
}

func (a *app) printReport(report *locpatch.RunReport, failures *locpatch.FailureLog) {
	if report == nil {
		return
	}
	for _, fr := range report.Files {
		if fr.Err != nil {
			errColor.Fprintf(a.stdout, "  %s: %v\n", fr.Path, fr.Err)
			continue
		}
		if fr.Written {
			fmt.Fprintf(a.stdout, "  %s: %d translated, %d failed\n", fr.Path, fr.Result.Translated, fr.Result.Failed)
			continue
		}
		if fr.Diff != nil {
			a.printDiff(fr.Path, fr.Diff)
		}
	}

	okColor.Fprintf(a.stdout, "%d files, %d written, %d values translated in %v\n",
		len(report.Files), report.Written, report.Translated, report.Elapsed.Round(time.Millisecond))
	if report.Failed > 0 {
		warnColor.Fprintf(a.stdout, "%d values failed, see %s\n", report.Failed, failures.Path())
	}
}

func (a *app) printDiff(path string, diff *locpatch.DiffResult) {
	fmt.Fprintf(a.stdout, "  %s: %d lines would change\n", path, len(diff.Changes))
	for _, c := range diff.Changes {
		fmt.Fprintf(a.stdout, "    %d\n", c.Line)
		errColor.Fprintf(a.stdout, "    - %s\n", c.Old)
		okColor.Fprintf(a.stdout, "    + %s\n", c.New)
	}
}

// buildGateway assembles provider, retry, rate limit and translation
// memory. The returned func releases the memory and must always be called.
func (a *app) buildGateway(ctx context.Context) (locpatch.Gateway, func() error, error) {
	noop := func() error { return nil }

	gw := a.gateway
	if gw == nil {
		if err := a.cfg.RequireAPIKey(); err != nil {
			return nil, noop, err
		}
		gw = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:      a.cfg.APIKey,
			Model:       a.cfg.Model,
			BaseURL:     a.cfg.BaseURL,
			Temperature: a.cfg.Temperature,
			Setting:     a.cfg.Setting,
			Rules:       a.cfg.Rules,
		})
	}

	if a.cfg.MaxRetries > 0 {
		rc := locpatch.DefaultRetryConfig()
		rc.MaxRetries = a.cfg.MaxRetries
		gw = locpatch.NewRetryableGateway(gw, rc)
	}
	if a.cfg.RatePerMinute > 0 {
		gw = locpatch.NewRateLimitedGateway(gw, locpatch.RateLimitConfig{RequestsPerMinute: a.cfg.RatePerMinute})
	}

	switch a.cfg.Cache.Backend {
	case "memory":
		mem := cache.NewMemory(a.cfg.Cache.TTL)
		closeFn := noop
		if file := a.cfg.Cache.File; file != "" {
			res, err := cache.ImportFromFile(ctx, file, mem)
			if err != nil {
				return nil, noop, &locpatch.CacheError{Message: "loading " + file, Cause: err}
			}
			a.log.Info().Str("file", file).Int("entries", res.Imported).Msg("translation memory loaded")
			closeFn = func() error {
				meta := map[string]string{"source": a.cfg.SourceLang, "target": a.cfg.TargetLang}
				return cache.ExportToFile(file, mem, meta)
			}
		}
		return locpatch.NewCachedGateway(gw, mem).WithLogger(a.log), closeFn, nil

	case "redis":
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{URL: a.cfg.Cache.RedisURL, TTL: a.cfg.Cache.TTL})
		if err != nil {
			return nil, noop, &locpatch.CacheError{Message: "connecting to redis", Cause: err}
		}
		return locpatch.NewCachedGateway(gw, rc).WithLogger(a.log), rc.Close, nil
	}

	return gw, noop, nil
}

func (a *app) scanCmd() *cobra.Command {
	var suffix string
	var articles, asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "List the values translate would send, without calling the API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dirArg(args, a.cfg.TranslateFolder)
			if err := config.RequireDir("translate_folder", dir); err != nil {
				return err
			}
			if suffix == "" {
				suffix = locpatch.FileSuffix(a.cfg.TargetLang)
			}

			var opts []locpatch.TranslatorOption
			if articles {
				opts = append(opts,
					locpatch.WithRoutes(locpatch.RouteArticle, locpatch.RoutePhrase),
					locpatch.WithReprocessMarked(true))
			}
			t := locpatch.NewTranslator(a.cfg.TargetLang, nil, opts...)

			files, walkErr := locpatch.WalkFiles(dir, locpatch.HasSuffix(suffix))
			if walkErr != nil {
				a.log.Warn().Err(walkErr).Msg("walk incomplete")
			}

			out := scanOutput{Root: dir, Suffix: suffix}
			for _, path := range files {
				lines, err := locpatch.ReadLines(path)
				if err != nil {
					a.log.Error().Err(err).Str("file", path).Msg("reading file")
					continue
				}
				sf := scanFile{Path: path}
				for _, u := range t.Scan(filepath.Base(path), lines) {
					sf.Units = append(sf.Units, scanUnit{
						Line:  u.Line.Index + 1,
						Key:   u.Key,
						Route: string(u.Route),
						Text:  u.Text,
					})
				}
				out.Units += len(sf.Units)
				out.Files = append(out.Files, sf)
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			out.print(a)
			return nil
		},
	}

	cmd.Flags().StringVar(&suffix, "suffix", "", "File name suffix to scan (default: _<target_lang>.yml)")
	cmd.Flags().BoolVar(&articles, "articles", false, "Show what fix-articles would send instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type scanOutput struct {
	Root   string     `json:"root"`
	Suffix string     `json:"suffix"`
	Units  int        `json:"units"`
	Files  []scanFile `json:"files"`
}

type scanFile struct {
	Path  string     `json:"path"`
	Units []scanUnit `json:"units"`
}

type scanUnit struct {
	Line  int    `json:"line"`
	Key   string `json:"key"`
	Route string `json:"route"`
	Text  string `json:"text"`
}

func (o scanOutput) print(a *app) {
	for _, f := range o.Files {
		if len(f.Units) == 0 {
			continue
		}
		fmt.Fprintf(a.stdout, "%s (%d)\n", f.Path, len(f.Units))
		for _, u := range f.Units {
			text := u.Text
			if r := []rune(text); len(r) > 60 {
				text = string(r[:57]) + "..."
			}
			fmt.Fprintf(a.stdout, "  %4d %-9s %s %q\n", u.Line, u.Route, u.Key, text)
		}
	}
	okColor.Fprintf(a.stdout, "%d values in %d files would be sent\n", o.Units, len(o.Files))
}
