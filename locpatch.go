// Package locpatch batch-processes Paradox-style localization files with an
// AI translation backend.
//
// A localization file holds one entry per line:
//
//	l_german:
//	 k_gondor:0 "Gondor" #realm name
//	 k_the_shire_desc:1 "The Shire is green."
//
// Locpatch parses each line, decides whether its value should be sent out,
// groups translatable values into batches, asks a Gateway (an LLM provider)
// to translate or correct them, and splices the results back into the file.
// Rewritten lines carry a processed marker so a second run leaves them alone.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/locpatch"
//	    "github.com/ZaguanLabs/locpatch/provider"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("GEMINI_API_KEY"),
//	    })
//
//	    t := locpatch.NewTranslator("german", p,
//	        locpatch.WithStrategy(locpatch.FixedStrategy{Size: 50, FallbackDepth: 1}),
//	    )
//
//	    d, err := locpatch.NewDriver(locpatch.DriverConfig{
//	        Root:       "localization/german",
//	        Suffix:     "_german.yml",
//	        FailureLog: "translation_errors.log",
//	    }, t)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    report, err := d.Run(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(report.Translated, "values translated")
//	}
package locpatch
