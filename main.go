// colaGen is a code generation tool that reads Cola configuration source —
// either bare .cola files or Markdown documents with ```cola fenced code
// blocks — and produces a typed Go configuration library with constructors
// that rebuild the configuration from a parsed model at runtime.
//
// Usage:
//
//	colaGen [flags] <input>
//
// By default it emits a self-contained generated module ("crate" mode) under
// the output directory; module mode emits a single drop-in source file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mlwelles/colaGen/generator"
	"github.com/mlwelles/colaGen/model"
	"github.com/mlwelles/colaGen/parser"
)

func main() {
	modeFlag := flag.String("mode", "crate", `generation mode: "crate" or "module"`)
	crateName := flag.String("crate-name", "", `name of the generated library (default: input file stem + "-config")`)
	outputDir := flag.String("output", "generated", "base output directory")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: colaGen [flags] <input>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mode, err := generator.ParseMode(*modeFlag)
	if err != nil {
		fatal(err)
	}

	name := *crateName
	if name == "" {
		name = defaultCrateName(input)
	}

	// Parse phase: source text to concrete parse tree.
	doc, err := parser.ParseFile(input)
	if err != nil {
		fatal(err)
	}

	// Model phase: lower the parse tree to the configuration model.
	m, err := model.Build(doc)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Config structure:\n%s\n", m.PrettyString())

	// Generate phase: infer the schema and render output files.
	g, err := generator.New(m, generator.Options{
		Mode:       mode,
		Name:       name,
		OutputDir:  *outputDir,
		SourcePath: input,
		Logger:     logger,
	})
	if err != nil {
		fatal(err)
	}

	schema := g.Schema()
	fmt.Printf("Types: %d\n", len(schema.Types))
	for _, t := range schema.Types {
		fmt.Printf("  - %s: %d fields\n", t.Name, len(t.Fields))
	}
	fmt.Printf("Collections: %d\n", len(schema.Plurals))

	fmt.Printf("\nGenerating %s into %s ...\n", name, *outputDir)
	if err := g.Generate(); err != nil {
		fatal(err)
	}
	fmt.Println("Done.")
}

// defaultCrateName derives the artifact name from the input file stem:
// lowercased, underscores replaced by hyphens, suffixed with "-config".
func defaultCrateName(input string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	stem = strings.ToLower(strings.ReplaceAll(stem, "_", "-"))
	return stem + "-config"
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
