// Package generator derives a Go type schema from a configuration model and
// renders it through templates into a typed configuration library, either as
// a standalone generated module ("crate" mode) or a single drop-in file
// ("module" mode).
package generator

import (
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mlwelles/colaGen/model"
)

// Mode selects the packaging shape of the generated artifact.
type Mode int

const (
	// ModeCrate emits a self-contained Go module directory with a
	// manifest, library source, integration test, and bundled sample.
	ModeCrate Mode = iota
	// ModeModule emits a single source file plus a sibling test file.
	ModeModule
)

// ParseMode maps the CLI spelling of a mode to its value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "crate":
		return ModeCrate, nil
	case "module":
		return ModeModule, nil
	default:
		return 0, errors.Newf("unknown mode %q (want \"crate\" or \"module\")", s)
	}
}

// Options configures a Generator.
type Options struct {
	Mode       Mode
	Name       string // artifact name, e.g. "genite-config"
	OutputDir  string // base output directory
	SourcePath string // input file; bundled into crate-mode artifacts
	// ColaGenPath is the relative path from the generated module to the
	// colaGen module, used in the manifest's replace directive.
	ColaGenPath string
	Logger      *zap.Logger
}

// Generator renders one model into files on disk. The model and the derived
// schema are read-only once the generator is constructed.
type Generator struct {
	model  *model.Model
	schema *Schema
	opts   Options
	tmpl   *template.Template
	log    *zap.Logger
}

// New infers the schema for m and prepares the template set.
func New(m *model.Model, opts Options) (*Generator, error) {
	schema, err := Infer(m)
	if err != nil {
		return nil, err
	}
	tmpl, err := newTemplates()
	if err != nil {
		return nil, err
	}
	if opts.ColaGenPath == "" {
		opts.ColaGenPath = "../.."
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{model: m, schema: schema, opts: opts, tmpl: tmpl, log: log}, nil
}

// Schema returns the inferred target schema.
func (g *Generator) Schema() *Schema {
	return g.schema
}

// Generate writes the artifact for the configured mode.
func (g *Generator) Generate() error {
	if g.opts.Mode == ModeModule {
		return g.generateModule()
	}
	return g.generateCrate()
}

func (g *Generator) generateCrate() error {
	dir := filepath.Join(g.opts.OutputDir, g.opts.Name)
	if err := os.MkdirAll(filepath.Join(dir, "testdata"), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	pkg := Sanitize(g.opts.Name, IdentVariable)

	lib, err := g.renderLibrary(pkg)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "config.go"), lib); err != nil {
		return err
	}

	test, err := g.renderIntegrationTest(pkg, filepath.Join("testdata", "config.md"))
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "config_test.go"), test); err != nil {
		return err
	}

	manifest, err := render(g.tmpl, "go_mod", map[string]any{
		"module_path":  g.opts.Name,
		"colagen_path": filepath.ToSlash(g.opts.ColaGenPath),
	})
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "go.mod"), manifest); err != nil {
		return err
	}

	readme, err := render(g.tmpl, "readme", map[string]any{
		"crate_name":      g.opts.Name,
		"config_filename": filepath.Base(g.opts.SourcePath),
		"root_struct":     g.rootStructName(),
	})
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "README.md"), readme); err != nil {
		return err
	}

	if err := g.copySource(filepath.Join(dir, "testdata", "config.md")); err != nil {
		return err
	}

	g.log.Info("generated crate",
		zap.String("dir", dir),
		zap.String("package", pkg),
		zap.Int("types", len(g.schema.Types)),
		zap.Int("plurals", len(g.schema.Plurals)))
	return nil
}

func (g *Generator) generateModule() error {
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", g.opts.OutputDir)
	}
	pkg := Sanitize(g.opts.Name, IdentVariable)

	lib, err := g.renderLibrary(pkg)
	if err != nil {
		return err
	}
	libPath := filepath.Join(g.opts.OutputDir, g.opts.Name+".go")
	if err := writeFile(libPath, lib); err != nil {
		return err
	}

	test, err := g.renderIntegrationTest(pkg, g.opts.SourcePath)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(g.opts.OutputDir, g.opts.Name+"_test.go"), test); err != nil {
		return err
	}

	g.log.Info("generated module", zap.String("file", libPath), zap.String("package", pkg))
	return nil
}

// renderLibrary renders the header, every entity struct, and every plural
// wrapper into one source file.
func (g *Generator) renderLibrary(pkg string) (string, error) {
	out, err := render(g.tmpl, "file_header", map[string]any{
		"source":  filepath.ToSlash(g.opts.SourcePath),
		"package": pkg,
	})
	if err != nil {
		return "", err
	}

	for _, et := range g.schema.Types {
		part, err := render(g.tmpl, "entity_struct", g.entityContext(et))
		if err != nil {
			return "", err
		}
		out += "\n" + part
	}
	for _, pt := range g.schema.Plurals {
		part, err := render(g.tmpl, "plural_struct", map[string]any{
			"struct_name":          pt.Name,
			"singular_struct_name": pt.SingularName,
		})
		if err != nil {
			return "", err
		}
		out += "\n" + part
	}
	return out, nil
}

func (g *Generator) entityContext(et *EntityType) map[string]any {
	fields := make([]map[string]any, 0, len(et.Fields))
	for _, f := range et.Fields {
		fields = append(fields, map[string]any{
			"name":          f.Name,
			"getter":        f.Getter,
			"go_type":       f.GoType(),
			"kind":          f.Kind.String(),
			"kind_const":    kindConst(f.Kind),
			"value_field":   valueField(f.Kind),
			"type_name":     f.TypeName,
			"optional":      f.Optional,
			"source_name":   f.SourceName,
			"source_quoted": strconv.Quote(f.SourceName),
		})
	}
	return map[string]any{
		"struct_name": et.Name,
		"source_name": et.SourceName,
		"is_root":     et.IsRoot,
		"fields":      fields,
	}
}

func (g *Generator) renderIntegrationTest(pkg, testFile string) (string, error) {
	return render(g.tmpl, "integration_test", map[string]any{
		"source":           filepath.ToSlash(g.opts.SourcePath),
		"package":          pkg,
		"test_file_quoted": strconv.Quote(filepath.ToSlash(testFile)),
		"root_struct":      g.rootStructName(),
		"assertions":       g.pluralAssertions(),
	})
}

func (g *Generator) rootStructName() string {
	if g.schema.Root != nil {
		return g.schema.Root.Name
	}
	return "Root"
}

// pluralAssertions lists plural collections as getter chains for the
// generated integration test: one non-empty assertion per plural field of
// each entity type reached from the root, each type being visited once.
// Plurals nested inside another plural are reached through a representative
// instance picked from the model. Optional entity fields are not descended
// into, so plurals below them get no assertion.
func (g *Generator) pluralAssertions() []map[string]any {
	var out []map[string]any
	seen := make(map[string]bool)

	var walk func(et *EntityType, chain string, id model.NodeID)
	walk = func(et *EntityType, chain string, id model.NodeID) {
		if et == nil || seen[et.Key] {
			return
		}
		seen[et.Key] = true
		for _, f := range et.Fields {
			switch f.Kind {
			case FieldPlural:
				pt := g.pluralByName(f.TypeName)
				singular := f.TypeName
				if pt != nil {
					singular = pt.SingularKey
				}
				out = append(out, map[string]any{
					"chain":    chain + f.Getter + "()",
					"plural":   f.SourceName,
					"singular": singular,
				})
				if pt == nil {
					continue
				}
				pid, ok := g.model.FindChildEntityByName(id, f.SourceName)
				if !ok {
					continue
				}
				if name, cid, ok := g.firstPluralInstance(pid); ok {
					walk(g.schema.Type(pt.SingularKey), chain+f.Getter+"().At("+strconv.Quote(name)+").", cid)
				}
			case FieldEntity:
				if f.Optional {
					continue
				}
				cid, ok := g.model.FindChildEntityByName(id, f.SourceName)
				if !ok {
					continue
				}
				walk(g.typeByName(f.TypeName), chain+f.Getter+"().", cid)
			}
		}
	}
	walk(g.schema.Root, "", g.model.RootID())
	return out
}

func (g *Generator) pluralByName(name string) *PluralType {
	for _, pt := range g.schema.Plurals {
		if pt.Name == name {
			return pt
		}
	}
	return nil
}

func (g *Generator) typeByName(name string) *EntityType {
	for _, t := range g.schema.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// firstPluralInstance returns a plural node's first child in source order.
func (g *Generator) firstPluralInstance(pid model.NodeID) (string, model.NodeID, bool) {
	for name, cid := range g.model.ChildrenOfPlural(pid) {
		return name, cid, true
	}
	return "", model.InvalidID, false
}

func (g *Generator) copySource(dst string) error {
	data, err := os.ReadFile(g.opts.SourcePath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", g.opts.SourcePath)
	}
	return writeFile(dst, string(data))
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func kindConst(k FieldKind) string {
	switch k {
	case FieldString:
		return "ValueString"
	case FieldInteger:
		return "ValueInteger"
	case FieldFloat:
		return "ValueFloat"
	case FieldBoolean:
		return "ValueBoolean"
	default:
		return ""
	}
}

func valueField(k FieldKind) string {
	switch k {
	case FieldString:
		return "Str"
	case FieldInteger:
		return "Int"
	case FieldFloat:
		return "Float"
	case FieldBoolean:
		return "Bool"
	default:
		return ""
	}
}
