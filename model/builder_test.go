package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlwelles/colaGen/parser"
)

func buildCola(t *testing.T, src string) *Model {
	t.Helper()
	doc, err := parser.ParseCola(src)
	require.NoError(t, err)
	m, err := Build(doc)
	require.NoError(t, err)
	return m
}

func buildColaErr(t *testing.T, src string) BuildErrors {
	t.Helper()
	doc, err := parser.ParseCola(src)
	require.NoError(t, err)
	_, err = Build(doc)
	var errs BuildErrors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestBuildSingleEntityWithIntegerField(t *testing.T) {
	doc, err := parser.Parse("```cola\nx: a: 1 ; ;\n```\n")
	require.NoError(t, err)
	m, err := Build(doc)
	require.NoError(t, err)

	xID, ok := m.FindChildEntityByName(m.RootID(), "x")
	require.True(t, ok)
	x := m.Node(xID)
	assert.Equal(t, KindEntity, x.Kind)
	assert.Equal(t, "x", x.TypeName)

	v, ok := m.FieldValue(xID, "a")
	require.True(t, ok)
	assert.Equal(t, ValueInteger, v.Kind)
	assert.Equal(t, int64(1), v.Int)
}

func TestBuildPluralWithInstance(t *testing.T) {
	m := buildCola(t, `llm plural llms: openai: api: key: "k" ; ; ;`)

	pluralID, ok := m.FindChildEntityByName(m.RootID(), "llms")
	require.True(t, ok)
	plural := m.Node(pluralID)
	assert.Equal(t, KindPlural, plural.Kind)
	assert.Equal(t, "llms", plural.Name)
	assert.Equal(t, "llm", plural.TypeName)

	openaiID, ok := m.FindChildEntityByName(pluralID, "openai")
	require.True(t, ok)
	openai := m.Node(openaiID)
	assert.Equal(t, KindEntity, openai.Kind)
	assert.Equal(t, "openai", openai.Name)
	// Instances of a plural carry the declared singular type.
	assert.Equal(t, "llm", openai.TypeName)

	apiID, ok := m.FindChildEntityByName(openaiID, "api")
	require.True(t, ok)
	v, ok := m.FieldValue(apiID, "key")
	require.True(t, ok)
	assert.Equal(t, ValueString, v.Kind)
	assert.Equal(t, "k", v.Str)
}

func TestBuildTwoBlocksConcatenate(t *testing.T) {
	src := "```cola\na: x: 1 ;\n```\n" +
		"Some prose.\n" +
		"```cola\nb: y: 2 ;\n```\n"
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	m, err := Build(doc)
	require.NoError(t, err)

	root := m.Node(m.RootID())
	var names []string
	for pair := root.Children.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestBuildMarkdownWithoutColaBlocks(t *testing.T) {
	doc, err := parser.Parse("# Title\n\nNo config here.\n")
	require.NoError(t, err)
	m, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Node(m.RootID()).Children.Len())
}

func TestBuildEmptyColaBlock(t *testing.T) {
	doc, err := parser.Parse("```cola\n```\n")
	require.NoError(t, err)
	m, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Node(m.RootID()).Children.Len())
}

func TestBuildValueKinds(t *testing.T) {
	m := buildCola(t, `v: s: "str", i: 42, neg: -3, f: 2.5, nf: -0.25, t: true, b: false ;`)

	id, ok := m.FindChildEntityByName(m.RootID(), "v")
	require.True(t, ok)

	tests := []struct {
		field string
		want  Value
	}{
		{"s", StringValue("str")},
		{"i", IntegerValue(42)},
		{"neg", IntegerValue(-3)},
		{"f", FloatValue(2.5)},
		{"nf", FloatValue(-0.25)},
		{"t", BooleanValue(true)},
		{"b", BooleanValue(false)},
	}
	for _, tt := range tests {
		v, ok := m.FieldValue(id, tt.field)
		require.True(t, ok, "field %s missing", tt.field)
		assert.True(t, v.Equal(tt.want), "field %s = %v, want %v", tt.field, v, tt.want)
	}
}

func TestBuildStringEscapes(t *testing.T) {
	m := buildCola(t, `e: dq: "a\"b", bs: "a\\b", sq: 'it\'s', any: "\x" ;`)
	id, _ := m.FindChildEntityByName(m.RootID(), "e")

	want := map[string]string{
		"dq":  `a"b`,
		"bs":  `a\b`,
		"sq":  "it's",
		"any": "x",
	}
	for field, expected := range want {
		v, ok := m.FieldValue(id, field)
		require.True(t, ok)
		assert.Equal(t, expected, v.Str, "field %s", field)
	}
}

func TestBuildIntegerBoundaries(t *testing.T) {
	t.Run("max int64 parses", func(t *testing.T) {
		m := buildCola(t, "n: v: 9223372036854775807 ;")
		id, _ := m.FindChildEntityByName(m.RootID(), "n")
		v, ok := m.FieldValue(id, "v")
		require.True(t, ok)
		assert.Equal(t, int64(9223372036854775807), v.Int)
	})

	t.Run("min int64 parses", func(t *testing.T) {
		m := buildCola(t, "n: v: -9223372036854775808 ;")
		id, _ := m.FindChildEntityByName(m.RootID(), "n")
		v, ok := m.FieldValue(id, "v")
		require.True(t, ok)
		assert.Equal(t, int64(-9223372036854775808), v.Int)
	})

	t.Run("one past max is a model error", func(t *testing.T) {
		errs := buildColaErr(t, "n: v: 9223372036854775808 ;")
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "out of 64-bit signed range")
	})

	t.Run("negative zero folds to zero", func(t *testing.T) {
		m := buildCola(t, "n: v: -0 ;")
		id, _ := m.FindChildEntityByName(m.RootID(), "n")
		v, _ := m.FieldValue(id, "v")
		assert.Equal(t, int64(0), v.Int)
	})
}

func TestBuildDuplicateFieldIsError(t *testing.T) {
	errs := buildColaErr(t, "d: a: 1, a: 2 ;")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicate field")
}

func TestBuildDuplicateChildIsError(t *testing.T) {
	errs := buildColaErr(t, "p: c: x: 1 ; c: x: 2 ; ;")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicate child")
}

func TestBuildFieldListUnderPluralIsError(t *testing.T) {
	errs := buildColaErr(t, "item plural items: stray: 1 ;")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "field list not allowed directly inside plural")
}

func TestBuildPluralUnderPluralIsError(t *testing.T) {
	errs := buildColaErr(t, "a plural as: b plural bs: ; ;")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "not allowed directly inside plural")
}

func TestBuildAccumulatesMultipleErrors(t *testing.T) {
	errs := buildColaErr(t, "d: a: 1, a: 2, b: 9223372036854775808 ;")
	assert.Len(t, errs, 2)
}

func TestBuildRoundTrip(t *testing.T) {
	doc, err := parser.ParseFile("../testdata/genite.md")
	require.NoError(t, err)
	m, err := Build(doc)
	require.NoError(t, err)

	doc2, err := parser.ParseCola(m.String())
	require.NoError(t, err)
	m2, err := Build(doc2)
	require.NoError(t, err)

	assertIsomorphic(t, m, m.RootID(), m2, m2.RootID())
}

// assertIsomorphic compares two model subtrees: same names, kinds, types,
// fields, and child order.
func assertIsomorphic(t *testing.T, a *Model, aID NodeID, b *Model, bID NodeID) {
	t.Helper()
	an := a.Node(aID)
	bn := b.Node(bID)
	require.Equal(t, an.Kind, bn.Kind)
	require.Equal(t, an.Name, bn.Name)
	require.Equal(t, an.TypeName, bn.TypeName)

	require.Equal(t, an.Fields.Len(), bn.Fields.Len(), "field count of %q", an.Name)
	for pair := an.Fields.Oldest(); pair != nil; pair = pair.Next() {
		bv, ok := bn.Fields.Get(pair.Key)
		require.True(t, ok, "field %q of %q", pair.Key, an.Name)
		assert.True(t, pair.Value.Equal(bv), "field %q of %q: %v != %v", pair.Key, an.Name, pair.Value, bv)
	}

	require.Equal(t, an.Children.Len(), bn.Children.Len(), "child count of %q", an.Name)
	bPair := bn.Children.Oldest()
	for aPair := an.Children.Oldest(); aPair != nil; aPair = aPair.Next() {
		require.NotNil(t, bPair)
		require.Equal(t, aPair.Key, bPair.Key, "child order under %q", an.Name)
		assertIsomorphic(t, a, aPair.Value, b, bPair.Value)
		bPair = bPair.Next()
	}
}
