package dsl_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/dsl"
	"github.com/ByLCY/cardstudio/layout"
)

const sampleScript = `
// recipe card tweaks
title = "Havuçlu Püre"
summary = "6 ay sonrası için"; category = Tarifler
listItems = ["Havuç", "Patates", "  "]
ageGroupColor = #FF8A65

/* attribution */
expert.name = "Dyt. Ayşe"
expert.verified = false
author.visible = true

watermark.position = bottom-left
watermark.opacity = 0.5
watermark.scale = -2
visibility.ingredients = false
visibility.summary = true

format = post
layout = "quote"
theme.accent = #FFB74D
`

func TestParseScript(t *testing.T) {
	script, err := dsl.ParseString(sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(script.Statements) != 16 {
		t.Fatalf("expected 16 statements, got %d", len(script.Statements))
	}
	first := script.Statements[0]
	if first.Key() != "title" || first.Value.String == nil || string(*first.Value.String) != "Havuçlu Püre" {
		t.Fatalf("unexpected first statement %+v", first)
	}
	if first.Pos.Line != 3 {
		t.Fatalf("expected title on line 3, got %d", first.Pos.Line)
	}
	cat := script.Statements[2]
	if cat.Key() != "category" || cat.Value.Ident == nil || *cat.Value.Ident != "Tarifler" {
		t.Fatalf("expected bare identifier value, got %+v", cat.Value)
	}
	list := script.Statements[3].Value.Array
	if list == nil || len(list.Values) != 3 {
		t.Fatalf("expected 3 list values, got %+v", list)
	}
	color := script.Statements[4].Value
	if color.Color == nil || *color.Color != "#FF8A65" {
		t.Fatalf("expected color literal, got %s", color.Kind())
	}
	op := script.Statements[9]
	if op.Key() != "watermark.opacity" || op.Value.Number == nil || *op.Value.Number != 0.5 {
		t.Fatalf("unexpected opacity statement %+v", op)
	}
}

func TestCompileBuildsPatch(t *testing.T) {
	edits, err := dsl.CompileString(sampleScript)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if edits.Format == nil || *edits.Format != layout.FormatPost {
		t.Fatalf("expected post format, got %v", edits.Format)
	}
	if edits.Layout == nil || *edits.Layout != layout.Quote {
		t.Fatalf("expected quote layout, got %v", edits.Layout)
	}
	if edits.Accent == nil || edits.Accent.R != 0xFF || edits.Accent.G != 0xB7 {
		t.Fatalf("unexpected accent %+v", edits.Accent)
	}

	rec, err := edits.Patch.Apply(content.Default())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if rec.Title != "Havuçlu Püre" || rec.Summary != "6 ay sonrası için" || rec.Category != "Tarifler" {
		t.Fatalf("unexpected text fields %+v", rec)
	}
	if strings.Join(rec.ListItems, ",") != "Havuç,Patates" {
		t.Fatalf("blank list items should be dropped, got %v", rec.ListItems)
	}
	if rec.Expert.Name != "Dyt. Ayşe" || rec.Expert.Verified || rec.Expert.Title != content.DefaultExpertTitle {
		t.Fatalf("expert should be merged field by field, got %+v", rec.Expert)
	}
	if rec.Watermark.Position != content.AnchorBottomLeft || rec.Watermark.Opacity != 0.5 {
		t.Fatalf("unexpected watermark %+v", rec.Watermark)
	}
	if rec.Watermark.Scale != content.MinWatermarkScale {
		t.Fatalf("scale should be clamped, got %v", rec.Watermark.Scale)
	}
	if rec.Visibility.Shown(content.FieldIngredients) || !rec.Visibility.Shown(content.FieldSummary) {
		t.Fatalf("unexpected visibility %v", rec.Visibility)
	}
}

func TestCompileLaterAssignmentWins(t *testing.T) {
	edits, err := dsl.CompileString(`title = "a"; title = "b"`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if *edits.Patch.Title != "b" {
		t.Fatalf("expected last assignment, got %q", *edits.Patch.Title)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		src  string
		want error
	}{
		{`color = "red"`, dsl.ErrUnknownField},
		{`author.title = "x"`, dsl.ErrUnknownField},
		{`visibility.calories = false`, dsl.ErrUnknownField},
		{`watermark.opacity = "half"`, dsl.ErrType},
		{`visibility.season = "no"`, dsl.ErrType},
		{`listItems = "Havuç"`, dsl.ErrType},
		{`layout = grid`, dsl.ErrType},
		{`watermark.position = middle`, content.ErrInvalidAnchor},
	}
	for _, tc := range cases {
		_, err := dsl.CompileString(tc.src)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.src, tc.want, err)
		}
		var ce *dsl.CompileError
		if !errors.As(err, &ce) || ce.Line != 1 {
			t.Fatalf("%s: expected located error, got %v", tc.src, err)
		}
	}
}

func TestParseRejectsSyntaxErrors(t *testing.T) {
	if _, err := dsl.ParseString(`title "missing equals"`); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestEmptyScript(t *testing.T) {
	edits, err := dsl.CompileString("\n// nothing\n;;\n")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !edits.Empty() {
		t.Fatalf("expected empty edits, got %+v", edits)
	}
}
