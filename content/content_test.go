package content

import (
	"errors"
	"math"
	"testing"
)

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestResolveKindNormalizesPlurals(t *testing.T) {
	cases := map[string]Kind{
		"recipe":      KindRecipe,
		"Recipes":     KindRecipe,
		"ingredient":  KindIngredientGuide,
		"INGREDIENTS": KindIngredientGuide,
		"posts":       KindArticle,
	}
	for tag, want := range cases {
		got, ok := ResolveKind(tag)
		if !ok || got != want {
			t.Fatalf("ResolveKind(%q) = %v,%v want %v", tag, got, ok, want)
		}
	}
	got, ok := ResolveKind("podcast")
	if ok || got != KindArticle {
		t.Fatalf("unknown tag should degrade to article, got %v ok=%v", got, ok)
	}
}

func TestParseAnchorRejectsUnknown(t *testing.T) {
	for _, a := range Anchors {
		if _, err := ParseAnchor(string(a)); err != nil {
			t.Fatalf("anchor %q rejected: %v", a, err)
		}
	}
	if _, err := ParseAnchor("middle-left"); !errors.Is(err, ErrInvalidAnchor) {
		t.Fatalf("expected ErrInvalidAnchor, got %v", err)
	}
}

func TestWatermarkClamp(t *testing.T) {
	w := Watermark{Opacity: 1.7, Scale: -2, Position: "nowhere"}.Clamped()
	if w.Opacity != 1 {
		t.Fatalf("opacity not clamped: %v", w.Opacity)
	}
	if w.Scale != MinWatermarkScale {
		t.Fatalf("scale not clamped: %v", w.Scale)
	}
	if w.Position != "nowhere" {
		t.Fatalf("clamping must not rewrite the anchor: %v", w.Position)
	}
	if err := w.Validate(); !errors.Is(err, ErrInvalidAnchor) {
		t.Fatalf("expected ErrInvalidAnchor, got %v", err)
	}
	if err := DefaultWatermark().Validate(); err != nil {
		t.Fatalf("default watermark invalid: %v", err)
	}
	if got := ClampOpacity(math.NaN()); got != 0 {
		t.Fatalf("NaN opacity should clamp to 0, got %v", got)
	}
	if got := ClampScale(2.5); got != 2.5 {
		t.Fatalf("valid scale changed: %v", got)
	}
}

func TestPatchMergesNestedObjects(t *testing.T) {
	base := Default()
	p := Patch{
		Title:     strPtr("Yeni"),
		Expert:    &PersonPatch{Note: strPtr("not")},
		Watermark: &WatermarkPatch{Opacity: floatPtr(0.4)},
	}
	out, err := p.Apply(base)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Title != "Yeni" {
		t.Fatalf("title not updated: %q", out.Title)
	}
	if out.Expert.Name != base.Expert.Name || !out.Expert.Verified {
		t.Fatalf("expert was replaced instead of merged: %+v", out.Expert)
	}
	if out.Expert.Note != "not" {
		t.Fatalf("expert note not merged: %+v", out.Expert)
	}
	if out.Watermark.Opacity != 0.4 || out.Watermark.Position != AnchorTopRight || !out.Watermark.Visible {
		t.Fatalf("watermark merge wrong: %+v", out.Watermark)
	}
	if out.Kind != base.Kind {
		t.Fatalf("kind changed by edit")
	}
}

func TestPatchInvalidAnchorKeepsRecord(t *testing.T) {
	base := Default()
	_, err := Patch{Title: strPtr("x"), Watermark: &WatermarkPatch{Position: strPtr("left")}}.Apply(base)
	if !errors.Is(err, ErrInvalidAnchor) {
		t.Fatalf("expected ErrInvalidAnchor, got %v", err)
	}
}

func TestPatchDoesNotAliasOriginal(t *testing.T) {
	base := Default()
	out, err := Patch{Visibility: map[Field]bool{FieldAgeGroup: false}}.Apply(base)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !base.Visibility.Shown(FieldAgeGroup) {
		t.Fatalf("original visibility mutated")
	}
	if out.Visibility.Shown(FieldAgeGroup) {
		t.Fatalf("ageGroup should be hidden")
	}
	if !out.Visibility.Shown(FieldMealType) {
		t.Fatalf("other fields must stay visible")
	}
}

func TestReplaceContentKeepsWatermark(t *testing.T) {
	cur := Default()
	cur.Watermark = Watermark{Visible: false, ImageRef: "/logo.png", Position: AnchorCenter, Opacity: 0.3, Scale: 2}
	next := Renderable{ID: "42", Kind: KindArticle, Title: "Başka", Watermark: DefaultWatermark()}
	out := cur.ReplaceContent(next)
	if out.Title != "Başka" || out.Kind != KindArticle {
		t.Fatalf("content not replaced: %+v", out)
	}
	if out.Watermark != cur.Watermark {
		t.Fatalf("watermark should persist across loads: %+v", out.Watermark)
	}
}

func TestParseRisk(t *testing.T) {
	if ParseRisk("Yüksek") != RiskHigh || ParseRisk("low") != RiskLow || ParseRisk("?") != RiskUnknown {
		t.Fatalf("risk parsing mismatch")
	}
	if RiskMedium.Label() != "Orta" {
		t.Fatalf("label mismatch: %q", RiskMedium.Label())
	}
}

func TestWatermarkPatchVisibility(t *testing.T) {
	w, err := WatermarkPatch{Visible: boolPtr(false)}.Apply(DefaultWatermark())
	if err != nil || w.Visible {
		t.Fatalf("visible flag not applied: %+v %v", w, err)
	}
}
