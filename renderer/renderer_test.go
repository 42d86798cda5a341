package renderer

import "testing"

func TestOptionsNormalize(t *testing.T) {
	cases := []struct {
		in   Options
		want Options
	}{
		{Options{}, Options{Encoding: PNG, Quality: 0.9, PixelRatio: 2}},
		{Options{Encoding: JPEG, Quality: 0.2, PixelRatio: 1}, Options{Encoding: JPEG, Quality: 0.5, PixelRatio: 1}},
		{Options{Encoding: JPEG, Quality: 3}, Options{Encoding: JPEG, Quality: 1, PixelRatio: 2}},
		{Options{Encoding: "webp", Quality: 0.7}, Options{Encoding: PNG, Quality: 0.7, PixelRatio: 2}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"png": PNG, "JPG": JPEG, " jpeg ": JPEG} {
		got, err := ParseEncoding(in)
		if err != nil || got != want {
			t.Fatalf("ParseEncoding(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEncoding("gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
	if JPEG.Ext() != "jpg" || PNG.MIME() != "image/png" {
		t.Fatalf("unexpected ext/mime")
	}
}
