package canvasrenderer

import (
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/cardstudio/layout"
)

// 图标以边长 s 的正方形为画板，坐标向下为正（CartesianIV）。

type glyphPainter func(ctx *canvas.Context, x, y, s float64, col color.Color)

var glyphs = map[layout.GlyphName]glyphPainter{
	layout.GlyphChef:    paintChef,
	layout.GlyphArticle: paintArticle,
	layout.GlyphBook:    paintBook,
	layout.GlyphBaby:    paintBaby,
	layout.GlyphClock:   paintClock,
	layout.GlyphLeaf:    paintLeaf,
	layout.GlyphAlert:   paintAlert,
	layout.GlyphUser:    paintUser,
	layout.GlyphCheck:   paintCheck,
}

func drawGlyph(ctx *canvas.Context, g layout.Glyph) {
	paint, ok := glyphs[g.Name]
	if !ok || g.Size <= 0 {
		return
	}
	ctx.Push()
	defer ctx.Pop()
	ctx.SetStrokeCapper(canvas.RoundCap)
	ctx.SetStrokeJoiner(canvas.RoundJoin)
	paint(ctx, g.X, g.Y, g.Size, colorFromLayout(g.Color))
}

func solid(ctx *canvas.Context, col color.Color) {
	ctx.SetFillColor(col)
	ctx.SetStrokeColor(color.RGBA{})
}

func outline(ctx *canvas.Context, col color.Color, width float64) {
	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(width)
}

func polyline(pts ...float64) *canvas.Path {
	p := &canvas.Path{}
	p.MoveTo(pts[0], pts[1])
	for i := 2; i+1 < len(pts); i += 2 {
		p.LineTo(pts[i], pts[i+1])
	}
	return p
}

func paintChef(ctx *canvas.Context, x, y, s float64, col color.Color) {
	solid(ctx, col)
	ctx.DrawPath(x+0.3*s, y+0.38*s, canvas.Circle(0.2*s))
	ctx.DrawPath(x+0.5*s, y+0.3*s, canvas.Circle(0.22*s))
	ctx.DrawPath(x+0.7*s, y+0.38*s, canvas.Circle(0.2*s))
	ctx.DrawPath(x+0.28*s, y+0.45*s, canvas.Rectangle(0.44*s, 0.3*s))
	ctx.DrawPath(x+0.28*s, y+0.8*s, canvas.RoundedRectangle(0.44*s, 0.1*s, 0.03*s))
}

func paintArticle(ctx *canvas.Context, x, y, s float64, col color.Color) {
	outline(ctx, col, 0.08*s)
	ctx.DrawPath(x+0.18*s, y+0.1*s, canvas.RoundedRectangle(0.64*s, 0.8*s, 0.08*s))
	for _, ly := range []float64{0.35, 0.5, 0.65} {
		ctx.DrawPath(x, y, polyline(0.32*s, ly*s, 0.68*s, ly*s))
	}
}

func paintBook(ctx *canvas.Context, x, y, s float64, col color.Color) {
	solid(ctx, col)
	ctx.DrawPath(x+0.1*s, y+0.2*s, canvas.RoundedRectangle(0.37*s, 0.62*s, 0.04*s))
	ctx.DrawPath(x+0.53*s, y+0.2*s, canvas.RoundedRectangle(0.37*s, 0.62*s, 0.04*s))
}

func paintBaby(ctx *canvas.Context, x, y, s float64, col color.Color) {
	outline(ctx, col, 0.08*s)
	ctx.DrawPath(x+0.5*s, y+0.55*s, canvas.Circle(0.32*s))
	solid(ctx, col)
	ctx.DrawPath(x+0.4*s, y+0.52*s, canvas.Circle(0.04*s))
	ctx.DrawPath(x+0.6*s, y+0.52*s, canvas.Circle(0.04*s))
	ctx.DrawPath(x+0.5*s, y+0.16*s, canvas.Circle(0.07*s))
}

func paintClock(ctx *canvas.Context, x, y, s float64, col color.Color) {
	outline(ctx, col, 0.08*s)
	ctx.DrawPath(x+0.5*s, y+0.5*s, canvas.Circle(0.4*s))
	ctx.DrawPath(x, y, polyline(0.5*s, 0.26*s, 0.5*s, 0.5*s, 0.68*s, 0.6*s))
}

func paintLeaf(ctx *canvas.Context, x, y, s float64, col color.Color) {
	solid(ctx, col)
	p := &canvas.Path{}
	p.MoveTo(0.2*s, 0.8*s)
	p.QuadTo(0.15*s, 0.15*s, 0.85*s, 0.15*s)
	p.QuadTo(0.85*s, 0.85*s, 0.2*s, 0.8*s)
	p.Close()
	ctx.DrawPath(x, y, p)
	outline(ctx, col, 0.07*s)
	ctx.DrawPath(x, y, polyline(0.12*s, 0.9*s, 0.45*s, 0.55*s))
}

func paintAlert(ctx *canvas.Context, x, y, s float64, col color.Color) {
	outline(ctx, col, 0.08*s)
	tri := polyline(0.5*s, 0.1*s, 0.92*s, 0.86*s, 0.08*s, 0.86*s)
	tri.Close()
	ctx.DrawPath(x, y, tri)
	ctx.DrawPath(x, y, polyline(0.5*s, 0.38*s, 0.5*s, 0.6*s))
	solid(ctx, col)
	ctx.DrawPath(x+0.5*s, y+0.73*s, canvas.Circle(0.05*s))
}

func paintUser(ctx *canvas.Context, x, y, s float64, col color.Color) {
	solid(ctx, col)
	ctx.DrawPath(x+0.5*s, y+0.32*s, canvas.Circle(0.2*s))
	p := &canvas.Path{}
	p.MoveTo(0.14*s, 0.92*s)
	p.QuadTo(0.5*s, 0.38*s, 0.86*s, 0.92*s)
	p.Close()
	ctx.DrawPath(x, y, p)
}

func paintCheck(ctx *canvas.Context, x, y, s float64, col color.Color) {
	solid(ctx, col)
	ctx.DrawPath(x+0.5*s, y+0.5*s, canvas.Circle(0.5*s))
	outline(ctx, color.White, 0.12*s)
	ctx.DrawPath(x, y, polyline(0.28*s, 0.52*s, 0.44*s, 0.68*s, 0.74*s, 0.36*s))
}
