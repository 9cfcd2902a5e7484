package export

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/render"
)

const svgNS = "http://www.w3.org/2000/svg"

func init() {
	Register(Format{Name: "svg", Extension: "svg", MediaType: "image/svg+xml", Encoder: EncoderFunc(encodeSVG)})
}

// encodeSVG writes the scene as an SVG 2 document in canvas units.
// Image references are written as given; filters become feColorMatrix and
// feGaussianBlur, shadows feDropShadow.
func encodeSVG(ctx context.Context, w io.Writer, s *document.Scene, o Options) error {
	width, height := s.Size()
	sw := &svgWriter{ctx: ctx, enc: xml.NewEncoder(w)}
	sw.enc.Indent("", "  ")

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	sw.start("svg",
		"xmlns", svgNS,
		"width", num(width),
		"height", num(height),
		"viewBox", fmt.Sprintf("0 0 %s %s", num(width), num(height)))
	if !o.Transparent {
		bg := s.Background()
		if bg == "" {
			bg = render.DefaultBackground
		}
		sw.empty("rect", append([]string{"width", "100%", "height", "100%"}, paint("fill", bg)...)...)
	}
	for _, e := range s.Query() {
		sw.element(e)
	}
	sw.end("svg")
	if sw.err != nil {
		return sw.err
	}
	return sw.enc.Flush()
}

// svgWriter emits tokens and keeps the first error.
type svgWriter struct {
	ctx context.Context
	enc *xml.Encoder
	err error
}

func (sw *svgWriter) token(t xml.Token) {
	if sw.err == nil {
		sw.err = sw.enc.EncodeToken(t)
	}
}

func (sw *svgWriter) start(name string, attrs ...string) {
	se := xml.StartElement{Name: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		se.Attr = append(se.Attr, xml.Attr{Name: xml.Name{Local: attrs[i]}, Value: attrs[i+1]})
	}
	sw.token(se)
}

func (sw *svgWriter) end(name string) {
	sw.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (sw *svgWriter) empty(name string, attrs ...string) {
	sw.start(name, attrs...)
	sw.end(name)
}

func (sw *svgWriter) text(s string) {
	sw.token(xml.CharData(s))
}

func (sw *svgWriter) element(e *document.Element) {
	if sw.err == nil {
		sw.err = sw.ctx.Err()
	}
	if sw.err != nil || !e.Visible {
		return
	}

	if sh := e.Appearance.Shadow; sh != nil && e.Kind != document.KindGroup {
		id := "sh-" + e.ID
		sw.start("defs")
		sw.start("filter", "id", id, "x", "-50%", "y", "-50%", "width", "200%", "height", "200%")
		c, a := svgColor(sh.Color)
		sw.empty("feDropShadow",
			"dx", num(sh.OffsetX),
			"dy", num(sh.OffsetY),
			"stdDeviation", num(sh.Blur),
			"flood-color", c,
			"flood-opacity", opacity(a))
		sw.end("filter")
		sw.end("defs")
		sw.start("g", "filter", "url(#"+id+")")
		defer sw.end("g")
	}

	attrs := []string{
		"id", e.ID,
		"transform", matrix(e.Transform.Matrix()),
		"opacity", opacity(e.Appearance.Opacity),
	}

	switch e.Kind {
	case document.KindGroup:
		sw.start("g", attrs...)
		for _, c := range e.Children {
			sw.element(c)
		}
		sw.end("g")
	case document.KindShape:
		sw.shape(e, attrs)
	case document.KindText:
		sw.textElement(e, attrs)
	case document.KindImage:
		sw.image(e, attrs)
	}
}

func (sw *svgWriter) shape(e *document.Element, attrs []string) {
	app := e.Appearance
	w, h := e.Width, e.Height
	fill, stroke, width := app.Fill, app.Stroke, app.StrokeWidth
	if e.Shape == document.ShapeLine {
		if stroke == "" {
			stroke = fill
		}
		fill = ""
		if width == 0 {
			width = 1
		}
	}
	attrs = append(attrs, paint("fill", fill)...)
	if stroke != "" && width > 0 {
		attrs = append(attrs, paint("stroke", stroke)...)
		attrs = append(attrs, "stroke-width", num(width))
	}

	switch e.Shape {
	case document.ShapeEllipse:
		sw.empty("ellipse", append(attrs, "cx", num(w/2), "cy", num(h/2), "rx", num(w/2), "ry", num(h/2))...)
	case document.ShapeTriangle:
		pts := fmt.Sprintf("%s,0 %s,%s 0,%s", num(w/2), num(w), num(h), num(h))
		sw.empty("polygon", append(attrs, "points", pts)...)
	case document.ShapeLine:
		sw.empty("line", append(attrs, "x1", "0", "y1", "0", "x2", num(w), "y2", num(h))...)
	default:
		sw.empty("rect", append(attrs, "width", num(w), "height", num(h))...)
	}
}

func (sw *svgWriter) textElement(e *document.Element, attrs []string) {
	t := e.Text
	if t == nil {
		return
	}
	fill := e.Appearance.Fill
	if fill == "" {
		fill = "#000000"
	}
	x, anchor := 0.0, ""
	switch t.Align {
	case document.AlignCenter:
		x, anchor = e.Width/2, "middle"
	case document.AlignRight:
		x, anchor = e.Width, "end"
	}
	attrs = append(attrs,
		"font-family", "sans-serif",
		"font-size", num(t.FontSize),
		"text-anchor", anchor,
		"dominant-baseline", "central",
		"style", "white-space:pre")
	sw.start("text", append(attrs, paint("fill", fill)...)...)
	band := t.FontSize * t.LineHeight
	for i, line := range t.Lines() {
		sw.start("tspan", "x", num(x), "y", num(float64(i)*band+band/2))
		sw.text(line)
		sw.end("tspan")
	}
	sw.end("text")
}

func (sw *svgWriter) image(e *document.Element, attrs []string) {
	if e.Image == nil {
		return
	}
	if filters := e.Appearance.Filters.All(); len(filters) > 0 {
		id := "fx-" + e.ID
		sw.start("defs")
		sw.start("filter", "id", id, "color-interpolation-filters", "sRGB")
		for _, f := range filters {
			switch f.Kind {
			case document.FilterAdjust:
				sw.empty("feColorMatrix", "type", "matrix", "values", values(f.Matrix))
			case document.FilterBlur:
				sw.empty("feGaussianBlur", "stdDeviation", num(f.Radius))
			}
		}
		sw.end("filter")
		sw.end("defs")
		attrs = append(attrs, "filter", "url(#"+id+")")
	}
	sw.empty("image", append(attrs,
		"width", num(e.Width),
		"height", num(e.Height),
		"preserveAspectRatio", "none",
		"href", e.Image.Ref)...)
}

// paint returns the attribute pairs for a fill or stroke color, splitting
// any alpha into an opacity attribute.
func paint(attr, hex string) []string {
	if hex == "" {
		return []string{attr, "none"}
	}
	c, a := svgColor(hex)
	return []string{attr, c, attr + "-opacity", opacity(a)}
}

// svgColor converts a hex color to #rrggbb plus alpha.
func svgColor(hex string) (string, float64) {
	c := gg.Hex(hex)
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B)), c.A
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// opacity formats a in [0,1], or returns "" when it is fully opaque so
// the attribute is omitted.
func opacity(a float64) string {
	if a >= 1 {
		return ""
	}
	return num(a)
}

func matrix(m document.Matrix) string {
	if m == document.Identity() {
		return ""
	}
	if m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1 {
		return "translate(" + num(m.C) + " " + num(m.F) + ")"
	}
	// SVG orders the coefficients column by column.
	return "matrix(" + strings.Join([]string{num(m.A), num(m.D), num(m.B), num(m.E), num(m.C), num(m.F)}, " ") + ")"
}

func values(m []float64) string {
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = num(v)
	}
	return strings.Join(parts, " ")
}

// num formats v with at most four decimals.
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
