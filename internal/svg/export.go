package svg

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
)

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Export renders elements into a standalone SVG document of the given canvas
// size. Elements referenced as group children render inside their group;
// everything else renders at the top level in z order. Positions live in the
// transform attribute, matching how the editor models placement.
func Export(elements []*document.Element, width, height float64) ([]byte, error) {
	byID := make(map[string]*document.Element, len(elements))
	owned := make(map[string]bool)
	for _, el := range elements {
		byID[el.ID] = el
		for _, childID := range el.Children {
			owned[childID] = true
		}
	}

	roots := make([]*document.Element, 0, len(elements))
	for _, el := range elements {
		if !owned[el.ID] {
			roots = append(roots, el)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].ZIndex < roots[j].ZIndex })

	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=%q height=%q viewBox=\"0 0 %s %s\">\n",
		num(width), num(height), num(width), num(height))
	for _, el := range roots {
		if err := writeElement(&sb, byID, el, 1); err != nil {
			return nil, err
		}
	}
	sb.WriteString("</svg>\n")
	return []byte(sb.String()), nil
}

func writeElement(sb *strings.Builder, byID map[string]*document.Element, el *document.Element, depth int) error {
	indent := strings.Repeat("  ", depth)

	if el.Type == document.ElementGroup {
		// Groups carry identity, opacity, and placement; paint stays on the
		// members.
		attrs := idAttr(el)
		if el.Style.Opacity != 1 {
			attrs += fmt.Sprintf(" opacity=%q", num(el.Style.Opacity))
		}
		attrs += displayAttr(el) + transformAttr(el.Transform)
		fmt.Fprintf(sb, "%s<g%s>\n", indent, attrs)
		for _, child := range childElements(byID, el) {
			if err := writeElement(sb, byID, child, depth+1); err != nil {
				return err
			}
		}
		fmt.Fprintf(sb, "%s</g>\n", indent)
		return nil
	}

	attrs := idAttr(el) + styleAttr(el.Style) + displayAttr(el) + transformAttr(el.Transform)
	switch el.Type {
	case document.ElementShape:
		if el.Shape == nil {
			return fmt.Errorf("shape element %s has no shape data", el.ID)
		}
		writeShape(sb, indent, el.Shape, attrs)
	case document.ElementPath:
		if el.Path == nil {
			return fmt.Errorf("path element %s has no path data", el.ID)
		}
		fmt.Fprintf(sb, "%s<path d=%q%s/>\n", indent, el.Path.SVG(), attrs)
	case document.ElementText:
		if el.Text == nil {
			return fmt.Errorf("text element %s has no text data", el.ID)
		}
		writeText(sb, indent, el.Text, attrs)
	default:
		return fmt.Errorf("unsupported element type %q", el.Type)
	}
	return nil
}

func writeShape(sb *strings.Builder, indent string, s *document.ShapeData, attrs string) {
	switch s.Kind {
	case document.ShapeRectangle:
		if s.CornerRadius > 0 {
			fmt.Fprintf(sb, "%s<rect width=%q height=%q rx=%q%s/>\n",
				indent, num(s.Width), num(s.Height), num(s.CornerRadius), attrs)
		} else {
			fmt.Fprintf(sb, "%s<rect width=%q height=%q%s/>\n", indent, num(s.Width), num(s.Height), attrs)
		}
	case document.ShapeCircle:
		fmt.Fprintf(sb, "%s<circle r=%q%s/>\n", indent, num(s.Radius), attrs)
	case document.ShapeEllipse:
		fmt.Fprintf(sb, "%s<ellipse rx=%q ry=%q%s/>\n", indent, num(s.RadiusX), num(s.RadiusY), attrs)
	case document.ShapePolygon:
		fmt.Fprintf(sb, "%s<polygon points=%q%s/>\n", indent, pointList(s.Points), attrs)
	case document.ShapeStar:
		// No star primitive in SVG; the outline ships as path data.
		fmt.Fprintf(sb, "%s<path d=%q%s/>\n", indent, s.Path().SVG(), attrs)
	}
}

func writeText(sb *strings.Builder, indent string, t *document.TextData, attrs string) {
	var font strings.Builder
	if t.FontFamily != "" {
		fmt.Fprintf(&font, " font-family=\"%s\"", attrEscaper.Replace(t.FontFamily))
	}
	if t.FontSize > 0 {
		fmt.Fprintf(&font, " font-size=%q", num(t.FontSize))
	}
	if t.FontWeight == document.FontWeightBold {
		font.WriteString(" font-weight=\"bold\"")
	}
	if t.FontStyle == document.FontStyleItalic {
		font.WriteString(" font-style=\"italic\"")
	}
	fmt.Fprintf(sb, "%s<text%s%s>%s</text>\n", indent, font.String(), attrs, textEscaper.Replace(t.Content))
}

func childElements(byID map[string]*document.Element, group *document.Element) []*document.Element {
	children := make([]*document.Element, 0, len(group.Children))
	for _, id := range group.Children {
		child, ok := byID[id]
		if !ok {
			slog.Warn("svg export skipping missing group child", "group", group.ID, "child", id)
			continue
		}
		children = append(children, child)
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].ZIndex < children[j].ZIndex })
	return children
}

func idAttr(el *document.Element) string {
	if el.Name == "" {
		return ""
	}
	return fmt.Sprintf(" id=\"%s\"", attrEscaper.Replace(el.Name))
}

func styleAttr(style document.Style) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, " fill=\"%s\"", attrEscaper.Replace(fillColor(style.Fill)))
	if style.Stroke != nil {
		fmt.Fprintf(&sb, " stroke=\"%s\" stroke-width=%q",
			attrEscaper.Replace(style.Stroke.Color), num(style.Stroke.Width))
		if len(style.Stroke.DashArray) > 0 {
			dashes := make([]string, len(style.Stroke.DashArray))
			for i, d := range style.Stroke.DashArray {
				dashes[i] = num(d)
			}
			fmt.Fprintf(&sb, " stroke-dasharray=%q", strings.Join(dashes, " "))
		}
	}
	if style.Opacity != 1 {
		fmt.Fprintf(&sb, " opacity=%q", num(style.Opacity))
	}
	return sb.String()
}

// fillColor flattens a fill to a single paint value. Gradients reduce to
// their first stop since the exporter emits no defs section.
func fillColor(fill *document.Fill) string {
	if fill == nil {
		return "none"
	}
	if fill.Type == document.FillGradient && fill.Gradient != nil && len(fill.Gradient.Stops) > 0 {
		return fill.Gradient.Stops[0].Color
	}
	if fill.Color != "" {
		return fill.Color
	}
	return "none"
}

func displayAttr(el *document.Element) string {
	if el.Visible {
		return ""
	}
	return " display=\"none\""
}

// transformAttr writes the transform list in the same order the transform
// matrix composes: translate, rotate, skewX, skewY, scale. Angles convert
// from radians to degrees.
func transformAttr(tr geometry.Transform) string {
	if tr.IsIdentity() {
		return ""
	}
	var parts []string
	if tr.TranslateX != 0 || tr.TranslateY != 0 {
		parts = append(parts, fmt.Sprintf("translate(%s %s)", num(tr.TranslateX), num(tr.TranslateY)))
	}
	if tr.Rotation != 0 {
		parts = append(parts, fmt.Sprintf("rotate(%s)", num(tr.Rotation*180/math.Pi)))
	}
	if tr.SkewX != 0 {
		parts = append(parts, fmt.Sprintf("skewX(%s)", num(tr.SkewX*180/math.Pi)))
	}
	if tr.SkewY != 0 {
		parts = append(parts, fmt.Sprintf("skewY(%s)", num(tr.SkewY*180/math.Pi)))
	}
	if tr.ScaleX != 1 || tr.ScaleY != 1 {
		if tr.ScaleX == tr.ScaleY {
			parts = append(parts, fmt.Sprintf("scale(%s)", num(tr.ScaleX)))
		} else {
			parts = append(parts, fmt.Sprintf("scale(%s %s)", num(tr.ScaleX), num(tr.ScaleY)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " transform=\"" + strings.Join(parts, " ") + "\""
}

func pointList(points []geometry.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
