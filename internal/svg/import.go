package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

// Import parses an SVG document into elements ready for insertion. Groups
// come back as group elements referencing their children by id, with the
// children preceding the group in the returned slice. Unsupported elements
// are skipped with a warning, never a hard failure; only broken XML or a
// missing svg root aborts the import.
func Import(data []byte) ([]*document.Element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity

	im := &importer{decoder: decoder}
	if err := im.run(); err != nil {
		return nil, err
	}
	if !im.sawRoot {
		return nil, errors.New("missing svg root element")
	}
	return im.elements, nil
}

type importer struct {
	decoder  *xml.Decoder
	elements []*document.Element
	groups   []*document.Element // open <g> stack
	text     *document.Element   // open <text>, collecting character data
	textBuf  strings.Builder
	sawRoot  bool
}

func (im *importer) run() error {
	for {
		tok, err := im.decoder.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("parse svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := im.startElement(t); err != nil {
				return err
			}
		case xml.CharData:
			if im.text != nil {
				im.textBuf.Write(t)
			}
		case xml.EndElement:
			im.endElement(t)
		}
	}
}

func (im *importer) startElement(se xml.StartElement) error {
	switch se.Name.Local {
	case "svg":
		im.sawRoot = true
	case "g":
		group := document.NewElement(typeid.NewElementID(), document.ElementGroup)
		for _, attr := range se.Attr {
			applyCommonAttr(group, attr)
		}
		im.groups = append(im.groups, group)
	case "rect":
		im.importRect(se)
	case "circle":
		im.importCircle(se)
	case "ellipse":
		im.importEllipse(se)
	case "polygon":
		im.importPoly(se, true)
	case "polyline":
		im.importPoly(se, false)
	case "path":
		im.importPath(se)
	case "text":
		im.importText(se)
	default:
		slog.Warn("skipping unsupported svg element", "element", se.Name.Local)
		return im.decoder.Skip()
	}
	return nil
}

func (im *importer) endElement(ee xml.EndElement) {
	switch ee.Name.Local {
	case "g":
		if n := len(im.groups); n > 0 {
			group := im.groups[n-1]
			im.groups = im.groups[:n-1]
			im.add(group)
		}
	case "text":
		if im.text != nil {
			im.text.Text.Content = strings.TrimSpace(im.textBuf.String())
			im.text.RecomputeBounds()
			im.add(im.text)
			im.text = nil
			im.textBuf.Reset()
		}
	}
}

// add finishes an element: it joins the open group, if any, and lands in the
// output slice.
func (im *importer) add(el *document.Element) {
	if n := len(im.groups); n > 0 {
		parent := im.groups[n-1]
		parent.Children = append(parent.Children, el.ID)
	}
	im.elements = append(im.elements, el)
}

func (im *importer) importRect(se xml.StartElement) {
	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	shape := &document.ShapeData{Kind: document.ShapeRectangle}
	var x, y float64
	for _, attr := range se.Attr {
		if applyCommonAttr(el, attr) {
			continue
		}
		switch attr.Name.Local {
		case "x":
			x = floatAttr(attr)
		case "y":
			y = floatAttr(attr)
		case "width":
			shape.Width = floatAttr(attr)
		case "height":
			shape.Height = floatAttr(attr)
		case "rx", "ry":
			if shape.CornerRadius == 0 {
				shape.CornerRadius = floatAttr(attr)
			}
		}
	}
	el.Shape = shape
	el.Transform.TranslateX += x
	el.Transform.TranslateY += y
	el.RecomputeBounds()
	im.add(el)
}

func (im *importer) importCircle(se xml.StartElement) {
	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	shape := &document.ShapeData{Kind: document.ShapeCircle}
	var cx, cy float64
	for _, attr := range se.Attr {
		if applyCommonAttr(el, attr) {
			continue
		}
		switch attr.Name.Local {
		case "cx":
			cx = floatAttr(attr)
		case "cy":
			cy = floatAttr(attr)
		case "r":
			shape.Radius = floatAttr(attr)
		}
	}
	el.Shape = shape
	el.Transform.TranslateX += cx
	el.Transform.TranslateY += cy
	el.RecomputeBounds()
	im.add(el)
}

func (im *importer) importEllipse(se xml.StartElement) {
	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	shape := &document.ShapeData{Kind: document.ShapeEllipse}
	var cx, cy float64
	for _, attr := range se.Attr {
		if applyCommonAttr(el, attr) {
			continue
		}
		switch attr.Name.Local {
		case "cx":
			cx = floatAttr(attr)
		case "cy":
			cy = floatAttr(attr)
		case "rx":
			shape.RadiusX = floatAttr(attr)
		case "ry":
			shape.RadiusY = floatAttr(attr)
		}
	}
	el.Shape = shape
	el.Transform.TranslateX += cx
	el.Transform.TranslateY += cy
	el.RecomputeBounds()
	im.add(el)
}

// importPoly covers polygon and polyline. Polygons stay parametric shapes;
// polylines become open paths.
func (im *importer) importPoly(se xml.StartElement, closed bool) {
	var el *document.Element
	if closed {
		el = document.NewElement(typeid.NewElementID(), document.ElementShape)
	} else {
		el = document.NewElement(typeid.NewElementID(), document.ElementPath)
	}

	var points []geometry.Point
	for _, attr := range se.Attr {
		if applyCommonAttr(el, attr) {
			continue
		}
		if attr.Name.Local == "points" {
			points = parsePoints(attr.Value)
		}
	}
	if len(points) < 2 {
		slog.Warn("skipping svg polygon with too few points", "points", len(points))
		return
	}

	if closed {
		el.Shape = &document.ShapeData{Kind: document.ShapePolygon, Points: points}
	} else {
		segs := make([]geometry.PathSegment, 0, len(points))
		segs = append(segs, geometry.MoveSegment(points[0]))
		for _, p := range points[1:] {
			segs = append(segs, geometry.LineSegment(p))
		}
		path := geometry.VectorPath{Segments: segs}
		el.Path = &path
	}
	el.RecomputeBounds()
	im.add(el)
}

func (im *importer) importPath(se xml.StartElement) {
	el := document.NewElement(typeid.NewElementID(), document.ElementPath)
	var d string
	for _, attr := range se.Attr {
		if applyCommonAttr(el, attr) {
			continue
		}
		if attr.Name.Local == "d" {
			d = attr.Value
		}
	}

	path, err := geometry.ParsePath(d)
	if err != nil {
		slog.Warn("skipping svg path with invalid data", "error", err)
		return
	}
	el.Path = &path
	el.RecomputeBounds()
	im.add(el)
}

func (im *importer) importText(se xml.StartElement) {
	el := document.NewElement(typeid.NewElementID(), document.ElementText)
	text := &document.TextData{FontSize: 16}
	var x, y float64
	for _, attr := range se.Attr {
		if applyCommonAttr(el, attr) {
			continue
		}
		switch attr.Name.Local {
		case "x":
			x = floatAttr(attr)
		case "y":
			y = floatAttr(attr)
		case "font-family":
			text.FontFamily = attr.Value
		case "font-size":
			text.FontSize = floatAttr(attr)
		case "font-weight":
			if attr.Value == "bold" {
				text.FontWeight = document.FontWeightBold
			}
		case "font-style":
			if attr.Value == "italic" {
				text.FontStyle = document.FontStyleItalic
			}
		}
	}
	el.Text = text
	el.Transform.TranslateX += x
	el.Transform.TranslateY += y
	im.text = el
	im.textBuf.Reset()
}

// applyCommonAttr handles the attributes shared by every element kind:
// identity, presentation style, and the transform list. Malformed values are
// warned about and ignored so one bad attribute never sinks the import.
func applyCommonAttr(el *document.Element, attr xml.Attr) bool {
	switch attr.Name.Local {
	case "id":
		el.Name = attr.Value
	case "fill":
		if attr.Value == "none" {
			el.Style.Fill = nil
		} else {
			el.Style.Fill = document.SolidFill(attr.Value)
		}
	case "stroke":
		if attr.Value == "none" {
			el.Style.Stroke = nil
		} else if el.Style.Stroke == nil {
			el.Style.Stroke = &document.Stroke{Color: attr.Value, Width: 1}
		} else {
			el.Style.Stroke.Color = attr.Value
		}
	case "stroke-width":
		if el.Style.Stroke == nil {
			el.Style.Stroke = &document.Stroke{Color: "#000000"}
		}
		el.Style.Stroke.Width = floatAttr(attr)
	case "stroke-dasharray":
		if el.Style.Stroke == nil {
			el.Style.Stroke = &document.Stroke{Color: "#000000", Width: 1}
		}
		el.Style.Stroke.DashArray = parseDashes(attr.Value)
	case "opacity":
		el.Style.Opacity = floatAttr(attr)
	case "display":
		el.Visible = attr.Value != "none"
	case "transform":
		el.Transform = parseTransformList(attr.Value)
	default:
		return false
	}
	return true
}

func floatAttr(attr xml.Attr) float64 {
	v, err := parseFloat(attr.Value)
	if err != nil {
		slog.Warn("invalid numeric svg attribute", "attr", attr.Name.Local, "value", attr.Value)
		return 0
	}
	return v
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	return strconv.ParseFloat(s, 64)
}

func parseDashes(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := parseFloat(f)
		if err != nil {
			slog.Warn("malformed svg dash array", "value", s)
			return nil
		}
		out = append(out, v)
	}
	return out
}

func parsePoints(s string) []geometry.Point {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		slog.Warn("svg points list has an odd number of coordinates", "count", len(fields))
		return nil
	}
	pts := make([]geometry.Point, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		x, errX := parseFloat(fields[i])
		y, errY := parseFloat(fields[i+1])
		if errX != nil || errY != nil {
			slog.Warn("svg points list has a malformed coordinate", "points", s)
			return nil
		}
		pts = append(pts, geometry.Point{X: x, Y: y})
	}
	return pts
}

// parseTransformList reads an SVG transform list (translate, scale, rotate,
// skewX, skewY) into a transform descriptor. Angles convert from degrees to
// radians. Functions the descriptor cannot express, like matrix, are skipped
// with a warning.
func parseTransformList(s string) geometry.Transform {
	tr := geometry.IdentityTransform()
	rest := s
	for {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest, ')')
		if end < open {
			slog.Warn("malformed svg transform", "transform", s)
			break
		}
		name := strings.TrimSpace(rest[:open])
		args := transformArgs(rest[open+1 : end])
		rest = rest[end+1:]

		switch name {
		case "translate":
			if len(args) >= 1 {
				tr.TranslateX = args[0]
			}
			if len(args) >= 2 {
				tr.TranslateY = args[1]
			}
		case "scale":
			if len(args) >= 1 {
				tr.ScaleX = args[0]
				tr.ScaleY = args[0]
			}
			if len(args) >= 2 {
				tr.ScaleY = args[1]
			}
		case "rotate":
			if len(args) >= 1 {
				tr.Rotation = args[0] * math.Pi / 180
			}
		case "skewX":
			if len(args) >= 1 {
				tr.SkewX = args[0] * math.Pi / 180
			}
		case "skewY":
			if len(args) >= 1 {
				tr.SkewY = args[0] * math.Pi / 180
			}
		default:
			slog.Warn("skipping unsupported svg transform", "function", name)
		}
	}
	return tr
}

func transformArgs(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := parseFloat(f)
		if err != nil {
			slog.Warn("malformed svg transform argument", "arg", f)
			continue
		}
		out = append(out, v)
	}
	return out
}
