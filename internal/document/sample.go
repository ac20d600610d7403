package document

import (
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

// NewSampleDocument seeds a document with a few starter elements so a fresh
// project opens with something on the canvas for the tools to target.
func NewSampleDocument() *Document {
	doc := NewDocument()

	rect := NewElement(typeid.NewElementID(), ElementShape)
	rect.Name = "Rectangle"
	rect.Shape = &ShapeData{Kind: ShapeRectangle, Width: 200, Height: 120}
	rect.Transform.TranslateX = 120
	rect.Transform.TranslateY = 100
	rect.Style.Fill = SolidFill("#4f8ef7")
	rect.ZIndex = 0
	doc.AddElement(rect)

	ellipse := NewElement(typeid.NewElementID(), ElementShape)
	ellipse.Name = "Ellipse"
	ellipse.Shape = &ShapeData{Kind: ShapeEllipse, RadiusX: 80, RadiusY: 50}
	ellipse.Transform.TranslateX = 480
	ellipse.Transform.TranslateY = 180
	ellipse.Style.Fill = SolidFill("#f7784f")
	ellipse.ZIndex = 1
	doc.AddElement(ellipse)

	star := NewElement(typeid.NewElementID(), ElementShape)
	star.Name = "Star"
	star.Shape = &ShapeData{Kind: ShapeStar, Sides: 5, OuterRadius: 70, InnerRadius: 30}
	star.Transform.TranslateX = 300
	star.Transform.TranslateY = 380
	star.Style.Fill = SolidFill("#ffd166")
	star.Style.Stroke = &Stroke{Color: "#333333", Width: 2, LineCap: LineCapRound, LineJoin: LineJoinRound}
	star.ZIndex = 2
	doc.AddElement(star)

	return doc
}
