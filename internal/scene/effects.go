package scene

import (
	"fmt"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

// EffectType names the supported layer effects.
type EffectType string

const (
	EffectShadow          EffectType = "shadow"
	EffectBlur            EffectType = "blur"
	EffectGlow            EffectType = "glow"
	EffectStroke          EffectType = "stroke"
	EffectGradientOverlay EffectType = "gradient-overlay"
	EffectColorOverlay    EffectType = "color-overlay"
)

type ShadowParams struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

type BlurParams struct {
	Radius float64 `json:"radius"`
}

type GlowParams struct {
	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
	Inner  bool    `json:"inner"`
}

// StrokePosition places an outline effect relative to the shape edge.
type StrokePosition string

const (
	StrokeInside  StrokePosition = "inside"
	StrokeCenter  StrokePosition = "center"
	StrokeOutside StrokePosition = "outside"
)

type StrokeParams struct {
	Color    string         `json:"color"`
	Width    float64        `json:"width"`
	Position StrokePosition `json:"position"`
}

type GradientOverlayParams struct {
	Gradient  document.Gradient `json:"gradient"`
	BlendMode BlendMode         `json:"blendMode"`
}

type ColorOverlayParams struct {
	Color     string    `json:"color"`
	BlendMode BlendMode `json:"blendMode"`
}

// Effect is one entry in a layer's effect list. Type names the variant and
// exactly one of the params pointers is set.
type Effect struct {
	ID              string                 `json:"id"`
	Type            EffectType             `json:"type"`
	Enabled         bool                   `json:"enabled"`
	Shadow          *ShadowParams          `json:"shadow,omitempty"`
	Blur            *BlurParams            `json:"blur,omitempty"`
	Glow            *GlowParams            `json:"glow,omitempty"`
	Stroke          *StrokeParams          `json:"stroke,omitempty"`
	GradientOverlay *GradientOverlayParams `json:"gradientOverlay,omitempty"`
	ColorOverlay    *ColorOverlayParams    `json:"colorOverlay,omitempty"`
}

func newEffect(t EffectType) Effect {
	return Effect{ID: typeid.NewEffectID(), Type: t, Enabled: true}
}

func NewShadowEffect(p ShadowParams) Effect {
	fx := newEffect(EffectShadow)
	fx.Shadow = &p
	return fx
}

func NewBlurEffect(p BlurParams) Effect {
	fx := newEffect(EffectBlur)
	fx.Blur = &p
	return fx
}

func NewGlowEffect(p GlowParams) Effect {
	fx := newEffect(EffectGlow)
	fx.Glow = &p
	return fx
}

func NewStrokeEffect(p StrokeParams) Effect {
	fx := newEffect(EffectStroke)
	fx.Stroke = &p
	return fx
}

func NewGradientOverlayEffect(p GradientOverlayParams) Effect {
	fx := newEffect(EffectGradientOverlay)
	fx.GradientOverlay = &p
	return fx
}

func NewColorOverlayEffect(p ColorOverlayParams) Effect {
	fx := newEffect(EffectColorOverlay)
	fx.ColorOverlay = &p
	return fx
}

// Validate checks that the params variant matches the declared type.
func (e Effect) Validate() error {
	var want bool
	switch e.Type {
	case EffectShadow:
		want = e.Shadow != nil
	case EffectBlur:
		want = e.Blur != nil
	case EffectGlow:
		want = e.Glow != nil
	case EffectStroke:
		want = e.Stroke != nil
	case EffectGradientOverlay:
		want = e.GradientOverlay != nil
	case EffectColorOverlay:
		want = e.ColorOverlay != nil
	default:
		return fmt.Errorf("unknown effect type: %s", e.Type)
	}
	if !want {
		return fmt.Errorf("effect %s is missing its %s params", e.ID, e.Type)
	}
	return nil
}

// Clone returns a deep copy.
func (e Effect) Clone() Effect {
	out := e
	if e.Shadow != nil {
		p := *e.Shadow
		out.Shadow = &p
	}
	if e.Blur != nil {
		p := *e.Blur
		out.Blur = &p
	}
	if e.Glow != nil {
		p := *e.Glow
		out.Glow = &p
	}
	if e.Stroke != nil {
		p := *e.Stroke
		out.Stroke = &p
	}
	if e.GradientOverlay != nil {
		p := *e.GradientOverlay
		p.Gradient.Stops = append([]document.GradientStop(nil), e.GradientOverlay.Gradient.Stops...)
		out.GradientOverlay = &p
	}
	if e.ColorOverlay != nil {
		p := *e.ColorOverlay
		out.ColorOverlay = &p
	}
	return out
}
