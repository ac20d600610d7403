package document

// FillType discriminates the variants of Fill.
type FillType string

const (
	FillSolid    FillType = "solid"
	FillGradient FillType = "gradient"
	FillPattern  FillType = "pattern"
)

type GradientKind string

const (
	GradientLinear GradientKind = "linear"
	GradientRadial GradientKind = "radial"
)

type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

type Gradient struct {
	Kind  GradientKind   `json:"kind"`
	Stops []GradientStop `json:"stops"`
	Angle float64        `json:"angle,omitempty"`
}

type PatternRepeat string

const (
	PatternRepeatBoth PatternRepeat = "repeat"
	PatternRepeatNone PatternRepeat = "no-repeat"
	PatternRepeatX    PatternRepeat = "repeat-x"
	PatternRepeatY    PatternRepeat = "repeat-y"
)

// Fill is a tagged variant: Color is set for solid fills, Gradient for
// gradient fills, URL and Repeat for pattern fills.
type Fill struct {
	Type     FillType      `json:"type"`
	Color    string        `json:"color,omitempty"`
	Gradient *Gradient     `json:"gradient,omitempty"`
	URL      string        `json:"url,omitempty"`
	Repeat   PatternRepeat `json:"repeat,omitempty"`
}

// SolidFill returns a plain color fill.
func SolidFill(color string) *Fill {
	return &Fill{Type: FillSolid, Color: color}
}

type LineCap string

const (
	LineCapButt   LineCap = "butt"
	LineCapRound  LineCap = "round"
	LineCapSquare LineCap = "square"
)

type LineJoin string

const (
	LineJoinMiter LineJoin = "miter"
	LineJoinRound LineJoin = "round"
	LineJoinBevel LineJoin = "bevel"
)

type Stroke struct {
	Color     string    `json:"color"`
	Width     float64   `json:"width"`
	DashArray []float64 `json:"dashArray,omitempty"`
	LineCap   LineCap   `json:"lineCap,omitempty"`
	LineJoin  LineJoin  `json:"lineJoin,omitempty"`
}

type Shadow struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

// Style holds the paint properties shared by every element. Nil fields mean
// the property is not painted at all.
type Style struct {
	Fill    *Fill   `json:"fill,omitempty"`
	Stroke  *Stroke `json:"stroke,omitempty"`
	Shadow  *Shadow `json:"shadow,omitempty"`
	Opacity float64 `json:"opacity"`
}

// DefaultStyle is the style new elements are born with: solid black fill,
// no stroke, fully opaque.
func DefaultStyle() Style {
	return Style{Fill: SolidFill("#000000"), Opacity: 1}
}

// Clone returns a deep copy so that edits to one element's style never leak
// into another.
func (s Style) Clone() Style {
	c := s
	if s.Fill != nil {
		fill := *s.Fill
		if s.Fill.Gradient != nil {
			g := *s.Fill.Gradient
			g.Stops = append([]GradientStop(nil), s.Fill.Gradient.Stops...)
			fill.Gradient = &g
		}
		c.Fill = &fill
	}
	if s.Stroke != nil {
		stroke := *s.Stroke
		stroke.DashArray = append([]float64(nil), s.Stroke.DashArray...)
		c.Stroke = &stroke
	}
	if s.Shadow != nil {
		shadow := *s.Shadow
		c.Shadow = &shadow
	}
	return c
}
