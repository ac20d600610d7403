package scene

// LayerType separates leaf layers, which mirror a single element, from
// groups, which only hold children.
type LayerType string

const (
	LayerTypeLayer LayerType = "layer"
	LayerTypeGroup LayerType = "group"
)

// BlendMode is one of the 16 standard compositing modes.
type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendColorDodge BlendMode = "color-dodge"
	BlendColorBurn  BlendMode = "color-burn"
	BlendHardLight  BlendMode = "hard-light"
	BlendSoftLight  BlendMode = "soft-light"
	BlendDifference BlendMode = "difference"
	BlendExclusion  BlendMode = "exclusion"
	BlendHue        BlendMode = "hue"
	BlendSaturation BlendMode = "saturation"
	BlendColor      BlendMode = "color"
	BlendLuminosity BlendMode = "luminosity"
)

// BlendModes lists every supported mode in a stable order.
func BlendModes() []BlendMode {
	return []BlendMode{
		BlendNormal, BlendMultiply, BlendScreen, BlendOverlay,
		BlendDarken, BlendLighten, BlendColorDodge, BlendColorBurn,
		BlendHardLight, BlendSoftLight, BlendDifference, BlendExclusion,
		BlendHue, BlendSaturation, BlendColor, BlendLuminosity,
	}
}

// ValidBlendMode reports whether mode is one of the supported modes.
func ValidBlendMode(mode BlendMode) bool {
	for _, m := range BlendModes() {
		if m == mode {
			return true
		}
	}
	return false
}

// Layer is a scene-graph node. It references the element it draws by id but
// never owns it; ordering, visibility, and effects live here so the tree can
// be reorganized without touching element geometry. ParentID is a
// back-reference only. Children ids are ordered but paint order is decided
// by ZIndex.
type Layer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      LayerType `json:"type"`
	ElementID string    `json:"elementId,omitempty"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked"`
	Opacity   float64   `json:"opacity"`
	BlendMode BlendMode `json:"blendMode"`
	Effects   []Effect  `json:"effects,omitempty"`
	ZIndex    int       `json:"zIndex"`
	ParentID  string    `json:"parentId,omitempty"`
	Children  []string  `json:"children,omitempty"`
}

// IsGroup reports whether the layer can hold children.
func (l *Layer) IsGroup() bool {
	return l.Type == LayerTypeGroup
}

// Clone returns a deep copy.
func (l *Layer) Clone() *Layer {
	out := *l
	if l.Effects != nil {
		out.Effects = make([]Effect, len(l.Effects))
		for i, fx := range l.Effects {
			out.Effects[i] = fx.Clone()
		}
	}
	if l.Children != nil {
		out.Children = append([]string(nil), l.Children...)
	}
	return &out
}
