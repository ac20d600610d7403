package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

func TestBlendModeCatalog(t *testing.T) {
	modes := BlendModes()
	assert.Len(t, modes, 16)
	assert.Equal(t, BlendNormal, modes[0])
	for _, m := range modes {
		assert.True(t, ValidBlendMode(m), string(m))
	}
	assert.False(t, ValidBlendMode("plus-lighter"))
	assert.False(t, ValidBlendMode(""))
}

func TestLayerCloneIsDeep(t *testing.T) {
	l := &Layer{
		ID:       "layer_one",
		Name:     "art",
		Type:     LayerTypeGroup,
		Visible:  true,
		Opacity:  1,
		Children: []string{"layer_two"},
		Effects:  []Effect{NewBlurEffect(BlurParams{Radius: 2})},
	}

	c := l.Clone()
	c.Children[0] = "layer_elsewhere"
	c.Effects[0].Blur.Radius = 9

	assert.Equal(t, "layer_two", l.Children[0])
	assert.Equal(t, 2.0, l.Effects[0].Blur.Radius)
}

func TestEffectConstructors(t *testing.T) {
	gradient := document.Gradient{
		Kind:  document.GradientLinear,
		Stops: []document.GradientStop{{Offset: 0, Color: "#000"}, {Offset: 1, Color: "#fff"}},
	}

	cases := []struct {
		fx   Effect
		kind EffectType
	}{
		{NewShadowEffect(ShadowParams{OffsetX: 2, OffsetY: 2, Blur: 4, Color: "#00000080"}), EffectShadow},
		{NewBlurEffect(BlurParams{Radius: 2}), EffectBlur},
		{NewGlowEffect(GlowParams{Color: "#fff", Radius: 6}), EffectGlow},
		{NewStrokeEffect(StrokeParams{Color: "#f00", Width: 2, Position: StrokeOutside}), EffectStroke},
		{NewGradientOverlayEffect(GradientOverlayParams{Gradient: gradient, BlendMode: BlendOverlay}), EffectGradientOverlay},
		{NewColorOverlayEffect(ColorOverlayParams{Color: "#0f0", BlendMode: BlendMultiply}), EffectColorOverlay},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.fx.Type)
		assert.True(t, tc.fx.Enabled)
		require.NoError(t, typeid.Validate(tc.fx.ID, typeid.PrefixEffect))
		require.NoError(t, tc.fx.Validate(), string(tc.kind))
	}
}

func TestEffectValidateRejectsMismatch(t *testing.T) {
	fx := Effect{ID: "fx_bad", Type: EffectGlow, Shadow: &ShadowParams{Blur: 1}}
	err := fx.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glow")

	assert.Error(t, Effect{ID: "fx_odd", Type: "vignette"}.Validate())
	assert.Error(t, Effect{ID: "fx_empty", Type: EffectShadow}.Validate())
}

func TestEffectCloneIsDeep(t *testing.T) {
	fx := NewGradientOverlayEffect(GradientOverlayParams{
		Gradient: document.Gradient{
			Kind:  document.GradientLinear,
			Stops: []document.GradientStop{{Offset: 0, Color: "#000"}, {Offset: 1, Color: "#fff"}},
		},
		BlendMode: BlendNormal,
	})

	c := fx.Clone()
	c.GradientOverlay.Gradient.Stops[0].Color = "#123456"

	assert.Equal(t, "#000", fx.GradientOverlay.Gradient.Stops[0].Color)
}
