package catalog

import (
	"fmt"

	"github.com/example/colormatch/internal/undertone"
)

var palettes = map[undertone.Tone]Palette{
	undertone.Warm: {
		Primary: []Color{
			{Name: "Coral", Hex: "#FF6B6B", Category: "Vibrant"},
			{Name: "Golden Yellow", Hex: "#FFD93D", Category: "Bright"},
			{Name: "Terracotta", Hex: "#E07A5F", Category: "Earthy"},
			{Name: "Sage Green", Hex: "#95A99B", Category: "Natural"},
		},
		Secondary: []Color{
			{Name: "Peach", Hex: "#FFBE0B", Category: "Soft"},
			{Name: "Rust", Hex: "#F77F00", Category: "Rich"},
			{Name: "Cream", Hex: "#FCF6F1", Category: "Neutral"},
			{Name: "Caramel", Hex: "#D4A574", Category: "Warm"},
		},
		Avoid: []string{"Pure White", "Black", "Cool Blues", "Bright Pinks"},
	},
	undertone.Cool: {
		Primary: []Color{
			{Name: "Royal Blue", Hex: "#4285F4", Category: "Classic"},
			{Name: "Emerald", Hex: "#10B981", Category: "Jewel"},
			{Name: "Lavender", Hex: "#A855F7", Category: "Soft"},
			{Name: "Ruby Red", Hex: "#DC2626", Category: "Bold"},
		},
		Secondary: []Color{
			{Name: "Ice Blue", Hex: "#DBEAFE", Category: "Light"},
			{Name: "Deep Purple", Hex: "#7C3AED", Category: "Rich"},
			{Name: "Pure White", Hex: "#FFFFFF", Category: "Classic"},
			{Name: "Charcoal", Hex: "#374151", Category: "Neutral"},
		},
		Avoid: []string{"Orange", "Yellow-Green", "Warm Browns", "Golden Colors"},
	},
	undertone.Neutral: {
		Primary: []Color{
			{Name: "Dusty Rose", Hex: "#E5989B", Category: "Soft"},
			{Name: "Forest Green", Hex: "#22577A", Category: "Deep"},
			{Name: "Burgundy", Hex: "#800E13", Category: "Rich"},
			{Name: "Navy", Hex: "#1E3A8A", Category: "Classic"},
		},
		Secondary: []Color{
			{Name: "Taupe", Hex: "#B8860B", Category: "Neutral"},
			{Name: "Plum", Hex: "#8B5A83", Category: "Muted"},
			{Name: "Off-White", Hex: "#FAF9F6", Category: "Soft"},
			{Name: "Chocolate", Hex: "#7B3F00", Category: "Warm"},
		},
		Avoid: []string{"Extremely Bright Colors", "Neon Shades"},
	},
}

// PaletteFor returns a copy of the palette recommended for t.
func PaletteFor(t undertone.Tone) (Palette, error) {
	p, ok := palettes[t]
	if !ok {
		return Palette{}, fmt.Errorf("%w: %q", undertone.ErrUnknownTone, t)
	}
	return Palette{Primary: clone(p.Primary), Secondary: clone(p.Secondary), Avoid: clone(p.Avoid)}, nil
}
