package usecase

import (
	"github.com/example/colormatch/internal/catalog"
	"github.com/example/colormatch/internal/undertone"
)

// ToneProfile describes an undertone together with its palette.
type ToneProfile struct {
	catalog.ToneInfo
	Palette catalog.Palette `json:"palette"`
}

// Recommendation is the default view for a tone: its palette and product picks.
type Recommendation struct {
	ToneProfile
	Products []catalog.Product `json:"products"`
}

// ToneProfile looks up the description and palette of t.
func (uc *AnalysisUseCase) ToneProfile(t undertone.Tone) (*ToneProfile, error) {
	info, err := catalog.ToneInfoFor(t)
	if err != nil {
		return nil, err
	}
	palette, err := catalog.PaletteFor(t)
	if err != nil {
		return nil, err
	}
	return &ToneProfile{ToneInfo: info, Palette: palette}, nil
}

// Recommend returns the palette and products picked for t.
func (uc *AnalysisUseCase) Recommend(t undertone.Tone) (*Recommendation, error) {
	profile, err := uc.ToneProfile(t)
	if err != nil {
		return nil, err
	}
	products, err := catalog.ProductsFor(t)
	if err != nil {
		return nil, err
	}
	return &Recommendation{ToneProfile: *profile, Products: products}, nil
}

// Categories lists the clothing categories offered for g.
func (uc *AnalysisUseCase) Categories(g catalog.Gender) ([]catalog.CategoryInfo, error) {
	if _, err := catalog.ParseGender(string(g)); err != nil {
		return nil, err
	}
	return catalog.CategoriesFor(g), nil
}

// Outfits returns the outfit combinations for the picked categories.
func (uc *AnalysisUseCase) Outfits(t undertone.Tone, g catalog.Gender, picked []catalog.Category) ([]catalog.Outfit, error) {
	return catalog.OutfitsFor(t, g, picked)
}
