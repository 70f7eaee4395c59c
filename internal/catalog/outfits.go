package catalog

import (
	"fmt"
	"slices"

	"github.com/example/colormatch/internal/undertone"
)

const (
	menOutfitImage   = "https://images.pexels.com/photos/1043474/pexels-photo-1043474.jpeg?auto=compress&cs=tinysrgb&w=400"
	womenOutfitImage = "https://images.pexels.com/photos/1536619/pexels-photo-1536619.jpeg?auto=compress&cs=tinysrgb&w=400"
)

// OutfitItem is one garment of an outfit.
type OutfitItem struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Price Money  `json:"price"`
}

// Outfit is a curated combination of garments.
type Outfit struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Items       []OutfitItem `json:"items"`
	TotalPrice  Money        `json:"total_price"`
	Rating      float64      `json:"rating"`
	Image       string       `json:"image"`
}

// shade picks an outfit colour: a palette slot for tone-dependent garments, or a
// fixed colour name.
type shade struct {
	secondary bool
	index     int
	fixed     string
}

func primary(i int) shade   { return shade{index: i} }
func secondary(i int) shade { return shade{secondary: true, index: i} }
func fixed(name string) shade {
	return shade{fixed: name}
}

func (s shade) resolve(p Palette) string {
	if s.fixed != "" {
		return s.fixed
	}
	if s.secondary {
		return p.Secondary[s.index].Name
	}
	return p.Primary[s.index].Name
}

type itemTemplate struct {
	kind  string
	name  string
	shade shade
	price Money
}

type outfitTemplate struct {
	id          int
	name        string
	description string
	items       []itemTemplate
	rating      float64
	image       string
}

// comboKey names a pairing of categories, e.g. "shirts-jeans".
type comboKey string

var menOutfits = map[comboKey][]outfitTemplate{
	"shirts-jeans": {
		{
			id: 1, name: "Classic Casual Combo", description: "Perfect for everyday wear and casual outings",
			items: []itemTemplate{
				{kind: "shirt", name: "Cotton Casual Shirt", shade: primary(0), price: 1999},
				{kind: "jeans", name: "Slim Fit Jeans", shade: fixed("Dark Blue"), price: 2499},
			},
			rating: 4.6, image: menOutfitImage,
		},
		{
			id: 2, name: "Smart Casual Look", description: "Great for work-casual and weekend plans",
			items: []itemTemplate{
				{kind: "shirt", name: "Linen Blend Shirt", shade: primary(1), price: 2299},
				{kind: "jeans", name: "Straight Fit Jeans", shade: fixed("Light Blue"), price: 2199},
			},
			rating: 4.5, image: menOutfitImage,
		},
	},
	"tshirts-pants": {
		{
			id: 3, name: "Sporty Comfort", description: "Perfect for gym, sports, and active lifestyle",
			items: []itemTemplate{
				{kind: "tshirt", name: "Athletic T-Shirt", shade: primary(2), price: 999},
				{kind: "pants", name: "Track Pants", shade: fixed("Black"), price: 1499},
			},
			rating: 4.4, image: menOutfitImage,
		},
	},
	"shirts-pants": {
		{
			id: 4, name: "Professional Elegance", description: "Perfect for office, meetings, and formal events",
			items: []itemTemplate{
				{kind: "shirt", name: "Formal Dress Shirt", shade: secondary(2), price: 2499},
				{kind: "pants", name: "Formal Trousers", shade: primary(3), price: 2999},
			},
			rating: 4.7, image: menOutfitImage,
		},
	},
}

var womenOutfits = map[comboKey][]outfitTemplate{
	"tops-jeans": {
		{
			id: 5, name: "Chic Casual", description: "Perfect for brunch dates and casual outings",
			items: []itemTemplate{
				{kind: "top", name: "Silk Blouse", shade: primary(0), price: 2499},
				{kind: "jeans", name: "High-Waist Jeans", shade: fixed("Dark Blue"), price: 2799},
			},
			rating: 4.6, image: womenOutfitImage,
		},
	},
	"dresses": {
		{
			id: 6, name: "Elegant Evening", description: "Perfect for dinner dates and special occasions",
			items: []itemTemplate{
				{kind: "dress", name: "Midi Dress", shade: primary(1), price: 3999},
			},
			rating: 4.8, image: womenOutfitImage,
		},
	},
	"kurtas-pants": {
		{
			id: 7, name: "Traditional Elegance", description: "Perfect for festivals and cultural events",
			items: []itemTemplate{
				{kind: "kurta", name: "Embroidered Kurta", shade: primary(2), price: 2999},
				{kind: "pants", name: "Palazzo Pants", shade: secondary(0), price: 1999},
			},
			rating: 4.5, image: womenOutfitImage,
		},
	},
}

// pairingRules are checked in order; a rule applies when every listed category was picked.
var pairingRules = []struct {
	key      comboKey
	requires []Category
}{
	{key: "shirts-jeans", requires: []Category{Shirts, Jeans}},
	{key: "shirts-pants", requires: []Category{Shirts, Pants}},
	{key: "tshirts-pants", requires: []Category{TShirts, Pants}},
	{key: "tops-jeans", requires: []Category{Tops, Jeans}},
	{key: "dresses", requires: []Category{Dresses}},
	{key: "kurtas-pants", requires: []Category{Kurtas, Pants}},
}

// OutfitsFor returns the outfit combinations matching the picked categories, coloured
// for tone. An empty result means no pairing rule matched.
func OutfitsFor(tone undertone.Tone, g Gender, picked []Category) ([]Outfit, error) {
	palette, err := PaletteFor(tone)
	if err != nil {
		return nil, err
	}
	table := womenOutfits
	switch g {
	case Male:
		table = menOutfits
	case Female:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGender, g)
	}

	outfits := []Outfit{}
	for _, rule := range pairingRules {
		if !containsAll(picked, rule.requires) {
			continue
		}
		for _, tmpl := range table[rule.key] {
			outfits = append(outfits, tmpl.build(palette))
		}
	}
	return outfits, nil
}

func containsAll(picked, required []Category) bool {
	for _, c := range required {
		if !slices.Contains(picked, c) {
			return false
		}
	}
	return true
}

func (t outfitTemplate) build(p Palette) Outfit {
	o := Outfit{
		ID:          t.id,
		Name:        t.name,
		Description: t.description,
		Items:       make([]OutfitItem, 0, len(t.items)),
		Rating:      t.rating,
		Image:       t.image,
	}
	for _, it := range t.items {
		o.Items = append(o.Items, OutfitItem{Type: it.kind, Name: it.name, Color: it.shade.resolve(p), Price: it.price})
		o.TotalPrice += it.price
	}
	return o
}
