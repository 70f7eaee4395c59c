// Package catalog holds the static recommendation tables: colour palettes, clothing
// categories, outfit combinations and product picks, all keyed by undertone.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/example/colormatch/internal/undertone"
)

var (
	ErrUnknownGender   = errors.New("unknown gender")
	ErrUnknownCategory = errors.New("unknown category")
)

// Gender selects the clothing line.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender converts a case-insensitive label into a Gender.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Male, Female:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGender, s)
}

// Category is a clothing category a shopper can pick.
type Category string

const (
	Shirts      Category = "shirts"
	TShirts     Category = "tshirts"
	Jeans       Category = "jeans"
	Pants       Category = "pants"
	Dresses     Category = "dresses"
	Tops        Category = "tops"
	Kurtas      Category = "kurtas"
	Accessories Category = "accessories"
)

// ParseCategory converts a case-insensitive label into a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Shirts, TShirts, Jeans, Pants, Dresses, Tops, Kurtas, Accessories:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ParseCategories parses a list of labels, dropping duplicates and keeping first-seen order.
func ParseCategories(labels []string) ([]Category, error) {
	seen := make(map[Category]bool, len(labels))
	out := make([]Category, 0, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		c, err := ParseCategory(label)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// CategoryInfo describes a category tile.
type CategoryInfo struct {
	ID          Category `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
}

var maleCategories = []CategoryInfo{
	{ID: Shirts, Name: "Shirts", Icon: "👔", Description: "Formal & Casual Shirts"},
	{ID: TShirts, Name: "T-Shirts", Icon: "👕", Description: "Trendy T-Shirts"},
	{ID: Jeans, Name: "Jeans", Icon: "👖", Description: "Denim & Casual Pants"},
	{ID: Pants, Name: "Formal Pants", Icon: "👔", Description: "Trousers & Chinos"},
	{ID: Accessories, Name: "Accessories", Icon: "⌚", Description: "Watches, Belts & More"},
}

var femaleCategories = []CategoryInfo{
	{ID: Tops, Name: "Tops", Icon: "👚", Description: "Blouses & Casual Tops"},
	{ID: Dresses, Name: "Dresses", Icon: "👗", Description: "Casual & Formal Dresses"},
	{ID: Kurtas, Name: "Kurtas", Icon: "🥻", Description: "Traditional & Indo-Western"},
	{ID: Jeans, Name: "Jeans", Icon: "👖", Description: "Denim & Casual Wear"},
	{ID: Pants, Name: "Pants", Icon: "👖", Description: "Formal & Casual Pants"},
	{ID: Accessories, Name: "Accessories", Icon: "💍", Description: "Jewelry & Accessories"},
}

// CategoriesFor lists the categories offered for g.
func CategoriesFor(g Gender) []CategoryInfo {
	if g == Male {
		return clone(maleCategories)
	}
	return clone(femaleCategories)
}

func clone[T any](in []T) []T {
	return append([]T(nil), in...)
}

// Color is a named palette swatch.
type Color struct {
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	Category string `json:"category"`
}

// RGB parses the swatch's hex code.
func (c Color) RGB() (undertone.RGB, error) {
	col, err := colorful.Hex(c.Hex)
	if err != nil {
		return undertone.RGB{}, fmt.Errorf("swatch %s: %w", c.Name, err)
	}
	r, g, b := col.RGB255()
	return undertone.RGB{R: int(r), G: int(g), B: int(b)}, nil
}

// Palette is the set of colours recommended for an undertone.
type Palette struct {
	Primary   []Color  `json:"primary"`
	Secondary []Color  `json:"secondary"`
	Avoid     []string `json:"avoid"`
}

// ToneInfo is the human description of an undertone.
type ToneInfo struct {
	Tone        undertone.Tone `json:"tone"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
}

var toneInfo = map[undertone.Tone]ToneInfo{
	undertone.Warm:    {Tone: undertone.Warm, Title: "Warm Undertone", Description: "You have golden, peachy, or yellow undertones"},
	undertone.Cool:    {Tone: undertone.Cool, Title: "Cool Undertone", Description: "You have pink, red, or blue undertones"},
	undertone.Neutral: {Tone: undertone.Neutral, Title: "Neutral Undertone", Description: "You have a balanced mix of warm and cool undertones"},
}

// ToneInfoFor describes t.
func ToneInfoFor(t undertone.Tone) (ToneInfo, error) {
	info, ok := toneInfo[t]
	if !ok {
		return ToneInfo{}, fmt.Errorf("%w: %q", undertone.ErrUnknownTone, t)
	}
	return info, nil
}
