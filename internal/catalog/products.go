package catalog

import (
	"fmt"

	"github.com/example/colormatch/internal/undertone"
)

// Platform is the marketplace a product is sold on.
type Platform string

const (
	Amazon Platform = "amazon"
	Myntra Platform = "myntra"
)

// ProductLink builds the shop URL of a product.
func ProductLink(p Platform, id int) string {
	if p == Amazon {
		return fmt.Sprintf("https://amazon.in/dp/%d", id)
	}
	return fmt.Sprintf("https://myntra.com/product/%d", id)
}

// Product is a curated item from a marketplace.
type Product struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Price         Money    `json:"price"`
	OriginalPrice Money    `json:"original_price"`
	Rating        float64  `json:"rating"`
	Image         string   `json:"image"`
	Color         string   `json:"color"`
	Category      string   `json:"category"`
	Platform      Platform `json:"platform"`
	Link          string   `json:"link"`
}

func pexels(photo int) string {
	return fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=300", photo, photo)
}

var products = map[undertone.Tone][]Product{
	undertone.Warm: {
		{ID: 1, Name: "Coral Silk Blouse", Brand: "Fashion Studio", Price: 2999, OriginalPrice: 4999, Rating: 4.5, Image: pexels(996329), Color: "Coral", Category: "Tops", Platform: Myntra},
		{ID: 2, Name: "Terracotta Summer Dress", Brand: "Elegant Wear", Price: 3499, OriginalPrice: 5999, Rating: 4.7, Image: pexels(1536619), Color: "Terracotta", Category: "Dresses", Platform: Amazon},
		{ID: 3, Name: "Golden Yellow Cardigan", Brand: "Cozy Collection", Price: 2499, OriginalPrice: 3999, Rating: 4.3, Image: pexels(1926769), Color: "Golden Yellow", Category: "Outerwear", Platform: Myntra},
		{ID: 4, Name: "Sage Green Palazzo Pants", Brand: "Comfort Zone", Price: 1999, OriginalPrice: 2999, Rating: 4.4, Image: pexels(1055691), Color: "Sage Green", Category: "Bottoms", Platform: Amazon},
	},
	undertone.Cool: {
		{ID: 5, Name: "Royal Blue Blazer", Brand: "Professional Line", Price: 4999, OriginalPrice: 7999, Rating: 4.6, Image: pexels(1043474), Color: "Royal Blue", Category: "Blazers", Platform: Myntra},
		{ID: 6, Name: "Emerald Evening Gown", Brand: "Glamour Collection", Price: 8999, OriginalPrice: 12999, Rating: 4.8, Image: pexels(1936848), Color: "Emerald", Category: "Formal", Platform: Amazon},
		{ID: 7, Name: "Lavender Midi Skirt", Brand: "Sweet Spring", Price: 2299, OriginalPrice: 3499, Rating: 4.4, Image: pexels(1536619), Color: "Lavender", Category: "Skirts", Platform: Myntra},
		{ID: 8, Name: "Ruby Red Cocktail Dress", Brand: "Party Perfect", Price: 5499, OriginalPrice: 8999, Rating: 4.7, Image: pexels(1536619), Color: "Ruby Red", Category: "Party Wear", Platform: Amazon},
	},
	undertone.Neutral: {
		{ID: 9, Name: "Dusty Rose Wrap Top", Brand: "Versatile Closet", Price: 2799, OriginalPrice: 4299, Rating: 4.5, Image: pexels(1536619), Color: "Dusty Rose", Category: "Tops", Platform: Myntra},
		{ID: 10, Name: "Forest Green Trench Coat", Brand: "Urban Style", Price: 6999, OriginalPrice: 9999, Rating: 4.6, Image: pexels(1043474), Color: "Forest Green", Category: "Outerwear", Platform: Amazon},
		{ID: 11, Name: "Burgundy Midi Dress", Brand: "Timeless Fashion", Price: 3999, OriginalPrice: 6499, Rating: 4.7, Image: pexels(1536619), Color: "Burgundy", Category: "Dresses", Platform: Myntra},
		{ID: 12, Name: "Navy Blue Tailored Pants", Brand: "Classic Fits", Price: 2999, OriginalPrice: 4499, Rating: 4.4, Image: pexels(1055691), Color: "Navy Blue", Category: "Formal", Platform: Amazon},
	},
}

// ProductsFor returns the products picked for t, with shop links filled in.
func ProductsFor(t undertone.Tone) ([]Product, error) {
	list, ok := products[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", undertone.ErrUnknownTone, t)
	}
	out := clone(list)
	for i := range out {
		out[i].Link = ProductLink(out[i].Platform, out[i].ID)
	}
	return out, nil
}
