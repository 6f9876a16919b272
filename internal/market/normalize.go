package market

// SelectionPolicy picks the offer that represents a product.
// It is only called with non-empty offer lists.
type SelectionPolicy func(offers []DepotOffer) DepotOffer

// CheapestOffer returns the offer with the lowest price. On ties the
// earliest offer wins.
func CheapestOffer(offers []DepotOffer) DepotOffer {
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Price < best.Price {
			best = o
		}
	}
	return best
}

// FirstOffer returns the first offer regardless of price.
func FirstOffer(offers []DepotOffer) DepotOffer {
	return offers[0]
}

// Normalize maps every product to a NormalizedProduct using policy.
// Products without offers are kept with nil price and market.
func Normalize(products []RawProduct, policy SelectionPolicy) []NormalizedProduct {
	out := make([]NormalizedProduct, 0, len(products))
	for _, p := range products {
		np := NormalizedProduct{ProductName: p.Title}
		if len(p.Offers) > 0 {
			o := policy(p.Offers)
			price, name := o.Price, o.MarketName
			np.Price = &price
			np.MarketName = &name
		}
		out = append(out, np)
	}
	return out
}
