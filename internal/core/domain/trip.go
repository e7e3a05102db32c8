package domain

// RouteOption is a named pricing variant of a trip, e.g. a departure city.
type RouteOption struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type Trip struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Destination string        `json:"destination"`
	BasePrice   float64       `json:"price"`
	Routes      []RouteOption `json:"routes"`
	IsAvailable bool          `json:"is_available"`
}

func (t *Trip) HasRoutes() bool {
	return len(t.Routes) > 0
}

func (t *Trip) Route(label string) (RouteOption, bool) {
	for _, r := range t.Routes {
		if r.Label == label {
			return r, true
		}
	}
	return RouteOption{}, false
}

// EffectiveBase is the per-seat price: the selected route's price when the
// trip has routes and one is selected, otherwise the trip's base price.
func (t *Trip) EffectiveBase(route string) float64 {
	if t.HasRoutes() && route != "" {
		if r, ok := t.Route(route); ok {
			return r.Price
		}
	}
	return t.BasePrice
}
