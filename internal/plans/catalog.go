package plans

// Plan is one fixed-price product tier. Prices are integer cents so no float
// arithmetic touches money.
type Plan struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	PriceCents int64    `json:"price_cents"`
	Currency   string   `json:"currency"`
	Analyses   int      `json:"analyses"`
	WindowDays int      `json:"window_days,omitempty"`
	Features   []string `json:"features"`
}

// Catalog is the static plan configuration. It never changes at runtime.
type Catalog struct {
	plans map[string]Plan
	order []string
}

func NewCatalog() *Catalog {
	c := &Catalog{plans: make(map[string]Plan)}
	for _, p := range []Plan{
		{
			ID:         "basic",
			Name:       "Basic Plan",
			PriceCents: 995,
			Currency:   "USD",
			Analyses:   1,
			Features:   []string{"1 Lease Analysis", "Ideal for single lease"},
		},
		{
			ID:         "standard",
			Name:       "Standard Plan",
			PriceCents: 1995,
			Currency:   "USD",
			Analyses:   3,
			WindowDays: 30,
			Features:   []string{"3 uses in 30 days", "Great for comparing options"},
		},
		{
			ID:         "premium",
			Name:       "Premium Plan",
			PriceCents: 2995,
			Currency:   "USD",
			Analyses:   6,
			WindowDays: 30,
			Features:   []string{"6 uses in 30 days", "Best value for multiple reviews"},
		},
	} {
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

func (c *Catalog) Get(id string) (Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

// All returns the plans in display order.
func (c *Catalog) All() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id])
	}
	return out
}
