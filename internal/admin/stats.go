package admin

// DashboardStats is the read-only aggregation behind the admin landing page.
// Everything is recomputed per request; nothing here is cached.
type DashboardStats struct {
	TotalPayments     int64            `json:"total_payments"`
	SucceededPayments int64            `json:"succeeded_payments"`
	SuccessRate       float64          `json:"success_rate"`
	TotalRevenueCents int64            `json:"total_revenue_cents"`
	RevenueByPlan     []PlanRevenue    `json:"revenue_by_plan"`
	RevenueByDay      []PeriodRevenue  `json:"revenue_by_day"`
	RevenueByWeek     []PeriodRevenue  `json:"revenue_by_week"`
	PaymentsByStatus  map[string]int64 `json:"payments_by_status"`
	OpenTickets       int64            `json:"open_tickets"`
}

type PlanRevenue struct {
	PlanName     string `json:"plan_name"`
	Count        int64  `json:"count"`
	RevenueCents int64  `json:"revenue_cents"`
}

// PeriodRevenue is one bucket of the daily or weekly rollup. Period is
// YYYY-MM-DD for days and ISO year-Www for weeks.
type PeriodRevenue struct {
	Period       string `json:"period"`
	Count        int64  `json:"count"`
	RevenueCents int64  `json:"revenue_cents"`
}
