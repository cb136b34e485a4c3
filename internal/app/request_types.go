package app

// ReorderRequest is the input for GetReorderAssessments.
type ReorderRequest struct {
	AsOf     string   // YYYY-MM-DD; empty means now
	Statuses []string // e.g. "ORDER NOW"; empty means all
}

// EvaluateReorderRequest is the input for EvaluateReorder. Quantities are decimal strings.
type EvaluateReorderRequest struct {
	Balance             string  `json:"balance"`
	AvgDailyConsumption string  `json:"avg_daily_consumption"`
	LeadTimeDays        *int    `json:"lead_time_days"`
	MinOrderQuantity    *string `json:"min_order_quantity"`
}
