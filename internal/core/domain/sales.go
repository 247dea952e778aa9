package domain

// DateLayout is the calendar-day format used for sales buckets.
const DateLayout = "2006-01-02"

// DailySales is one day of the sales report.
type DailySales struct {
	Date      string  `json:"date"`
	Sales     float64 `json:"sales"`
	NumOrders int     `json:"numOrders"`
}

// SalesReport is a gap-filled per-day series plus running totals.
type SalesReport struct {
	Sales          []DailySales `json:"sales"`
	TotalSales     float64      `json:"totalSales"`
	TotalNumOrders int          `json:"totalNumOrders"`
}
