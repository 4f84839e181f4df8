package domain

// CartItem is one incident report the user has selected for purchase.
// Quantity is carried because a single catalog entry may represent a bulk
// batch of reports.
type CartItem struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CartCount sums quantities across all entries, not the entry count.
func CartCount(items []CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// CartTotal is always computed fresh from the current items so it cannot
// desync from edits.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CartLeadIDs returns the identifiers of all entries, in cart order.
func CartLeadIDs(items []CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
