package domain

// CartLine is one position in a user's mutable cart. Price is the unit price
// in minor currency units, copied from the catalog at the moment the line was
// added; later catalog changes do not affect it.
type CartLine struct {
	ItemID   string
	ItemName string
	StoreID  string
	Size     string
	Qty      int
	Price    int64
}

// Subtotal is price times quantity for this line.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Qty)
}

// CartTotal sums the subtotals of the given lines.
func CartTotal(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
