package receipt

// Reconcile repairs the monetary fields in place so the record satisfies
// total ≈ subtotal + tax even when the source data was partial or
// contradictory. Both extractors run this before handing a record out.
//
// Rules, in order:
//  1. subtotal <= 0 with items present -> subtotal = rounded sum of item prices
//  2. total <= 0, or total < subtotal  -> total = round(subtotal + tax)
func Reconcile(r *Record) {
	if r == nil {
		return
	}
	if r.Subtotal <= 0 && len(r.Items) > 0 {
		r.Subtotal = SumItems(r.Items)
	}
	if r.Total <= 0 || r.Total < r.Subtotal {
		r.Total = Round2(r.Subtotal + r.Tax)
	}
	r.Subtotal = Round2(r.Subtotal)
	r.Tax = Round2(r.Tax)
	r.Total = Round2(r.Total)
}
