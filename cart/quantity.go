package cart

// ResolveQuantity decides the line quantity after adding requested units
// to existing ones, given the stock that is still available. The result is
// clamped to available, and clamped reports whether that happened.
func ResolveQuantity(existing, requested, available int) (final int, clamped bool) {
	want := existing + requested
	if want > available {
		if available < 0 {
			available = 0
		}
		return available, true
	}
	return want, false
}
