package cryptofolio

// lot is an unconsumed quantity acquired at a known unit cost.
type lot struct {
	AcquiredAt int64
	Quantity   Quantity // remaining, never negative
	UnitCost   Money
	Estimated  bool // the unit cost is a deposit basis price, not a trade price
}

// Cost returns the acquisition cost of the remaining quantity.
func (l lot) Cost() Money { return l.UnitCost.Mul(l.Quantity) }

// lots is a FIFO queue, oldest lot first.
type lots []lot

// consume removes quantityToConsume from the oldest lots first.
//
// It returns the acquisition cost of the consumed units, the part of the
// quantity that no lot could cover, and the remaining lots. The receiver is
// not modified.
func (l lots) consume(quantityToConsume Quantity) (cost Money, unmatched Quantity, remaining lots) {
	remaining = make(lots, 0, len(l))
	for _, currentLot := range l {
		if quantityToConsume.IsZero() {
			remaining = append(remaining, currentLot)
			continue
		}

		if currentLot.Quantity.GreaterThan(quantityToConsume) {
			// Partial consumption of this lot
			cost = cost.Add(currentLot.UnitCost.Mul(quantityToConsume))
			currentLot.Quantity = currentLot.Quantity.Sub(quantityToConsume)
			remaining = append(remaining, currentLot)
			quantityToConsume = Quantity{}
		} else {
			// Full consumption of this lot
			cost = cost.Add(currentLot.Cost())
			quantityToConsume = quantityToConsume.Sub(currentLot.Quantity)
		}
	}
	return cost, quantityToConsume, remaining
}

// quantity returns the total remaining quantity.
func (l lots) quantity() Quantity {
	var total Quantity
	for _, currentLot := range l {
		total = total.Add(currentLot.Quantity)
	}
	return total
}

// cost returns the total acquisition cost of the remaining quantity.
func (l lots) cost() Money {
	var total Money
	for _, currentLot := range l {
		total = total.Add(currentLot.Cost())
	}
	return total
}

// estimated reports whether any remaining lot carries an estimated cost.
func (l lots) estimated() bool {
	for _, currentLot := range l {
		if currentLot.Estimated && currentLot.Quantity.IsPositive() {
			return true
		}
	}
	return false
}
