package pricing

// Calculator is the delivery cost of one validated request. It is immutable
// and safe for concurrent reads.
type Calculator struct {
	req       Request
	breakdown Breakdown
}

// NewCalculator validates the request and computes its cost. Checks run in a
// fixed order: missing dimension, missing load, distance range, then the
// fragile distance limit. No calculator is returned on error.
func NewCalculator(distanceKm float64, dimension CargoDimension, fragile bool, load ServiceLoad) (*Calculator, error) {
	if !dimension.Valid() {
		return nil, ErrCargoDimensionRequired
	}
	if !load.Valid() {
		return nil, ErrServiceLoadRequired
	}
	// Written as a negated range so NaN is rejected too.
	if !(distanceKm > 0 && distanceKm <= MaxDestinationDistance) {
		return nil, ErrIncorrectDistance
	}
	if fragile && distanceKm > MaxFragileDistance {
		return nil, ErrFragileTooFar
	}

	req := Request{DistanceKm: distanceKm, Dimension: dimension, Fragile: fragile, Load: load}
	return &Calculator{req: req, breakdown: compute(req)}, nil
}

// TotalDeliveryCost is never below MinimalDeliveryCost.
func (c *Calculator) TotalDeliveryCost() float64 {
	return c.breakdown.Total
}

func (c *Calculator) Breakdown() Breakdown {
	return c.breakdown
}

func (c *Calculator) Request() Request {
	return c.req
}

func compute(req Request) Breakdown {
	b := Breakdown{
		BaseCost:       baseCost(req.DistanceKm),
		SizeSurcharge:  SizeSurcharge(req.Dimension),
		LoadMultiplier: LoadMultiplier(req.Load),
	}
	if req.Fragile {
		b.FragilitySurcharge = FragilitySurcharge
	}

	b.Subtotal = b.BaseCost + b.SizeSurcharge + b.FragilitySurcharge
	b.Total = b.Subtotal * b.LoadMultiplier
	if b.Total < MinimalDeliveryCost {
		b.Total = MinimalDeliveryCost
		b.MinimumApplied = true
	}
	return b
}
