package pricing

const (
	// MinimalDeliveryCost is the floor applied to every total.
	MinimalDeliveryCost = 400.0

	// MaxDestinationDistance is half of Earth's circumference in km.
	MaxDestinationDistance = 20038.0

	// MaxFragileDistance is the furthest fragile cargo may travel, in km.
	MaxFragileDistance = 30.0

	// FragilitySurcharge is added once for fragile cargo.
	FragilitySurcharge = 300.0
)

// DistanceTier maps every distance up to and including UpToKm to BaseCost.
type DistanceTier struct {
	UpToKm   float64 `json:"up_to_km"`
	BaseCost float64 `json:"base_cost"`
}

// Ascending; a boundary distance belongs to the lower tier.
var distanceTiers = []DistanceTier{
	{UpToKm: 2, BaseCost: 50},
	{UpToKm: 10, BaseCost: 100},
	{UpToKm: 30, BaseCost: 200},
	{UpToKm: MaxDestinationDistance, BaseCost: 300},
}

var sizeSurcharges = map[CargoDimension]float64{
	CargoSmall: 100,
	CargoLarge: 200,
}

var loadMultipliers = map[ServiceLoad]float64{
	LoadLow:       1.0,
	LoadNormal:    1.0,
	LoadIncreased: 1.2,
	LoadHigh:      1.4,
	LoadVeryHigh:  1.6,
}

// DistanceTiers returns a copy of the distance tier table.
func DistanceTiers() []DistanceTier {
	tiers := make([]DistanceTier, len(distanceTiers))
	copy(tiers, distanceTiers)
	return tiers
}

// SizeSurcharge returns the flat amount added for cargo of dimension d.
func SizeSurcharge(d CargoDimension) float64 {
	return sizeSurcharges[d]
}

// LoadMultiplier returns the factor applied for service load l.
func LoadMultiplier(l ServiceLoad) float64 {
	return loadMultipliers[l]
}

// Request holds the inputs of a single delivery cost calculation.
type Request struct {
	DistanceKm float64        `json:"distance_km"`
	Dimension  CargoDimension `json:"cargo_dimension"`
	Fragile    bool           `json:"fragile"`
	Load       ServiceLoad    `json:"service_load"`
}

// Breakdown contains all intermediate values of the calculation.
type Breakdown struct {
	BaseCost           float64 `json:"base_cost"`
	SizeSurcharge      float64 `json:"size_surcharge"`
	FragilitySurcharge float64 `json:"fragility_surcharge"`
	Subtotal           float64 `json:"subtotal"`
	LoadMultiplier     float64 `json:"load_multiplier"`
	MinimumApplied     bool    `json:"minimum_applied"`
	Total              float64 `json:"total"`
}

// Result groups the validated request with its breakdown.
type Result struct {
	Request   Request   `json:"request"`
	Breakdown Breakdown `json:"breakdown"`
}

// Calculate validates req and computes its delivery cost.
func Calculate(req Request) (Result, error) {
	c, err := NewCalculator(req.DistanceKm, req.Dimension, req.Fragile, req.Load)
	if err != nil {
		return Result{}, err
	}
	return Result{Request: c.Request(), Breakdown: c.Breakdown()}, nil
}

func baseCost(distanceKm float64) float64 {
	for _, tier := range distanceTiers {
		if distanceKm <= tier.UpToKm {
			return tier.BaseCost
		}
	}
	// Unreachable for validated distances.
	return distanceTiers[len(distanceTiers)-1].BaseCost
}
