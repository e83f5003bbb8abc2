package sim

import "math"

// IngestSpeed turns a raw interval reading into the stored speed value.
//
// With no vehicle observed the reference speed (the lane speed limit) is
// stored as is. Otherwise the measured speed is blended towards the
// reference speed by how little the sensor was occupied per vehicle:
//
//	adj = min(1, occupancy / count)
//	stored = adj*measured + (1-adj)*reference
func IngestSpeed(r Reading, referenceSpeed float64) float64 {
	if r.VehicleCount <= 0 || r.MeanSpeed < 0 {
		return referenceSpeed
	}
	adj := math.Min(1.0, r.Occupancy/r.VehicleCount)
	return adj*r.MeanSpeed + (1-adj)*referenceSpeed
}
