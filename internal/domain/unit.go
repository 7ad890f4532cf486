package domain

// DefaultUnitCapacity is the number of assets a tow unit may receive in
// one planning pass when no explicit capacity is configured.
const DefaultUnitCapacity = 5

// Represents a tow unit: a collection vehicle with a position and a
// per-pass capacity. Capacity 0 means "use the planner default";
// a negative capacity is a contract violation rejected before planning.
type TowUnit struct {
	UnitID   int
	Location Coordinates
	Capacity int
}

// EffectiveCapacity resolves the unit capacity against a fallback.
func (u TowUnit) EffectiveCapacity(fallback int) int {
	if u.Capacity > 0 {
		return u.Capacity
	}
	return fallback
}
