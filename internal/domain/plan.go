package domain

// A single unit's share of an assignment plan: the assets coupled to it,
// in the order coupling was confirmed.
type UnitAssignment struct {
	UnitID   int
	AssetIDs []int
}

// AssignmentPlan is the result of one planning pass: an ordered mapping
// from unit to the assets successfully coupled to it. Entries appear in
// unit-processing order and only for units that received at least one
// asset. The plan is immutable output data once the pass completes.
type AssignmentPlan struct {
	Units []UnitAssignment

	index map[int]int
}

func NewAssignmentPlan() *AssignmentPlan {
	return &AssignmentPlan{index: make(map[int]int)}
}

// Append records a confirmed coupling of assetID to unitID, creating the
// unit's entry on first use so entry order tracks processing order.
func (p *AssignmentPlan) Append(unitID, assetID int) {
	i, ok := p.index[unitID]
	if !ok {
		i = len(p.Units)
		p.index[unitID] = i
		p.Units = append(p.Units, UnitAssignment{UnitID: unitID})
	}
	p.Units[i].AssetIDs = append(p.Units[i].AssetIDs, assetID)
}

// AssetsFor returns the assets coupled to unitID, nil if the unit
// received none.
func (p *AssignmentPlan) AssetsFor(unitID int) []int {
	i, ok := p.index[unitID]
	if !ok {
		return nil
	}
	return p.Units[i].AssetIDs
}

// TotalAssigned returns the number of assets across all entries.
func (p *AssignmentPlan) TotalAssigned() int {
	n := 0
	for _, u := range p.Units {
		n += len(u.AssetIDs)
	}
	return n
}
