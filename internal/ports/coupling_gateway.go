package ports

import "context"

// Contract for linking an asset to a tow unit for transport.
// The call is side-effecting; the planner issues it exactly once per
// candidate assignment and treats any error as a rejection for the
// remainder of the pass.
type CouplingGateway interface {
	Couple(ctx context.Context, assetID, unitID int) error
}
