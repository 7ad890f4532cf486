package ports

import "context"

// Contract for opening a collection case for an owner after a coupling
// has been confirmed. The operation is two remote steps behind one call:
// either both succeed or the whole call reports failure. Failure is
// reported only; it never retracts the coupling it followed.
type CaseOpener interface {
	OpenCase(ctx context.Context, ownerID int) error
}
