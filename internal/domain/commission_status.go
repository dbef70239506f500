package domain

// DisputeResolution selects where a resolved dispute routes the commission.
type DisputeResolution string

const (
	ResolutionUpheld   DisputeResolution = "upheld"   // back to processed
	ResolutionRefunded DisputeResolution = "refunded" // cancelled, host not paid
)

func (r DisputeResolution) Valid() bool {
	return r == ResolutionUpheld || r == ResolutionRefunded
}

// commissionEdges lists every legal commission transition. Paid-out and
// cancelled are absorbing. Disputed and on-hold are reachable from any
// non-terminal state.
var commissionEdges = map[CommissionStatus][]CommissionStatus{
	CommissionPending:   {CommissionProcessed, CommissionDisputed, CommissionOnHold, CommissionCancelled},
	CommissionProcessed: {CommissionPaidOut, CommissionDisputed, CommissionOnHold},
	CommissionDisputed:  {CommissionProcessed, CommissionCancelled, CommissionOnHold},
	CommissionOnHold:    {CommissionPending, CommissionProcessed, CommissionDisputed},
	CommissionPaidOut:   {},
	CommissionCancelled: {},
}

func (s CommissionStatus) Valid() bool {
	_, ok := commissionEdges[s]
	return ok
}

func (s CommissionStatus) Terminal() bool {
	return len(commissionEdges[s]) == 0 && s.Valid()
}

func (s CommissionStatus) CanTransitionTo(to CommissionStatus) bool {
	for _, next := range commissionEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}
