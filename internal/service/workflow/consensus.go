package workflow

import (
	models "docflow/internal/domain/models/workflow"
)

// consensus is the outcome of evaluating an approver snapshot: fully
// approved releases the document, a single rejection short-circuits the
// whole set and returns it to Draft. Pending votes left behind a
// rejection become moot; they are never reset by the evaluation itself.
type consensus struct {
	FullyApproved bool
	Rejected      *models.Approver // first rejecting approver, if any
	Pending       int
}

// evaluateConsensus computes the all-approvers-approved rule over a
// consistent snapshot of the approver set. Callers must hold the
// document row lock so a racing decision cannot change the snapshot
// underfoot. An empty set is NOT fully approved here - the no-approver
// fast path is a submit-time decision, not a consensus outcome.
func evaluateConsensus(approvers []models.Approver) consensus {
	if len(approvers) == 0 {
		return consensus{}
	}

	c := consensus{FullyApproved: true}
	for i := range approvers {
		switch approvers[i].Status {
		case models.DecisionRejected:
			if c.Rejected == nil {
				c.Rejected = &approvers[i]
			}
			c.FullyApproved = false
		case models.DecisionPending:
			c.Pending++
			c.FullyApproved = false
		}
	}
	return c
}
