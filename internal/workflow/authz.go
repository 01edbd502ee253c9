package workflow

import "github.com/google/uuid"

// Role is a caller role as attached by the upstream authentication service.
type Role string

// Caller roles.
const (
	RoleCandidate Role = "candidate"
	RoleStaff     Role = "staff"
)

// Operation names a guarded transition or read. The authorization table maps
// each operation to the roles that may invoke it.
type Operation string

// Guarded operations.
const (
	OpSaveDraft         Operation = "application.save_draft"
	OpSubmit            Operation = "application.submit"
	OpWithdraw          Operation = "application.withdraw"
	OpViewApplication   Operation = "application.view_own"
	OpReviewApplication Operation = "application.review"
	OpViewStats         Operation = "application.stats"

	OpCreateInterview   Operation = "interview.create"
	OpConfirmInterview  Operation = "interview.confirm"
	OpRequestReschedule Operation = "interview.request_reschedule"
	OpCancelInterview   Operation = "interview.cancel"
	OpCompleteInterview Operation = "interview.complete"
	OpMarkNoShow        Operation = "interview.mark_no_show"
	OpAttachFeedback    Operation = "interview.attach_feedback"
	OpViewInterviews    Operation = "interview.view_own"
	OpViewSchedule      Operation = "interview.schedule"
)

// Identity is the authenticated caller, trusted as-is from the upstream
// authentication collaborator.
type Identity struct {
	ID    uuid.UUID
	Roles []Role
}

// HasRole reports whether the identity carries the given role.
func (id Identity) HasRole(role Role) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Gate maps operations to acceptable role sets. It has no hidden state; the
// table is fixed at construction and shared by both services.
type Gate struct {
	table map[Operation][]Role
}

// NewGate builds a gate from an authorization table.
func NewGate(table map[Operation][]Role) *Gate {
	return &Gate{table: table}
}

// DefaultTable is the authorization table for the membership workflow. Having
// the full rule set in one place keeps it auditable.
func DefaultTable() map[Operation][]Role {
	return map[Operation][]Role{
		OpSaveDraft:         {RoleCandidate},
		OpSubmit:            {RoleCandidate},
		OpWithdraw:          {RoleCandidate},
		OpViewApplication:   {RoleCandidate},
		OpReviewApplication: {RoleStaff},
		OpViewStats:         {RoleStaff},

		OpCreateInterview:   {RoleStaff},
		OpConfirmInterview:  {RoleCandidate},
		OpRequestReschedule: {RoleCandidate},
		OpCancelInterview:   {RoleStaff},
		OpCompleteInterview: {RoleStaff},
		OpMarkNoShow:        {RoleStaff},
		OpAttachFeedback:    {RoleStaff},
		OpViewInterviews:    {RoleCandidate},
		OpViewSchedule:      {RoleStaff},
	}
}

// Allowed reports whether the caller's role set permits the operation.
func (g *Gate) Allowed(caller Identity, op Operation) bool {
	roles, ok := g.table[op]
	if !ok {
		return false
	}
	for _, r := range roles {
		if caller.HasRole(r) {
			return true
		}
	}
	return false
}

// AllowedOwner reports whether the caller may invoke a candidate-only
// operation on a record owned by ownerID. Ownership is a separate predicate
// from role membership.
func (g *Gate) AllowedOwner(caller Identity, op Operation, ownerID uuid.UUID) bool {
	return g.Allowed(caller, op) && caller.ID == ownerID
}
