package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGate_Allowed(t *testing.T) {
	gate := NewGate(DefaultTable())
	candidate := candidateIdentity()
	staff := staffIdentity()

	candidateOps := []Operation{
		OpSaveDraft, OpSubmit, OpWithdraw, OpViewApplication,
		OpConfirmInterview, OpRequestReschedule, OpViewInterviews,
	}
	staffOps := []Operation{
		OpReviewApplication, OpViewStats, OpCreateInterview, OpCancelInterview,
		OpCompleteInterview, OpMarkNoShow, OpAttachFeedback, OpViewSchedule,
	}

	for _, op := range candidateOps {
		assert.True(t, gate.Allowed(candidate, op), "candidate should be allowed %s", op)
		assert.False(t, gate.Allowed(staff, op), "staff should not be allowed %s", op)
	}
	for _, op := range staffOps {
		assert.True(t, gate.Allowed(staff, op), "staff should be allowed %s", op)
		assert.False(t, gate.Allowed(candidate, op), "candidate should not be allowed %s", op)
	}
}

func TestGate_UnknownOperationDenied(t *testing.T) {
	gate := NewGate(DefaultTable())
	assert.False(t, gate.Allowed(staffIdentity(), Operation("nonsense.op")))
}

func TestGate_MultipleRoles(t *testing.T) {
	gate := NewGate(DefaultTable())
	both := Identity{ID: uuid.New(), Roles: []Role{RoleCandidate, RoleStaff}}

	assert.True(t, gate.Allowed(both, OpSaveDraft))
	assert.True(t, gate.Allowed(both, OpReviewApplication))
}

func TestGate_AllowedOwner(t *testing.T) {
	gate := NewGate(DefaultTable())
	owner := candidateIdentity()
	other := candidateIdentity()

	assert.True(t, gate.AllowedOwner(owner, OpConfirmInterview, owner.ID))
	assert.False(t, gate.AllowedOwner(other, OpConfirmInterview, owner.ID), "same role but not the owner")
	assert.False(t, gate.AllowedOwner(staffIdentity(), OpConfirmInterview, owner.ID), "ownership does not override the role table")
}

func TestIdentity_HasRole(t *testing.T) {
	id := Identity{ID: uuid.New(), Roles: []Role{RoleCandidate}}
	assert.True(t, id.HasRole(RoleCandidate))
	assert.False(t, id.HasRole(RoleStaff))
	assert.False(t, Identity{}.HasRole(RoleCandidate))
}
