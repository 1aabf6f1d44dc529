package seller

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T) *RegistrationRequest {
	t.Helper()
	req, err := NewRegistrationRequest(uuid.New(), "Fresh Produce Stand", "Maria Santos", "+63-912-555-0101", "maria@example.com", "wet-market", "A-12")
	require.NoError(t, err)
	req.ClearDomainEvents()
	return req
}

func TestNewRegistrationRequest(t *testing.T) {
	t.Run("creates pending request", func(t *testing.T) {
		applicantID := uuid.New()
		req, err := NewRegistrationRequest(applicantID, "Fresh Produce Stand", "Maria Santos", "+63-912-555-0101", "maria@example.com", "wet-market", "A-12")

		require.NoError(t, err)
		assert.Equal(t, applicantID, req.ApplicantID)
		assert.Equal(t, RegistrationStatusPending, req.Status)
		assert.Empty(t, req.DocumentKeys)
		assert.True(t, req.IsLive())

		events := req.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*RegistrationSubmittedEvent)
		assert.True(t, ok)
	})

	t.Run("fails with nil applicant", func(t *testing.T) {
		_, err := NewRegistrationRequest(uuid.Nil, "Fresh Produce Stand", "Maria Santos", "+63-912-555-0101", "", "wet-market", "A-12")

		assert.Error(t, err)
	})

	t.Run("fails with empty business name", func(t *testing.T) {
		_, err := NewRegistrationRequest(uuid.New(), "  ", "Maria Santos", "+63-912-555-0101", "", "wet-market", "A-12")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Business name cannot be empty")
	})

	t.Run("fails with empty market section", func(t *testing.T) {
		_, err := NewRegistrationRequest(uuid.New(), "Fresh Produce Stand", "Maria Santos", "+63-912-555-0101", "", "", "A-12")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Market section")
	})
}

func TestRegistrationRequest_AddDocument(t *testing.T) {
	t.Run("attaches document key", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.AddDocument("sellers/docs/permit.pdf"))
		assert.Equal(t, []string{"sellers/docs/permit.pdf"}, req.DocumentKeys)
	})

	t.Run("rejects duplicate document key", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.AddDocument("sellers/docs/permit.pdf"))
		assert.Error(t, req.AddDocument("sellers/docs/permit.pdf"))
	})

	t.Run("rejects documents on reviewed request", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Approve(uuid.New()))

		assert.Error(t, req.AddDocument("sellers/docs/late.pdf"))
	})
}

func TestRegistrationRequest_ReviewWorkflow(t *testing.T) {
	reviewerID := uuid.New()

	t.Run("pending to under_review to approved", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.StartReview(reviewerID))
		assert.Equal(t, RegistrationStatusUnderReview, req.Status)
		require.NotNil(t, req.ReviewerID)
		assert.Equal(t, reviewerID, *req.ReviewerID)

		require.NoError(t, req.Approve(reviewerID))
		assert.Equal(t, RegistrationStatusApproved, req.Status)
		assert.NotNil(t, req.ReviewedAt)

		events := req.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*RegistrationApprovedEvent)
		assert.True(t, ok)
	})

	t.Run("approving twice fails", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.Approve(reviewerID))
		err := req.Approve(reviewerID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "current state")
	})

	t.Run("reject requires reason", func(t *testing.T) {
		req := newTestRequest(t)

		assert.Error(t, req.Reject(reviewerID, "  "))
	})

	t.Run("rejected request is not live", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.Reject(reviewerID, "Incomplete documents"))
		assert.Equal(t, RegistrationStatusRejected, req.Status)
		assert.Equal(t, "Incomplete documents", req.RejectionReason)
		assert.False(t, req.IsLive())
	})

	t.Run("rejected request cannot re-enter review", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.Reject(reviewerID, "Incomplete documents"))
		assert.Error(t, req.StartReview(reviewerID))
	})
}

func TestRegistrationStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, RegistrationStatusPending.CanTransitionTo(RegistrationStatusUnderReview))
	assert.True(t, RegistrationStatusPending.CanTransitionTo(RegistrationStatusApproved))
	assert.True(t, RegistrationStatusUnderReview.CanTransitionTo(RegistrationStatusRejected))
	assert.False(t, RegistrationStatusApproved.CanTransitionTo(RegistrationStatusRejected))
	assert.False(t, RegistrationStatusRejected.CanTransitionTo(RegistrationStatusPending))
}
