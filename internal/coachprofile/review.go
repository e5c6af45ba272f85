package coachprofile

import (
	"fmt"
	"strings"
	"time"

	"coach_marketplace_backend/internal/common"
)

// ReviewAction is an input to the review state machine.
type ReviewAction string

const (
	ActionRequestReview ReviewAction = "request_review"
	ActionStartReview   ReviewAction = "start_review"
	ActionPublish       ReviewAction = "publish"
	ActionReject        ReviewAction = "reject"
)

type transition struct {
	from ReviewStatus
	to   ReviewStatus
	// message of the Bad-State error raised when the draft is not in from.
	message string
}

// transitions is the complete table of legal moves of a draft.
var transitions = map[ReviewAction]transition{
	ActionRequestReview: {from: StatusDraft, to: StatusReviewRequested, message: "Profile is not in draft status"},
	ActionStartReview:   {from: StatusReviewRequested, to: StatusReviewStarted, message: "Profile is not in review requested status"},
	ActionPublish:       {from: StatusReviewStarted, to: StatusDraft, message: "Profile is not in review started status"},
	ActionReject:        {from: StatusReviewStarted, to: StatusDraft, message: "Profile is not in review started status"},
}

// Valid reports whether s is one of the four workflow states.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReviewRequested, StatusReviewStarted, StatusPublished:
		return true
	}
	return false
}

// Next returns the status a draft moves to when action is applied, or a Bad-State error.
func (s ReviewStatus) Next(action ReviewAction) (ReviewStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("unknown review action %q", action)
	}
	if !s.Valid() {
		return "", fmt.Errorf("stored review status %q is not a workflow state", s)
	}
	if s != t.from {
		return "", common.NewBadStateError(t.message)
	}
	return t.to, nil
}

// applyReviewAction moves the draft through the state machine and updates its workflow
// metadata. Nothing else writes ReviewStatus, RequestedReviewAt, ReviewedAt or
// RejectionReason on a draft.
func applyReviewAction(draft *CoachProfile, action ReviewAction, reason string, now time.Time) error {
	if action == ActionReject {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return common.NewValidationAPIError(map[string]string{"rejectionReason": "A rejection reason is required."})
		}
	}

	next, err := draft.ReviewStatus.Next(action)
	if err != nil {
		return err
	}

	switch action {
	case ActionRequestReview:
		draft.RequestedReviewAt = &now
		draft.RejectionReason = nil
	case ActionPublish:
		draft.RequestedReviewAt = nil
		draft.ReviewedAt = &now
		draft.RejectionReason = nil
	case ActionReject:
		draft.ReviewedAt = &now
		draft.RejectionReason = &reason
	}
	draft.ReviewStatus = next
	return nil
}

// markPublished sets the workflow metadata of the published copy after a publish.
func markPublished(published *CoachProfile, now time.Time) {
	published.ReviewStatus = StatusPublished
	published.RequestedReviewAt = nil
	published.ReviewedAt = &now
	published.RejectionReason = nil
}

// CanRequestReview reports whether the coach may submit the draft.
func (p *CoachProfile) CanRequestReview() bool {
	return p.ReviewStatus == StatusDraft
}

// ReviewCycleCompleted is true once a review finished after the latest request.
func (p *CoachProfile) ReviewCycleCompleted() bool {
	if p.ReviewedAt == nil {
		return false
	}
	return p.RequestedReviewAt == nil || p.ReviewedAt.After(*p.RequestedReviewAt)
}
