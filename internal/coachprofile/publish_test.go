package coachprofile

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"coach_marketplace_backend/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPublish_FirstPublishOfAda(t *testing.T) {
	f := newFixture(t)
	spec := f.createSpecialization(t, "Leadership")
	require.Equal(t, uint(1), spec.ID)

	coach := f.createCoach(t, "Ada")
	_, err := f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{Bio: strPtr("")})
	require.NoError(t, err)
	_, err = f.svc.SetDraftSpecializations(f.ctx, coach, []uint{1})
	require.NoError(t, err)
	f.startReview(t, coach)

	require.NoError(t, f.svc.Publish(f.ctx, coach))

	st := f.state(t, coach)
	require.NotNil(t, st.Published)
	assert.Equal(t, "Ada", common.StringValue(st.Published.FirstName))
	assert.Nil(t, st.Published.Bio)
	assert.Equal(t, StatusPublished, st.Published.ReviewStatus)
	assert.Equal(t, []uint{1}, st.Published.SpecializationIDs())
	assert.NotNil(t, st.Published.ReviewedAt)
	assert.Nil(t, st.Published.RequestedReviewAt)

	assert.Equal(t, StatusDraft, st.Draft.ReviewStatus)
	assert.Nil(t, st.Draft.RequestedReviewAt)
	assert.NotNil(t, st.Draft.ReviewedAt)
	assert.Nil(t, st.Draft.RejectionReason)
	assert.Equal(t, []uint{1}, st.Draft.SpecializationIDs())
	assert.NotEqual(t, st.Draft.ID, st.Published.ID)
}

func TestPublish_CopiesContentAndReplacesRelations(t *testing.T) {
	f := newFixture(t)
	coaching := f.createSpecialization(t, "Career Coaching")
	fitness := f.createSpecialization(t, "Fitness")
	nutrition := f.createSpecialization(t, "Nutrition")

	coach := f.createCoach(t, "Grace")
	_, err := f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{
		LastName:         strPtr("Hopper"),
		Bio:              strPtr("Twenty years of coaching."),
		CompanyName:      strPtr("Hopper Coaching"),
		AddressLine1:     strPtr("1 Main St"),
		Zip:              strPtr("10115"),
		City:             strPtr("Berlin"),
		Country:          strPtr("DE"),
		AppointmentTypes: []string{"PHONE", "ONLINE"},
	})
	require.NoError(t, err)
	_, err = f.svc.SetDraftSpecializations(f.ctx, coach, []uint{fitness.ID, coaching.ID})
	require.NoError(t, err)
	_, err = f.svc.AddDraftCertificate(f.ctx, coach, AddCertificateRequest{Name: "ICF ACC", Type: CertificateLicense})
	require.NoError(t, err)
	_, err = f.svc.AddDraftCertificate(f.ctx, coach, AddCertificateRequest{Name: "MSc Psychology", Description: strPtr("TU Berlin"), Type: CertificateDiploma})
	require.NoError(t, err)

	f.startReview(t, coach)
	before := f.state(t, coach)
	require.NoError(t, f.svc.Publish(f.ctx, coach))
	after := f.state(t, coach)

	assert.Equal(t, before.Draft.Information(), after.Published.Information())
	assert.Equal(t, before.Draft.Information(), after.Draft.Information())
	assert.ElementsMatch(t, before.Draft.SpecializationIDs(), after.Published.SpecializationIDs())
	assertSameCertificates(t, before.Draft.Certificates, after.Published.Certificates)
	assert.Equal(t, StatusDraft, after.Draft.ReviewStatus)

	// Second cycle: relations shrink and grow, the published copy follows exactly.
	_, err = f.svc.SetDraftSpecializations(f.ctx, coach, []uint{nutrition.ID})
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveDraftCertificate(f.ctx, coach, after.Draft.Certificates[0].ID))
	_, err = f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{Bio: strPtr(""), City: strPtr("Hamburg")})
	require.NoError(t, err)

	f.startReview(t, coach)
	before = f.state(t, coach)
	require.NoError(t, f.svc.Publish(f.ctx, coach))
	after = f.state(t, coach)

	assert.Equal(t, before.Published.ID, after.Published.ID)
	assert.Nil(t, after.Published.Bio)
	assert.Equal(t, "Hamburg", common.StringValue(after.Published.City))
	assert.Equal(t, []uint{nutrition.ID}, after.Published.SpecializationIDs())
	assertSameCertificates(t, before.Draft.Certificates, after.Published.Certificates)
	assert.Equal(t, int64(2), after.ProfileRows)
}

func assertSameCertificates(t *testing.T, draft, published []Certificate) {
	t.Helper()
	key := func(certs []Certificate) []string {
		out := make([]string, len(certs))
		for i, c := range certs {
			out[i] = certificateKey(c)
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, key(draft), key(published))

	draftIDs := make(map[uint]bool, len(draft))
	for _, c := range draft {
		draftIDs[c.ID] = true
	}
	for _, c := range published {
		assert.False(t, draftIDs[c.ID], "published certificate reuses draft id %d", c.ID)
	}
}

func TestPublish_PreconditionsLeaveRowsUnchanged(t *testing.T) {
	for _, status := range []ReviewStatus{StatusDraft, StatusReviewRequested, StatusPublished} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			spec := f.createSpecialization(t, "Mindset")
			coach := f.createCoach(t, "Alan")
			_, err := f.svc.SetDraftSpecializations(f.ctx, coach, []uint{spec.ID})
			require.NoError(t, err)
			f.startReview(t, coach)
			require.NoError(t, f.svc.Publish(f.ctx, coach))

			_, err = f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{Bio: strPtr("pending edit")})
			require.NoError(t, err)
			f.setDraftStatus(t, coach, status)

			before := f.state(t, coach)
			err = f.svc.Publish(f.ctx, coach)
			after := f.state(t, coach)

			require.True(t, errors.Is(err, common.ErrBadState))
			assert.Equal(t, "Profile is not in review started status", err.(*common.APIError).Message)
			assert.Equal(t, before, after)
		})
	}
}

func TestPublish_MissingDraftIsNotFound(t *testing.T) {
	f := newFixture(t)
	noDraft := f.createUser(t, "coach", "Edsger")

	assert.True(t, errors.Is(f.svc.Publish(f.ctx, noDraft), common.ErrNotFound))
	assert.True(t, errors.Is(f.svc.Publish(f.ctx, 9999), common.ErrNotFound))
}

func TestPublish_SecondPublishIsRefused(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Barbara")
	f.startReview(t, coach)

	require.NoError(t, f.svc.Publish(f.ctx, coach))
	assert.True(t, errors.Is(f.svc.Publish(f.ctx, coach), common.ErrBadState))
}

func TestPublish_RollsBackWhenCertificateInsertFails(t *testing.T) {
	f := newFixture(t)
	first := f.createSpecialization(t, "Sleep")
	second := f.createSpecialization(t, "Stress")

	coach := f.createCoach(t, "Ken")
	_, err := f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{Bio: strPtr("v1")})
	require.NoError(t, err)
	_, err = f.svc.SetDraftSpecializations(f.ctx, coach, []uint{first.ID})
	require.NoError(t, err)
	_, err = f.svc.AddDraftCertificate(f.ctx, coach, AddCertificateRequest{Name: "Cert v1", Type: CertificateCourse})
	require.NoError(t, err)
	f.startReview(t, coach)
	require.NoError(t, f.svc.Publish(f.ctx, coach))

	_, err = f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{Bio: strPtr("v2"), City: strPtr("Oslo")})
	require.NoError(t, err)
	_, err = f.svc.SetDraftSpecializations(f.ctx, coach, []uint{second.ID})
	require.NoError(t, err)
	_, err = f.svc.AddDraftCertificate(f.ctx, coach, AddCertificateRequest{Name: "Cert v2", Type: CertificateOther})
	require.NoError(t, err)
	f.startReview(t, coach)

	injected := errors.New("injected certificate insert failure")
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_certificates", func(tx *gorm.DB) {
		if tx.Statement.Table == "certificates" {
			_ = tx.AddError(injected)
		}
	}))

	before := f.state(t, coach)
	err = f.svc.Publish(f.ctx, coach)
	after := f.state(t, coach)

	require.ErrorIs(t, err, injected)
	assert.Equal(t, before, after)
	assert.Equal(t, "v1", common.StringValue(after.Published.Bio))
	assert.Equal(t, []uint{first.ID}, after.Published.SpecializationIDs())
	assert.Equal(t, StatusReviewStarted, after.Draft.ReviewStatus)
}

func TestPublish_RecordsAuditSnapshot(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Margaret")
	f.startReview(t, coach)
	require.NoError(t, f.svc.Publish(f.ctx, coach))

	events, pagination, err := f.svc.ListReviewEvents(f.ctx, coach, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pagination.TotalItems)
	require.Len(t, events, 3)

	publish := events[0]
	assert.Equal(t, ActionPublish, publish.Action)
	assert.Equal(t, StatusReviewStarted, publish.FromStatus)
	assert.Equal(t, StatusDraft, publish.ToStatus)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(publish.Snapshot, &snapshot))
	assert.Equal(t, "Margaret", snapshot["first_name"])
	assert.Equal(t, ActionRequestReview, events[2].Action)
}

func TestReviewOverviewAndRevert(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Linus")

	overview, err := f.svc.GetReviewOverview(f.ctx, coach)
	require.NoError(t, err)
	assert.False(t, overview.HasPublishedProfile)
	assert.True(t, overview.HasChanges)
	assert.True(t, overview.CanRequestReview)
	assert.False(t, overview.ReviewCycleCompleted)
	require.Len(t, overview.Diffs, 1)
	assert.Equal(t, DiffEntry{Field: "firstName", IsNew: true, NewValue: "Linus"}, overview.Diffs[0])

	f.startReview(t, coach)
	require.NoError(t, f.svc.Publish(f.ctx, coach))

	overview, err = f.svc.GetReviewOverview(f.ctx, coach)
	require.NoError(t, err)
	assert.True(t, overview.HasPublishedProfile)
	assert.False(t, overview.HasChanges)
	assert.Empty(t, overview.Diffs)
	assert.True(t, overview.ReviewCycleCompleted)

	_, err = f.svc.UpdateDraft(f.ctx, coach, UpdateDraftRequest{FirstName: strPtr("Linux"), City: strPtr("Helsinki")})
	require.NoError(t, err)
	overview, err = f.svc.GetReviewOverview(f.ctx, coach)
	require.NoError(t, err)
	assert.Len(t, overview.Diffs, 2)

	draft, err := f.svc.RevertField(f.ctx, coach, "firstName")
	require.NoError(t, err)
	assert.Equal(t, "Linus", common.StringValue(draft.FirstName))

	draft, err = f.svc.RevertField(f.ctx, coach, "city")
	require.NoError(t, err)
	assert.Nil(t, draft.City)

	overview, err = f.svc.GetReviewOverview(f.ctx, coach)
	require.NoError(t, err)
	assert.Empty(t, overview.Diffs)

	_, err = f.svc.RevertField(f.ctx, coach, "reviewStatus")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestRejectKeepsDraftContentAndRecordsReason(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Frances")
	f.startReview(t, coach)

	err := f.svc.Reject(f.ctx, coach, " ")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	require.NoError(t, f.svc.Reject(f.ctx, coach, "Please add a bio."))

	overview, err := f.svc.GetReviewOverview(f.ctx, coach)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, overview.ReviewStatus)
	assert.Equal(t, "Please add a bio.", common.StringValue(overview.RejectionReason))
	assert.True(t, overview.ReviewCycleCompleted)
	assert.True(t, overview.CanRequestReview)

	_, err = f.svc.RequestReview(f.ctx, coach)
	require.NoError(t, err)
	overview, err = f.svc.GetReviewOverview(f.ctx, coach)
	require.NoError(t, err)
	assert.Nil(t, overview.RejectionReason)
	assert.False(t, overview.ReviewCycleCompleted)

	_, err = f.svc.RequestReview(f.ctx, coach)
	assert.True(t, errors.Is(err, common.ErrBadState))
}

func TestEnsureDraft(t *testing.T) {
	f := newFixture(t)
	coach := f.createUser(t, "coach", "Niklaus")
	customer := f.createUser(t, "customer", "Tony")

	first, err := f.svc.EnsureDraft(f.ctx, coach)
	require.NoError(t, err)
	second, err := f.svc.EnsureDraft(f.ctx, coach)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Niklaus", common.StringValue(first.FirstName))
	assert.Equal(t, StatusDraft, first.ReviewStatus)

	_, err = f.svc.EnsureDraft(f.ctx, customer)
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestGetPublishedProfile(t *testing.T) {
	f := newFixture(t)
	coach := f.createCoach(t, "Donald")

	_, err := f.svc.GetPublishedProfile(f.ctx, coach)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	f.startReview(t, coach)
	require.NoError(t, f.svc.Publish(f.ctx, coach))

	published, err := f.svc.GetPublishedProfile(f.ctx, coach)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, published.ReviewStatus)

	batch, err := f.svc.ListPublished(f.ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, published.ID, batch[0].ID)
}
