package coachprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/config"
	"coach_marketplace_backend/internal/notification"
	"coach_marketplace_backend/internal/specialization"
	"coach_marketplace_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SearchIndexer receives published profiles after a successful publish.
type SearchIndexer interface {
	IndexProfile(ctx context.Context, profile *CoachProfile) error
}

// Service defines the coach profile workflow.
type Service interface {
	// Coach self-service
	EnsureDraft(ctx context.Context, userID uint) (*CoachProfile, error)
	GetDraft(ctx context.Context, userID uint) (*CoachProfile, error)
	UpdateDraft(ctx context.Context, userID uint, req UpdateDraftRequest) (*CoachProfile, error)
	SetDraftSpecializations(ctx context.Context, userID uint, ids []uint) (*CoachProfile, error)
	AddDraftCertificate(ctx context.Context, userID uint, req AddCertificateRequest) (*CoachProfile, error)
	RemoveDraftCertificate(ctx context.Context, userID uint, certificateID uint) error
	GetReviewOverview(ctx context.Context, userID uint) (*ReviewOverview, error)
	RequestReview(ctx context.Context, userID uint) (*CoachProfile, error)
	RevertField(ctx context.Context, userID uint, field string) (*CoachProfile, error)

	// Operator
	StartReview(ctx context.Context, coachUserID uint) error
	Reject(ctx context.Context, coachUserID uint, reason string) error
	Publish(ctx context.Context, coachUserID uint) error
	ListReviewEvents(ctx context.Context, coachUserID uint, page, pageSize int) ([]ReviewEvent, *common.Pagination, error)

	// Public
	GetPublishedProfile(ctx context.Context, coachUserID uint) (*CoachProfile, error)
	ListPublished(ctx context.Context, afterID uint, limit int) ([]CoachProfile, error)
}

// ServiceImplementation implements the coach profile Service interface.
type ServiceImplementation struct {
	repo                  Repository
	specializationService specialization.Service
	notificationService   notification.Service
	indexer               SearchIndexer
	diffOptions           DiffOptions
	logger                *zap.Logger
	now                   func() time.Time
}

// NewService creates a new coach profile service. notificationService and indexer may be nil.
func NewService(
	repo Repository,
	specializationService specialization.Service,
	notificationService notification.Service,
	indexer SearchIndexer,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:                  repo,
		specializationService: specializationService,
		notificationService:   notificationService,
		indexer:               indexer,
		diffOptions:           DiffOptions{ReportIdentical: cfg.DiffReportIdenticalFields},
		logger:                logger.Named("CoachProfileService"),
		now:                   func() time.Time { return time.Now().UTC() },
	}
}

// loadDraft resolves the coach's draft through users.coach_profile_draft_id.
func loadDraft(ctx context.Context, repo Repository, userID uint, forUpdate bool) (*user.User, *CoachProfile, error) {
	owner, err := repo.FindOwner(ctx, userID, false)
	if err != nil {
		return nil, nil, err
	}
	if owner.CoachProfileDraftID == nil {
		return owner, nil, common.ErrNotFound.WithDetails("Draft profile not found.")
	}
	draft, err := repo.FindProfile(ctx, *owner.CoachProfileDraftID, forUpdate)
	if err != nil {
		return owner, nil, err
	}
	return owner, draft, nil
}

// loadPublished returns nil without error when the coach was never published.
func loadPublished(ctx context.Context, repo Repository, owner *user.User, forUpdate bool) (*CoachProfile, error) {
	if owner.CoachProfileID == nil {
		return nil, nil
	}
	return repo.FindProfile(ctx, *owner.CoachProfileID, forUpdate)
}

func (s *ServiceImplementation) EnsureDraft(ctx context.Context, userID uint) (*CoachProfile, error) {
	owner, err := s.repo.FindOwner(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	if owner.Role != common.RoleCoach {
		return nil, common.ErrForbidden.WithDetails("Only coaches have a coach profile.")
	}
	if owner.CoachProfileDraftID != nil {
		return s.repo.FindProfile(ctx, *owner.CoachProfileDraftID, false)
	}

	var draft *CoachProfile
	err = s.repo.WithTransaction(ctx, func(tx Repository) error {
		// Re-read under lock so two first requests cannot both create a draft.
		locked, err := tx.FindOwner(ctx, userID, true)
		if err != nil {
			return err
		}
		if locked.CoachProfileDraftID != nil {
			draft, err = tx.FindProfile(ctx, *locked.CoachProfileDraftID, false)
			return err
		}

		draft = &CoachProfile{
			UserID:       locked.ID,
			FirstName:    locked.FirstName,
			LastName:     locked.LastName,
			ReviewStatus: StatusDraft,
		}
		if err := tx.CreateProfile(ctx, draft); err != nil {
			return err
		}
		return tx.LinkDraft(ctx, locked.ID, draft.ID)
	})
	if err != nil {
		s.logger.Error("Failed to ensure draft profile", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Draft profile ready", zap.Uint("userID", userID), zap.Uint("draftID", draft.ID))
	return draft, nil
}

func (s *ServiceImplementation) GetDraft(ctx context.Context, userID uint) (*CoachProfile, error) {
	_, draft, err := loadDraft(ctx, s.repo, userID, false)
	return draft, err
}

// UpdateDraft edits content fields. Edits are allowed in every review state.
func (s *ServiceImplementation) UpdateDraft(ctx context.Context, userID uint, req UpdateDraftRequest) (*CoachProfile, error) {
	_, draft, err := loadDraft(ctx, s.repo, userID, false)
	if err != nil {
		return nil, err
	}

	assign := func(dst **string, v *string) {
		if v != nil {
			*dst = common.StringPtr(strings.TrimSpace(*v))
		}
	}
	assign(&draft.FirstName, req.FirstName)
	assign(&draft.LastName, req.LastName)
	assign(&draft.Bio, req.Bio)
	assign(&draft.CompanyName, req.CompanyName)
	assign(&draft.AddressLine1, req.AddressLine1)
	assign(&draft.AddressLine2, req.AddressLine2)
	assign(&draft.Zip, req.Zip)
	assign(&draft.City, req.City)
	assign(&draft.Country, req.Country)

	if req.AppointmentTypes != nil {
		types, err := ParseAppointmentTypes(strings.Join(req.AppointmentTypes, ","))
		if err != nil {
			return nil, common.NewValidationAPIError(map[string]string{"appointment_types": err.Error()})
		}
		draft.AppointmentTypes = JoinAppointmentTypes(types)
	}

	if err := s.repo.UpdateContent(ctx, draft); err != nil {
		s.logger.Error("Failed to update draft profile", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	return draft, nil
}

func (s *ServiceImplementation) SetDraftSpecializations(ctx context.Context, userID uint, ids []uint) (*CoachProfile, error) {
	items, err := s.specializationService.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	_, draft, err := loadDraft(ctx, s.repo, userID, false)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceSpecializations(ctx, draft, items); err != nil {
		s.logger.Error("Failed to set draft specializations", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	draft.Specializations = items
	return draft, nil
}

func (s *ServiceImplementation) AddDraftCertificate(ctx context.Context, userID uint, req AddCertificateRequest) (*CoachProfile, error) {
	_, draft, err := loadDraft(ctx, s.repo, userID, false)
	if err != nil {
		return nil, err
	}
	cert := &Certificate{
		CoachProfileID: draft.ID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Type:           req.Type,
	}
	if req.Description != nil {
		cert.Description = common.StringPtr(strings.TrimSpace(*req.Description))
	}
	if err := s.repo.AddCertificate(ctx, cert); err != nil {
		s.logger.Error("Failed to add draft certificate", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	draft.Certificates = append(draft.Certificates, *cert)
	return draft, nil
}

func (s *ServiceImplementation) RemoveDraftCertificate(ctx context.Context, userID uint, certificateID uint) error {
	_, draft, err := loadDraft(ctx, s.repo, userID, false)
	if err != nil {
		return err
	}
	return s.repo.DeleteCertificate(ctx, draft.ID, certificateID)
}

func (s *ServiceImplementation) GetReviewOverview(ctx context.Context, userID uint) (*ReviewOverview, error) {
	owner, draft, err := loadDraft(ctx, s.repo, userID, false)
	if err != nil {
		return nil, err
	}
	published, err := loadPublished(ctx, s.repo, owner, false)
	if err != nil {
		return nil, err
	}
	diffs, err := ComputeDiff(published, draft, s.diffOptions)
	if err != nil {
		return nil, err
	}

	return &ReviewOverview{
		Diffs:                diffs,
		ReviewStatus:         draft.ReviewStatus,
		RequestedReviewAt:    draft.RequestedReviewAt,
		ReviewedAt:           draft.ReviewedAt,
		RejectionReason:      draft.RejectionReason,
		HasPublishedProfile:  published != nil,
		HasChanges:           len(diffs) > 0 || relationsChanged(published, draft),
		CanRequestReview:     draft.CanRequestReview(),
		ReviewCycleCompleted: draft.ReviewCycleCompleted(),
	}, nil
}

// RevertField copies the published value of one comparable field back into the draft.
// Without a published profile the field is cleared.
func (s *ServiceImplementation) RevertField(ctx context.Context, userID uint, field string) (*CoachProfile, error) {
	f, ok := lookupField(field)
	if !ok {
		return nil, common.NewValidationAPIError(map[string]string{
			"field": fmt.Sprintf("Unknown field %q. Expected one of: %s.", field, strings.Join(ComparableFields(), ", ")),
		})
	}
	owner, draft, err := loadDraft(ctx, s.repo, userID, false)
	if err != nil {
		return nil, err
	}
	published, err := loadPublished(ctx, s.repo, owner, false)
	if err != nil {
		return nil, err
	}

	var value *string
	if published != nil {
		value = f.get(published)
	}
	f.set(draft, value)

	if err := s.repo.UpdateContent(ctx, draft); err != nil {
		s.logger.Error("Failed to revert draft field", zap.Uint("userID", userID), zap.String("field", field), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Draft field reverted", zap.Uint("userID", userID), zap.String("field", field))
	return draft, nil
}

func (s *ServiceImplementation) RequestReview(ctx context.Context, userID uint) (*CoachProfile, error) {
	draft, err := s.transition(ctx, userID, ActionRequestReview, "")
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *ServiceImplementation) StartReview(ctx context.Context, coachUserID uint) error {
	draft, err := s.transition(ctx, coachUserID, ActionStartReview, "")
	if err != nil {
		return err
	}
	s.notify(ctx, coachUserID, notification.ProfileReviewStarted, "Your profile review has started.", draft.ID)
	return nil
}

func (s *ServiceImplementation) Reject(ctx context.Context, coachUserID uint, reason string) error {
	draft, err := s.transition(ctx, coachUserID, ActionReject, reason)
	if err != nil {
		return err
	}
	s.notify(ctx, coachUserID, notification.ProfileRejected,
		fmt.Sprintf("Your profile changes were not approved: %s", common.StringValue(draft.RejectionReason)), draft.ID)
	return nil
}

// transition applies a workflow action to the locked draft and records it.
func (s *ServiceImplementation) transition(ctx context.Context, userID uint, action ReviewAction, reason string) (*CoachProfile, error) {
	var draft *CoachProfile
	err := s.repo.WithTransaction(ctx, func(tx Repository) error {
		var err error
		_, draft, err = loadDraft(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		from := draft.ReviewStatus
		if err := applyReviewAction(draft, action, reason, s.now()); err != nil {
			return err
		}
		if err := tx.SaveWorkflow(ctx, draft); err != nil {
			return err
		}
		return tx.RecordReviewEvent(ctx, &ReviewEvent{
			CoachUserID:    userID,
			CoachProfileID: draft.ID,
			Action:         action,
			FromStatus:     from,
			ToStatus:       draft.ReviewStatus,
			Reason:         draft.RejectionReason,
		})
	})
	if err != nil {
		s.logTransitionFailure(userID, action, err)
		return nil, err
	}
	s.logger.Info("Review status changed",
		zap.Uint("userID", userID),
		zap.String("action", string(action)),
		zap.String("status", string(draft.ReviewStatus)),
	)
	return draft, nil
}

type publishSnapshot struct {
	ProfileInformation
	SpecializationIDs []uint                `json:"specialization_ids"`
	Certificates      []CertificateResponse `json:"certificates"`
}

// Publish promotes the draft to the published slot and resets the draft, all in one
// transaction. The draft row is locked and its status re-checked inside the transaction,
// so a concurrent second publish fails with Bad-State.
func (s *ServiceImplementation) Publish(ctx context.Context, coachUserID uint) error {
	var publishedID uint
	err := s.repo.WithTransaction(ctx, func(tx Repository) error {
		owner, draft, err := loadDraft(ctx, tx, coachUserID, true)
		if err != nil {
			return err
		}
		if _, err := draft.ReviewStatus.Next(ActionPublish); err != nil {
			return err
		}

		now := s.now()
		info := draft.Information()

		published, err := loadPublished(ctx, tx, owner, true)
		if err != nil {
			return err
		}
		if published == nil {
			published = &CoachProfile{UserID: owner.ID}
			published.ApplyInformation(info)
			markPublished(published, now)
			if err := tx.CreateProfile(ctx, published); err != nil {
				return err
			}
			if err := tx.LinkPublished(ctx, owner.ID, published.ID); err != nil {
				return err
			}
		} else {
			published.ApplyInformation(info)
			markPublished(published, now)
			if err := tx.SaveProfile(ctx, published); err != nil {
				return err
			}
		}
		if published.ID == 0 {
			return common.ErrInternalServer.WithDetails("Published profile has no id after upsert.")
		}

		if err := tx.ReplaceSpecializations(ctx, published, draft.Specializations); err != nil {
			return err
		}
		certificates := copyCertificates(draft.Certificates)
		if err := tx.ReplaceCertificates(ctx, published.ID, certificates); err != nil {
			return err
		}

		from := draft.ReviewStatus
		if err := applyReviewAction(draft, ActionPublish, "", now); err != nil {
			return err
		}
		if err := tx.SaveWorkflow(ctx, draft); err != nil {
			return err
		}

		snapshot, err := json.Marshal(publishSnapshot{
			ProfileInformation: info,
			SpecializationIDs:  draft.SpecializationIDs(),
			Certificates:       toCertificateResponses(certificates),
		})
		if err != nil {
			return fmt.Errorf("failed to encode publish snapshot: %w", err)
		}
		publishedID = published.ID
		return tx.RecordReviewEvent(ctx, &ReviewEvent{
			CoachUserID:    coachUserID,
			CoachProfileID: draft.ID,
			Action:         ActionPublish,
			FromStatus:     from,
			ToStatus:       draft.ReviewStatus,
			Snapshot:       datatypes.JSON(snapshot),
		})
	})
	if err != nil {
		s.logTransitionFailure(coachUserID, ActionPublish, err)
		return err
	}

	s.logger.Info("Coach profile published", zap.Uint("userID", coachUserID), zap.Uint("publishedID", publishedID))
	s.notify(ctx, coachUserID, notification.ProfilePublished, "Your profile has been published.", publishedID)
	s.index(ctx, publishedID)
	return nil
}

// copyCertificates drops ids and owner so the copies can be inserted under another profile.
func copyCertificates(src []Certificate) []Certificate {
	out := make([]Certificate, len(src))
	for i, c := range src {
		out[i] = Certificate{Name: c.Name, Description: c.Description, Type: c.Type}
	}
	return out
}

func (s *ServiceImplementation) ListReviewEvents(ctx context.Context, coachUserID uint, page, pageSize int) ([]ReviewEvent, *common.Pagination, error) {
	if _, err := s.repo.FindOwner(ctx, coachUserID, false); err != nil {
		return nil, nil, err
	}
	events, pagination, err := s.repo.ListReviewEvents(ctx, coachUserID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list review events", zap.Uint("userID", coachUserID), zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve review events.")
	}
	return events, pagination, nil
}

func (s *ServiceImplementation) GetPublishedProfile(ctx context.Context, coachUserID uint) (*CoachProfile, error) {
	owner, err := s.repo.FindOwner(ctx, coachUserID, false)
	if err != nil {
		return nil, err
	}
	published, err := loadPublished(ctx, s.repo, owner, false)
	if err != nil {
		return nil, err
	}
	if published == nil {
		return nil, common.ErrNotFound.WithDetails("Coach has no published profile.")
	}
	return published, nil
}

func (s *ServiceImplementation) ListPublished(ctx context.Context, afterID uint, limit int) ([]CoachProfile, error) {
	return s.repo.FindPublishedBatch(ctx, afterID, limit)
}

// notify is best effort: the workflow already committed.
func (s *ServiceImplementation) notify(ctx context.Context, userID uint, notifType notification.NotificationType, message string, profileID uint) {
	if s.notificationService == nil {
		return
	}
	if _, err := s.notificationService.CreateNotification(ctx, userID, notifType, message, &profileID); err != nil {
		s.logger.Error("Failed to send review notification",
			zap.Uint("userID", userID),
			zap.String("type", string(notifType)),
			zap.Error(err),
		)
	}
}

// index is best effort; the periodic reindex job repairs missed documents.
func (s *ServiceImplementation) index(ctx context.Context, publishedID uint) {
	if s.indexer == nil {
		return
	}
	published, err := s.repo.FindProfile(ctx, publishedID, false)
	if err == nil {
		err = s.indexer.IndexProfile(ctx, published)
	}
	if err != nil {
		s.logger.Error("Failed to index published profile", zap.Uint("publishedID", publishedID), zap.Error(err))
	}
}

func (s *ServiceImplementation) logTransitionFailure(userID uint, action ReviewAction, err error) {
	fields := []zap.Field{zap.Uint("userID", userID), zap.String("action", string(action)), zap.Error(err)}
	if _, ok := common.IsAPIError(err); ok {
		s.logger.Warn("Review transition refused", fields...)
		return
	}
	s.logger.Error("Review transition failed", fields...)
}

// relationsChanged compares specialization sets and certificate contents.
func relationsChanged(published, draft *CoachProfile) bool {
	if published == nil {
		return len(draft.Specializations) > 0 || len(draft.Certificates) > 0
	}
	if !sameIDs(published.SpecializationIDs(), draft.SpecializationIDs()) {
		return true
	}
	return !sameCertificates(published.Certificates, draft.Certificates)
}

func sameIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	a = append([]uint(nil), a...)
	b = append([]uint(nil), b...)
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameCertificates(a, b []Certificate) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, c := range a {
		counts[certificateKey(c)]++
	}
	for _, c := range b {
		k := certificateKey(c)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}

func certificateKey(c Certificate) string {
	return fmt.Sprintf("%s\x00%s\x00%s", c.Name, common.StringValue(c.Description), c.Type)
}
