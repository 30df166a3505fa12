package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

// MatchNotifier reacts to a listing entering the approved state.
type MatchNotifier interface {
	NotifyMatches(ctx context.Context, listing *models.Listing) int
}

type ModerationService struct {
	db       *gorm.DB
	notifier Notifier
	matcher  MatchNotifier
}

func NewModerationService(db *gorm.DB, notifier Notifier, matcher MatchNotifier) *ModerationService {
	return &ModerationService{db: db, notifier: notifier, matcher: matcher}
}

type ModerationDecision struct {
	Entry      models.ModerationEntry
	Listing    models.Listing
	Transition ListingTransition
}

// Decide reviews a pending entry. A reviewed entry is terminal, so deciding
// it again is a conflict and nothing is re-applied.
func (s *ModerationService) Decide(ctx context.Context, entryID uint, verdict models.ModerationVerdict) (*ModerationDecision, error) {
	var target models.ListingStatus
	switch verdict {
	case models.VerdictApprove:
		target = models.ListingApproved
	case models.VerdictReject:
		target = models.ListingRejected
	default:
		return nil, newValidationError("verdict", "Verdict must be approve or reject")
	}

	var decision ModerationDecision
	var sent []*models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.ModerationEntry
		if err := tx.Preload("Listing").First(&entry, entryID).Error; err != nil {
			return notFound("moderation entry", err)
		}

		now := time.Now()
		result := tx.Model(&models.ModerationEntry{}).
			Where("id = ? AND status = ?", entry.ID, models.ModerationPending).
			Updates(map[string]any{
				"status":      models.ModerationReviewed,
				"reviewed_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update moderation entry: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return conflict(string(models.ModerationReviewed), "Moderation entry has already been reviewed")
		}
		entry.Status = models.ModerationReviewed
		entry.ReviewedAt = &now

		transition, err := applyListingStatus(ctx, tx, &entry.Listing, target)
		if err != nil {
			return err
		}

		if target == models.ListingRejected {
			listing := entry.Listing
			n, err := s.notifier.Notify(ctx, tx, NotifyParams{
				UserID:           listing.SellerID,
				Type:             models.NotificationListingRejected,
				Title:            "Listing Rejected",
				Message:          fmt.Sprintf("Your listing '%s' has been rejected. Please review the guidelines and create a new listing.", listing.Title),
				RelatedListingID: uintPtr(listing.ID),
			})
			if err != nil {
				return err
			}
			sent = append(sent, n)
		}

		decision = ModerationDecision{Entry: entry, Listing: entry.Listing, Transition: transition}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, sent...)

	zap.L().Info("Moderation decision applied",
		zap.Uint("entry_id", decision.Entry.ID),
		zap.Uint("listing_id", decision.Listing.ID),
		zap.String("from", string(decision.Transition.Old)),
		zap.String("to", string(decision.Transition.New)))

	if decision.Transition.EnteredApproved() && s.matcher != nil {
		s.matcher.NotifyMatches(ctx, &decision.Listing)
	}

	return &decision, nil
}

// ListPending returns the review queue, oldest first.
func (s *ModerationService) ListPending(ctx context.Context) ([]models.ModerationEntry, error) {
	var entries []models.ModerationEntry
	if err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Seller").
		Preload("Listing.Images").
		Where("status = ?", models.ModerationPending).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve moderation queue: %w", err)
	}
	return entries, nil
}
