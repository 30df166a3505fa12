package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

const minDisputeReasonLength = 20

type DisputeService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewDisputeService(db *gorm.DB, notifier Notifier) *DisputeService {
	return &DisputeService{db: db, notifier: notifier}
}

// FileDispute opens a dispute on a paid transaction. Buyers may only dispute
// their most recently completed purchase.
func (s *DisputeService) FileDispute(ctx context.Context, actor Actor, offerID uint, reason string) (*models.Dispute, error) {
	var dispute models.Dispute
	var sent []*models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.Preload("Listing").Preload("Payment").First(&offer, offerID).Error; err != nil {
			return notFound("transaction", err)
		}

		if !offer.IsParty(actor.ID) {
			return forbidden("You don't have permission to create a dispute for this transaction.")
		}
		if offer.Status != models.OfferAccepted {
			return conflict(string(offer.Status), "You can only create disputes for accepted transactions. This transaction is %s.", offer.Status)
		}
		if offer.Payment == nil {
			return conflict("unpaid", "Payment not found. Please complete payment first.")
		}
		if !offer.Payment.IsCompleted() {
			return conflict(string(offer.Payment.Status), "You can only create disputes for completed payments.")
		}

		reason = strings.TrimSpace(reason)
		if utf8.RuneCountInString(reason) < minDisputeReasonLength {
			return newValidationError("reason", "Please provide at least %d characters describing the issue.", minDisputeReasonLength)
		}

		var existing int64
		if err := tx.Model(&models.Dispute{}).
			Where("offer_id = ? AND reporter_id = ?", offer.ID, actor.ID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing disputes: %w", err)
		}
		if existing > 0 {
			return conflict("disputed", "You have already reported a dispute for this transaction.")
		}

		if actor.ID == offer.BuyerID {
			latest, err := latestCompletedPurchase(tx, actor.ID)
			if err != nil {
				return err
			}
			if latest == nil || latest.OfferID != offer.ID {
				return conflict("not_latest", "You can only create a dispute for your latest purchased item.")
			}
		}

		dispute = models.Dispute{
			ReporterID: actor.ID,
			OfferID:    offer.ID,
			Reason:     reason,
			Status:     models.DisputeOpen,
		}
		if err := tx.Omit("Reporter", "Offer").Create(&dispute).Error; err != nil {
			return fmt.Errorf("failed to create dispute: %w", err)
		}

		var reporter models.User
		if err := tx.Select("id", "username").First(&reporter, actor.ID).Error; err != nil {
			return notFound("user", err)
		}

		counterparty := offer.SellerID()
		if actor.ID != offer.BuyerID {
			counterparty = offer.BuyerID
		}

		n, err := s.notifier.Notify(ctx, tx, NotifyParams{
			UserID:           counterparty,
			Type:             models.NotificationDisputeReported,
			Title:            "Dispute Reported",
			Message:          fmt.Sprintf("%s has reported a dispute for transaction '%s'", reporter.Username, offer.Listing.Title),
			RelatedUserID:    uintPtr(actor.ID),
			RelatedOfferID:   uintPtr(offer.ID),
			RelatedListingID: uintPtr(offer.ListingID),
		})
		if err != nil {
			return err
		}
		sent = append(sent, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, sent...)
	zap.L().Info("Dispute filed",
		zap.Uint("dispute_id", dispute.ID),
		zap.Uint("offer_id", offerID),
		zap.Uint("reporter_id", actor.ID))
	return &dispute, nil
}

func latestCompletedPurchase(tx *gorm.DB, buyerID uint) (*models.Payment, error) {
	var payments []models.Payment
	if err := tx.
		Where("buyer_id = ? AND status = ?", buyerID, models.PaymentCompleted).
		Order("completed_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to load latest purchase: %w", err)
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

// ListMine returns the reporter's disputes, newest first.
func (s *DisputeService) ListMine(ctx context.Context, reporterID uint) ([]models.Dispute, error) {
	var disputes []models.Dispute
	if err := s.db.WithContext(ctx).
		Preload("Offer").
		Preload("Offer.Listing").
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&disputes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve disputes: %w", err)
	}
	return disputes, nil
}

// Get returns a dispute to its reporter or to staff.
func (s *DisputeService) Get(ctx context.Context, actor Actor, disputeID uint) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := s.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Offer").
		Preload("Offer.Listing").
		Preload("Offer.Buyer").
		First(&dispute, disputeID).Error; err != nil {
		return nil, notFound("dispute", err)
	}
	if dispute.ReporterID != actor.ID && !actor.IsStaff {
		return nil, forbidden("You don't have permission to view this dispute.")
	}
	return &dispute, nil
}

// ListAll is the staff view. An empty status lists every dispute.
func (s *DisputeService) ListAll(ctx context.Context, status models.DisputeStatus) ([]models.Dispute, error) {
	query := s.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Offer").
		Preload("Offer.Listing")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var disputes []models.Dispute
	if err := query.Order("created_at DESC").Order("id DESC").Find(&disputes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve disputes: %w", err)
	}
	return disputes, nil
}

// SetStatus moves open disputes to resolved or closed and returns how many
// rows changed. Disputes that are no longer open are skipped.
func (s *DisputeService) SetStatus(ctx context.Context, ids []uint, status models.DisputeStatus) (int64, error) {
	if status != models.DisputeResolved && status != models.DisputeClosed {
		return 0, newValidationError("status", "Status must be resolved or closed")
	}
	if len(ids) == 0 {
		return 0, newValidationError("ids", "At least one dispute id is required")
	}

	result := s.db.WithContext(ctx).Model(&models.Dispute{}).
		Where("id IN ? AND status = ?", ids, models.DisputeOpen).
		Updates(map[string]any{
			"status":      status,
			"resolved_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update disputes: %w", result.Error)
	}

	zap.L().Info("Disputes updated", zap.Int64("count", result.RowsAffected), zap.String("status", string(status)))
	return result.RowsAffected, nil
}
