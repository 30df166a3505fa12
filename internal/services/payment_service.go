package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
	"Bazaarly/internal/pkg/ratelimit"
)

// PaymentVerifier is the boundary where a real processor would plug in.
type PaymentVerifier interface {
	Verify(ctx context.Context, id, secret string) (bool, error)
}

// StaticVerifier accepts one fixed UPI id and PIN. The PIN is kept only as a
// bcrypt hash.
type StaticVerifier struct {
	upiID   string
	pinHash []byte
}

func NewStaticVerifier(upiID, pin string) (*StaticVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash payment PIN: %w", err)
	}
	return &StaticVerifier{upiID: normalizeUPIID(upiID), pinHash: hash}, nil
}

func (v *StaticVerifier) Verify(ctx context.Context, id, secret string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	idMatch := subtle.ConstantTimeCompare([]byte(normalizeUPIID(id)), []byte(v.upiID)) == 1
	pinMatch := bcrypt.CompareHashAndPassword(v.pinHash, []byte(secret)) == nil
	return idMatch && pinMatch, nil
}

func normalizeUPIID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

type PaymentService struct {
	db       *gorm.DB
	notifier Notifier
	verifier PaymentVerifier
	attempts *ratelimit.RateLimiter
}

// NewPaymentService wires the payment gate. attempts counts failed
// credential submissions per payment and may be nil.
func NewPaymentService(db *gorm.DB, notifier Notifier, verifier PaymentVerifier, attempts *ratelimit.RateLimiter) *PaymentService {
	return &PaymentService{db: db, notifier: notifier, verifier: verifier, attempts: attempts}
}

type PaymentResult struct {
	Payment          *models.Payment
	AlreadyCompleted bool
}

// EnsurePayment returns the offer's payment, creating a pending one the first
// time the buyer reaches the payment step.
func (s *PaymentService) EnsurePayment(ctx context.Context, actor Actor, offerID uint) (*models.Payment, error) {
	var payment *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offer, err := loadPayableOffer(tx, actor, offerID)
		if err != nil {
			return err
		}
		payment, err = getOrCreatePayment(tx, offer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// SubmitCredentials completes a pending payment when the verifier accepts
// the credentials. Completion happens once; later calls report
// AlreadyCompleted and change nothing.
func (s *PaymentService) SubmitCredentials(ctx context.Context, actor Actor, offerID uint, upiID, pin string) (*PaymentResult, error) {
	payment, err := s.EnsurePayment(ctx, actor, offerID)
	if err != nil {
		return nil, err
	}
	if payment.IsCompleted() {
		return &PaymentResult{Payment: payment, AlreadyCompleted: true}, nil
	}

	key := fmt.Sprintf("payment:%d", payment.ID)
	if s.attempts != nil && s.attempts.Blocked(key) {
		return nil, ErrTooManyAttempts
	}

	ok, err := s.verifier.Verify(ctx, upiID, pin)
	if err != nil {
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}
	if !ok {
		if s.attempts != nil {
			s.attempts.Record(key)
		}
		zap.L().Info("Payment credentials declined",
			zap.Uint("payment_id", payment.ID), zap.Uint("buyer_id", actor.ID))
		return nil, ErrInvalidCredentials
	}

	result := PaymentResult{Payment: payment}
	var sent []*models.Notification

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		txnID := newTransactionID()
		update := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			Updates(map[string]any{
				"status":         models.PaymentCompleted,
				"upi_id":         normalizeUPIID(upiID),
				"transaction_id": txnID,
				"completed_at":   now,
			})
		if update.Error != nil {
			return fmt.Errorf("failed to complete payment: %w", update.Error)
		}

		if err := tx.First(payment, payment.ID).Error; err != nil {
			return notFound("payment", err)
		}
		if update.RowsAffected == 0 {
			result.AlreadyCompleted = payment.IsCompleted()
			if !result.AlreadyCompleted {
				return conflict(string(payment.Status), "This payment is %s.", payment.Status)
			}
			return nil
		}

		var offer models.Offer
		if err := tx.Preload("Listing").Preload("Buyer").First(&offer, offerID).Error; err != nil {
			return notFound("offer", err)
		}

		n, err := s.notifier.Notify(ctx, tx, NotifyParams{
			UserID:           offer.SellerID(),
			Type:             models.NotificationPaymentReceived,
			Title:            "Payment Received!",
			Message:          fmt.Sprintf("Payment of %s has been received for '%s' from %s.", rupees(payment.Amount), offer.Listing.Title, offer.Buyer.Username),
			RelatedUserID:    uintPtr(offer.BuyerID),
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

	if s.attempts != nil {
		s.attempts.Reset(key)
	}
	s.notifier.Deliver(ctx, sent...)

	if !result.AlreadyCompleted {
		zap.L().Info("Payment completed",
			zap.Uint("payment_id", payment.ID),
			zap.Uint("offer_id", offerID),
			zap.Stringp("transaction_id", payment.TransactionID))
	}
	return &result, nil
}

// GetStatus returns the payment of an offer to its buyer or seller.
func (s *PaymentService) GetStatus(ctx context.Context, actor Actor, offerID uint) (*models.Payment, error) {
	var offer models.Offer
	if err := s.db.WithContext(ctx).Preload("Listing").Preload("Payment").First(&offer, offerID).Error; err != nil {
		return nil, notFound("offer", err)
	}
	if !offer.IsParty(actor.ID) {
		return nil, forbidden("You don't have permission to view this payment.")
	}
	if offer.Payment == nil {
		return nil, &NotFoundError{Resource: "payment"}
	}
	return offer.Payment, nil
}

func loadPayableOffer(tx *gorm.DB, actor Actor, offerID uint) (*models.Offer, error) {
	var offer models.Offer
	if err := tx.Preload("Listing").First(&offer, offerID).Error; err != nil {
		return nil, notFound("offer", err)
	}
	if offer.BuyerID != actor.ID {
		return nil, forbidden("You don't have permission to pay for this offer.")
	}
	if offer.Status != models.OfferAccepted {
		return nil, conflict(string(offer.Status), "You can only pay for accepted offers. This offer is %s.", offer.Status)
	}
	return &offer, nil
}

func newTransactionID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TXN" + strings.ToUpper(raw[:12])
}
