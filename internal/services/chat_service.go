package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

const messagePreviewRunes = 100

type ChatService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewChatService(db *gorm.DB, notifier Notifier) *ChatService {
	return &ChatService{db: db, notifier: notifier}
}

// Conversation returns the messages between the actor and otherUserID,
// oldest first, narrowed to one offer when offerID is set. Messages the
// actor received are marked read.
func (s *ChatService) Conversation(ctx context.Context, actorID, otherUserID uint, offerID *uint) ([]models.Message, error) {
	var messages []models.Message

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := chatOffer(tx, actorID, otherUserID, offerID); err != nil {
			return err
		}

		unread := tx.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherUserID, actorID, false)
		if offerID != nil {
			unread = unread.Where("offer_id = ?", *offerID)
		}
		if err := unread.Update("is_read", true).Error; err != nil {
			return fmt.Errorf("failed to mark messages read: %w", err)
		}

		q := tx.Preload("Sender").
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				actorID, otherUserID, otherUserID, actorID)
		if offerID != nil {
			q = q.Where("offer_id = ?", *offerID)
		}
		if err := q.Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
			return fmt.Errorf("failed to load messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Send stores a message from the actor to otherUserID and notifies the
// receiver.
func (s *ChatService) Send(ctx context.Context, actorID, otherUserID uint, offerID *uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newValidationError("content", "Message cannot be empty.")
	}

	var message models.Message
	var sent *models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offer, err := chatOffer(tx, actorID, otherUserID, offerID)
		if err != nil {
			return err
		}

		message = models.Message{
			SenderID:   actorID,
			ReceiverID: otherUserID,
			OfferID:    offerID,
			Content:    content,
		}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}

		var sender models.User
		if err := tx.Select("id", "username").First(&sender, actorID).Error; err != nil {
			return notFound("user", err)
		}
		message.Sender = &sender

		params := NotifyParams{
			UserID:        otherUserID,
			Type:          models.NotificationMessageReceived,
			Title:         fmt.Sprintf("New message from %s", sender.Username),
			Message:       preview(content),
			RelatedUserID: uintPtr(actorID),
		}
		if offer != nil {
			params.RelatedOfferID = uintPtr(offer.ID)
			params.RelatedListingID = uintPtr(offer.ListingID)
		}
		sent, err = s.notifier.Notify(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, sent)
	zap.L().Info("Message sent",
		zap.Uint("message_id", message.ID),
		zap.Uint("sender_id", actorID),
		zap.Uint("receiver_id", otherUserID))
	return &message, nil
}

// chatOffer checks that both users share an offer. With offerID set both
// must be parties to that offer, which is returned; otherwise any offer
// between them will do and nil is returned.
func chatOffer(tx *gorm.DB, actorID, otherUserID uint, offerID *uint) (*models.Offer, error) {
	if actorID == otherUserID {
		return nil, newValidationError("user_id", "You cannot message yourself.")
	}

	var other models.User
	if err := tx.Select("id").First(&other, otherUserID).Error; err != nil {
		return nil, notFound("user", err)
	}

	if offerID != nil {
		var offer models.Offer
		if err := tx.Preload("Listing").First(&offer, *offerID).Error; err != nil {
			return nil, notFound("offer", err)
		}
		if !offer.IsParty(actorID) || !offer.IsParty(otherUserID) {
			return nil, forbidden("You are not a party to this offer.")
		}
		return &offer, nil
	}

	var shared int64
	if err := tx.Model(&models.Offer{}).
		Joins("JOIN listings ON listings.id = offers.listing_id").
		Where("(offers.buyer_id = ? AND listings.seller_id = ?) OR (offers.buyer_id = ? AND listings.seller_id = ?)",
			actorID, otherUserID, otherUserID, actorID).
		Count(&shared).Error; err != nil {
		return nil, fmt.Errorf("failed to check offers: %w", err)
	}
	if shared == 0 {
		return nil, forbidden("You can only message users you share an offer with.")
	}
	return nil, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= messagePreviewRunes {
		return content
	}
	return string(runes[:messagePreviewRunes]) + "..."
}
