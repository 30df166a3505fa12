package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"Bazaarly/internal/database/dbtest"
	"Bazaarly/internal/models"
	"Bazaarly/internal/pkg/ratelimit"
)

const (
	testUPIID = "pay@paytm"
	testPIN   = "1234"

	validTitle       = "Apple AirPods Pro 2nd Gen"
	validDescription = "Lightly used AirPods Pro with charging case, original box and spare ear tips."
)

var (
	verifierOnce   sync.Once
	sharedVerifier *StaticVerifier
)

func testVerifier(t *testing.T) *StaticVerifier {
	t.Helper()
	verifierOnce.Do(func() {
		v, err := NewStaticVerifier(testUPIID, testPIN)
		if err != nil {
			panic(err)
		}
		sharedVerifier = v
	})
	return sharedVerifier
}

type fakeStore struct {
	uploads   []string
	deleted   []string
	failAfter int
}

func (f *fakeStore) Upload(_ context.Context, file ImageFile, folder string) (StoredImage, error) {
	if f.failAfter > 0 && len(f.uploads) >= f.failAfter {
		return StoredImage{}, errors.New("store unavailable")
	}
	id := fmt.Sprintf("%s/%d_%s", folder, len(f.uploads)+1, file.Name)
	f.uploads = append(f.uploads, id)
	return StoredImage{URL: "https://img.test/" + id, PublicID: id}, nil
}

func (f *fakeStore) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

type testEnv struct {
	db         *gorm.DB
	store      *fakeStore
	mailer     *fakeMailer
	notifier   *NotificationService
	attempts   *ratelimit.RateLimiter
	listings   *ListingService
	moderation *ModerationService
	offers     *OfferService
	payments   *PaymentService
	disputes   *DisputeService
	search     *SearchService
	ratings    *RatingService
	chats      *ChatService
	carts      *CartService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.Open(t)
	env := &testEnv{
		db:       db,
		store:    &fakeStore{},
		mailer:   &fakeMailer{},
		attempts: ratelimit.New(3, time.Minute),
	}
	env.notifier = NewNotificationService(db, env.mailer)
	env.search = NewSearchService(db, env.notifier)
	env.listings = NewListingService(db, env.store, "listings", MaxImagesPerListing)
	env.moderation = NewModerationService(db, env.notifier, env.search)
	env.offers = NewOfferService(db, env.notifier)
	env.payments = NewPaymentService(db, env.notifier, testVerifier(t), env.attempts)
	env.disputes = NewDisputeService(db, env.notifier)
	env.ratings = NewRatingService(db)
	env.chats = NewChatService(db, env.notifier)
	env.carts = NewCartService(db)
	return env
}

func (e *testEnv) user(t *testing.T, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) category(t *testing.T, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: Slugify(name)}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

// approvedListing goes through creation and moderation like production.
func (e *testEnv) approvedListing(t *testing.T, seller models.User, title, price string) *models.Listing {
	t.Helper()
	listing, err := e.listings.CreateListing(context.Background(), seller.ID, ListingInput{
		Title:       title,
		Description: validDescription,
		Price:       decimal.RequireFromString(price),
	}, nil)
	require.NoError(t, err)

	entry := e.entryFor(t, listing.ID)
	decision, err := e.moderation.Decide(context.Background(), entry.ID, models.VerdictApprove)
	require.NoError(t, err)
	return &decision.Listing
}

func (e *testEnv) entryFor(t *testing.T, listingID uint) models.ModerationEntry {
	t.Helper()
	var entry models.ModerationEntry
	require.NoError(t, e.db.Where("listing_id = ?", listingID).First(&entry).Error)
	return entry
}

// paidOffer runs buy-now and a successful payment for buyer on listing.
func (e *testEnv) paidOffer(t *testing.T, buyer models.User, listing *models.Listing) *models.Offer {
	t.Helper()
	ctx := context.Background()
	res, err := e.offers.BuyNow(ctx, buyer.ID, listing.ID)
	require.NoError(t, err)
	_, err = e.payments.SubmitCredentials(ctx, Actor{ID: buyer.ID}, res.Offer.ID, testUPIID, testPIN)
	require.NoError(t, err)
	return res.Offer
}

func (e *testEnv) notifications(t *testing.T, userID uint, typ models.NotificationType) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("user_id = ? AND type = ?", userID, typ).Order("id").Find(&out).Error)
	return out
}

func (e *testEnv) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func requireValidationError(t *testing.T, err error, contains string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Message, contains)
}

func requireConflict(t *testing.T, err error, contains string) {
	t.Helper()
	var cerr *StateConflictError
	require.ErrorAs(t, err, &cerr)
	require.True(t, strings.Contains(cerr.Message, contains), "message %q does not contain %q", cerr.Message, contains)
}

func requirePermission(t *testing.T, err error) {
	t.Helper()
	var perr *PermissionError
	require.ErrorAs(t, err, &perr)
}
