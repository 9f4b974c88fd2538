package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"zapshift/config"
	"zapshift/internal/models"
	"zapshift/internal/repository"
	"zapshift/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// recordingProvider remembers the last checkout request it was asked for.
type recordingProvider struct {
	*payment.StubProvider
	mu   sync.Mutex
	last payment.CheckoutRequest
	gets int
}

func (p *recordingProvider) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	p.mu.Lock()
	p.last = req
	p.mu.Unlock()
	return p.StubProvider.CreateCheckoutSession(ctx, req)
}

func (p *recordingProvider) GetCheckoutSession(ctx context.Context, id string) (*payment.CheckoutSession, error) {
	p.mu.Lock()
	p.gets++
	p.mu.Unlock()
	return p.StubProvider.GetCheckoutSession(ctx, id)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
}

func (p *recordingPublisher) Publish(key string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, payload)
}

type fixture struct {
	db        *gorm.DB
	parcels   *repository.ParcelRepository
	payments  *repository.PaymentRepository
	provider  *recordingProvider
	pub       *recordingPublisher
	checkout  *CheckoutService
	reconcile *ReconcileService
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	f := &fixture{
		db:       db,
		parcels:  repository.NewParcelRepository(db),
		payments: repository.NewPaymentRepository(db),
		provider: &recordingProvider{StubProvider: payment.NewStubProvider()},
		pub:      &recordingPublisher{},
	}
	site := config.SiteConfig{Domain: "https://zapshift.example"}
	f.checkout = NewCheckoutService(f.parcels, f.provider, "usd", site, zap.NewNop())
	f.reconcile = NewReconcileService(f.provider, repository.NewTransactor(db), NewNotificationService(f.pub), zap.NewNop())
	return f
}

func (f *fixture) createParcel(t *testing.T, email string, cost int64) *models.Parcel {
	t.Helper()
	p := &models.Parcel{ParcelName: "Books", SenderEmail: email, Cost: decimal.NewFromInt(cost)}
	require.NoError(t, f.parcels.Create(context.Background(), p))
	return p
}

// openPaidSession opens a checkout for p through the service and completes it
// at the stub provider, returning the session id.
func (f *fixture) openPaidSession(t *testing.T, p *models.Parcel) string {
	t.Helper()
	url, err := f.checkout.Initiate(context.Background(), CheckoutInput{
		ParcelID:    p.ID,
		ParcelName:  p.ParcelName,
		SenderEmail: p.SenderEmail,
		Cost:        p.Cost,
	})
	require.NoError(t, err)
	id := sessionIDFromURL(url)
	require.NoError(t, f.provider.MarkPaid(id))
	return id
}

func sessionIDFromURL(url string) string {
	const prefix = "https://checkout.stub.local/pay/"
	return url[len(prefix):]
}
