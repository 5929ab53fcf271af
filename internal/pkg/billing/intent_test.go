package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
)

type fakeUserStore struct {
	users map[uint]*models.User
}

func (s *fakeUserStore) GetByID(id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePlanStore struct {
	plans map[uint]*models.Plan
}

func (s *fakePlanStore) GetByID(id uint) (*models.Plan, error) {
	if p, ok := s.plans[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeProcessor counts processor-side object creation so tests can assert
// the idempotence contract: retrying never creates a second object.
type fakeProcessor struct {
	customers     atomic.Int64
	subscriptions atomic.Int64
	failSub       error
}

func (p *fakeProcessor) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	n := p.customers.Add(1)
	return fmt.Sprintf("cus_%d", n), nil
}

func (p *fakeProcessor) CreateSubscription(ctx context.Context, customerID string, plan *models.Plan) (*ProcessorSubscription, error) {
	if p.failSub != nil {
		return nil, p.failSub
	}
	n := p.subscriptions.Add(1)
	return &ProcessorSubscription{
		ID:           fmt.Sprintf("sub_%d", n),
		CustomerID:   customerID,
		Status:       "incomplete",
		ClientSecret: fmt.Sprintf("pi_secret_%d", n),
	}, nil
}

func newIntentFixture() (*IntentManager, *fakeRepo, *fakeProcessor) {
	repo := newFakeRepo()
	processor := &fakeProcessor{}
	users := &fakeUserStore{users: map[uint]*models.User{
		1: {ID: 1, Name: "Ada Example", Email: "ada@example.com"},
		2: {ID: 2, Name: "No Mail"},
	}}
	plans := &fakePlanStore{plans: map[uint]*models.Plan{
		10: {ID: 10, Slug: "investor", AmountCents: 2900, Currency: "usd", Interval: models.PlanIntervalMonth, IsActive: true},
		11: {ID: 11, Slug: "retired", AmountCents: 900, Currency: "usd", Interval: models.PlanIntervalMonth, IsActive: false},
	}}
	return NewIntentManager(repo, users, plans, processor, newKeyedMutex()), repo, processor
}

func TestCreateOrGetSubscriptionCreatesOnce(t *testing.T) {
	mgr, repo, processor := newIntentFixture()
	ctx := context.Background()

	first, err := mgr.CreateOrGetSubscription(ctx, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, first.SubscriptionID)
	require.NotEmpty(t, first.ClientSecret)

	second, err := mgr.CreateOrGetSubscription(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first.SubscriptionID, second.SubscriptionID)
	assert.Equal(t, first.ClientSecret, second.ClientSecret)

	assert.EqualValues(t, 1, processor.customers.Load())
	assert.EqualValues(t, 1, processor.subscriptions.Load())

	sub, err := repo.GetSubscriptionByStripeID(first.SubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusIncomplete, sub.Status)
	assert.Equal(t, first.ClientSecret, sub.ClientSecret)
}

func TestCreateOrGetSubscriptionConcurrentRetries(t *testing.T) {
	mgr, _, processor := newIntentFixture()
	ctx := context.Background()

	const attempts = 8
	results := make([]string, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			intent, err := mgr.CreateOrGetSubscription(ctx, 1, 10)
			if err != nil {
				t.Errorf("attempt %d: %v", i, err)
				return
			}
			results[i] = intent.SubscriptionID
		}(i)
	}
	wg.Wait()

	for i := 1; i < attempts; i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.EqualValues(t, 1, processor.subscriptions.Load(), "double-submit must not create a second processor subscription")
	assert.EqualValues(t, 1, processor.customers.Load())
}

func TestCreateOrGetSubscriptionValidation(t *testing.T) {
	mgr, _, processor := newIntentFixture()
	ctx := context.Background()

	_, err := mgr.CreateOrGetSubscription(ctx, 99, 10)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "user", nfErr.Resource)

	_, err = mgr.CreateOrGetSubscription(ctx, 2, 10)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = mgr.CreateOrGetSubscription(ctx, 1, 99)
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "plan", nfErr.Resource)

	// Inactive plans are indistinguishable from missing ones.
	_, err = mgr.CreateOrGetSubscription(ctx, 1, 11)
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "plan", nfErr.Resource)

	assert.EqualValues(t, 0, processor.customers.Load(), "validation failures must not touch the processor")
}

func TestCreateOrGetSubscriptionUpstreamFailure(t *testing.T) {
	mgr, repo, processor := newIntentFixture()
	ctx := context.Background()

	processor.failSub = &UpstreamError{Op: "subscription create", Err: errors.New("api down")}
	_, err := mgr.CreateOrGetSubscription(ctx, 1, 10)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)

	// The customer link survives the failed attempt and is reused on retry.
	customer, err := repo.GetCustomerByUser(1)
	require.NoError(t, err)

	processor.failSub = nil
	intent, err := mgr.CreateOrGetSubscription(ctx, 1, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, intent.SubscriptionID)
	assert.EqualValues(t, 1, processor.customers.Load())

	reused, err := repo.GetCustomerByUser(1)
	require.NoError(t, err)
	assert.Equal(t, customer.StripeCustomerID, reused.StripeCustomerID)
}

func TestCreateOrGetSubscriptionAfterCancellation(t *testing.T) {
	mgr, repo, processor := newIntentFixture()
	ctx := context.Background()

	first, err := mgr.CreateOrGetSubscription(ctx, 1, 10)
	require.NoError(t, err)

	sub, err := repo.GetSubscriptionByStripeID(first.SubscriptionID)
	require.NoError(t, err)
	sub.Status = models.SubscriptionStatusCanceled
	require.NoError(t, repo.SaveSubscription(sub))

	second, err := mgr.CreateOrGetSubscription(ctx, 1, 10)
	require.NoError(t, err)
	assert.NotEqual(t, first.SubscriptionID, second.SubscriptionID, "canceled subscription must not be reused")
	assert.EqualValues(t, 2, processor.subscriptions.Load())
	assert.EqualValues(t, 1, processor.customers.Load(), "customer link is created once per user")
}
