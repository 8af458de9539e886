package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "workhive/database/repository/booking"
	providerRepo "workhive/database/repository/provider"
	taskRepo "workhive/database/repository/task"
	"workhive/models"
	"workhive/services/booking"
	"workhive/services/geo"
	"workhive/services/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory task+booking store guarding every write with a
// mutex, so AtomicTransition and ConvertTask honor the same compare-and-set
// contract as the Mongo repositories.
type memStore struct {
	mu       sync.Mutex
	tasks    map[string]*models.Task
	bookings map[string]*models.Booking
}

func newMemStore() *memStore {
	return &memStore{
		tasks:    make(map[string]*models.Task),
		bookings: make(map[string]*models.Booking),
	}
}

func cloneTask(t *models.Task) *models.Task {
	c := *t
	c.MatchedProviders = append([]models.MatchedProvider(nil), t.MatchedProviders...)
	return &c
}

func cloneBooking(b *models.Booking) *models.Booking {
	c := *b
	return &c
}

func (s *memStore) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Deleted {
		return nil, taskRepo.ErrNotFound
	}
	return cloneTask(t), nil
}

func (s *memStore) FindByCustomer(_ context.Context, customerID string, statuses []models.TaskStatus) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.Deleted || t.CustomerID != customerID {
			continue
		}
		if len(statuses) > 0 {
			found := false
			for _, st := range statuses {
				if t.Status == st {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *cloneTask(t))
	}
	return out, nil
}

func (s *memStore) FindByStatus(_ context.Context, status models.TaskStatus, limit int64) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.Deleted || t.Status != status {
			continue
		}
		out = append(out, *cloneTask(t))
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) AtomicTransition(_ context.Context, id string, expected, next models.TaskStatus, patch taskRepo.TransitionPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Deleted {
		return nil, taskRepo.ErrNotFound
	}
	if t.Status != expected {
		return nil, taskRepo.ErrNotApplied
	}
	t.Status = next
	t.UpdatedAt = time.Now().UTC()
	if patch.MatchedProviders != nil {
		t.MatchedProviders = append([]models.MatchedProvider(nil), *patch.MatchedProviders...)
	}
	if patch.RequestedProviderID != nil {
		t.RequestedProviderID = *patch.RequestedProviderID
	}
	if patch.MatchingStrategy != nil {
		t.MatchingStrategy = *patch.MatchingStrategy
	}
	return cloneTask(t), nil
}

func (s *memStore) AppendMatchedProvider(_ context.Context, id string, open []models.TaskStatus, entry models.MatchedProvider) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Deleted {
		return nil, taskRepo.ErrNotFound
	}
	statusOpen := false
	for _, st := range open {
		if t.Status == st {
			statusOpen = true
			break
		}
	}
	if !statusOpen || t.HasMatchedProvider(entry.ProviderID) {
		return nil, taskRepo.ErrNotApplied
	}
	t.MatchedProviders = append(t.MatchedProviders, entry)
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (s *memStore) UpdateDescriptive(_ context.Context, id string, input models.UpdateTaskInput) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Deleted {
		return nil, taskRepo.ErrNotFound
	}
	if t.Status == models.TaskStatusConverted {
		return nil, taskRepo.ErrNotApplied
	}
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Tags != nil {
		t.Tags = *input.Tags
	}
	if input.EstimatedBudget != nil {
		t.EstimatedBudget = input.EstimatedBudget
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (s *memStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Deleted {
		return taskRepo.ErrNotFound
	}
	now := time.Now().UTC()
	t.Deleted = true
	t.DeletedAt = &now
	return nil
}

func (s *memStore) Restore(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || !t.Deleted {
		return taskRepo.ErrNotFound
	}
	t.Deleted = false
	t.DeletedAt = nil
	return nil
}

// The booking half, so a real DefaultBookingService can drive conversions.

func (s *memStore) ConvertTask(_ context.Context, taskID string, b *models.Booking) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.Deleted || t.Status == models.TaskStatusConverted || t.ConvertedToBookingID != "" {
		return nil, bookingRepo.ErrTaskNotConvertible
	}
	if t.Status != models.TaskStatusRequested {
		return nil, bookingRepo.ErrTaskNotRequested
	}
	t.Status = models.TaskStatusConverted
	t.ConvertedToBookingID = b.ID
	t.UpdatedAt = time.Now().UTC()
	s.bookings[b.ID] = cloneBooking(b)
	return cloneTask(t), nil
}

func (s *memStore) findBooking(id string) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (s *memStore) FindByTask(_ context.Context, taskID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.TaskID == taskID {
			return cloneBooking(b), nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (s *memStore) FindByClient(_ context.Context, clientID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.ClientID == clientID {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

func (s *memStore) FindByProvider(_ context.Context, providerID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.ProviderID == providerID {
			out = append(out, *cloneBooking(b))
		}
	}
	return out, nil
}

func (s *memStore) CountByStatus(_ context.Context) (map[models.BookingStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.BookingStatus]int64)
	for _, b := range s.bookings {
		out[b.Status]++
	}
	return out, nil
}

// findBookingByID satisfies bookingRepo.BookingRepository.
func (s *memStore) bookingFindByID(id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findBooking(id)
}

// fakeEngine returns a configurable candidate set.
type fakeEngine struct {
	mu         sync.Mutex
	candidates []models.MatchCandidate
	err        error
}

func (f *fakeEngine) FindCandidates(_ context.Context, _ *models.Task, _ matching.Options) ([]models.MatchCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.MatchCandidate(nil), f.candidates...), f.err
}

func (f *fakeEngine) set(candidates []models.MatchCandidate, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidates, f.err = candidates, err
}

// fakeProviders serves ExpressInterest lookups.
type fakeProviders struct {
	byID map[string]*models.ProviderCandidate
}

func (f *fakeProviders) QueryNear(_ context.Context, _ providerRepo.QueryNearCriteria) ([]models.ProviderCandidate, error) {
	return nil, nil
}

func (f *fakeProviders) GetByID(_ context.Context, providerID string) (*models.ProviderCandidate, error) {
	p, ok := f.byID[providerID]
	if !ok {
		return nil, providerRepo.ErrNotFound
	}
	c := *p
	return &c, nil
}

// gatedProviders blocks every GetByID on a shared barrier, so concurrent
// callers all pass the provider lookup before any of them writes.
type gatedProviders struct {
	fakeProviders
	gate *sync.WaitGroup
}

func (g *gatedProviders) GetByID(ctx context.Context, providerID string) (*models.ProviderCandidate, error) {
	g.gate.Done()
	g.gate.Wait()
	return g.fakeProviders.GetByID(ctx, providerID)
}

func newTestService(engine *fakeEngine, store *memStore) *DefaultTaskService {
	if engine == nil {
		engine = &fakeEngine{}
	}
	return &DefaultTaskService{
		Repo:     store,
		Matching: engine,
		Converter: &booking.DefaultBookingService{
			Repo:   taskBookingRepo{store},
			Logger: zap.NewNop(),
		},
		Providers: &fakeProviders{byID: map[string]*models.ProviderCandidate{}},
		Geo:       &geo.DefaultGeoService{},
		Logger:    zap.NewNop(),
	}
}

// taskBookingRepo adapts memStore to the booking repository interface; the
// booking FindByID collides with the task one, so it is forwarded here.
type taskBookingRepo struct{ *memStore }

func (r taskBookingRepo) FindByID(_ context.Context, id string) (*models.Booking, error) {
	return r.bookingFindByID(id)
}

func (r taskBookingRepo) AtomicTransition(_ context.Context, id string, expected, next models.BookingStatus, patch bookingRepo.TransitionPatch) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status != expected {
		return nil, bookingRepo.ErrNotApplied
	}
	b.Status = next
	if patch.FinalPrice != nil {
		b.FinalPrice = patch.FinalPrice
	}
	if patch.CancelReason != nil {
		b.CancelReason = *patch.CancelReason
	}
	if patch.StartedAt != nil {
		b.StartedAt = patch.StartedAt
	}
	if patch.CompletedAt != nil {
		b.CompletedAt = patch.CompletedAt
	}
	if patch.CancelledAt != nil {
		b.CancelledAt = patch.CancelledAt
	}
	return cloneBooking(b), nil
}

func futureWindow() models.ScheduleWindow {
	start := time.Now().UTC().Add(time.Hour)
	return models.ScheduleWindow{Start: start, End: start.Add(4 * time.Hour)}
}

func seedTask(store *memStore, status models.TaskStatus, mutate ...func(*models.Task)) *models.Task {
	t := &models.Task{
		ID:               "task-1",
		CustomerID:       "cust-1",
		Title:            "Fix kitchen sink",
		Service:          models.ServiceRef{ID: "plumbing"},
		Schedule:         futureWindow(),
		Location:         models.Coordinates{Latitude: 5.6, Longitude: -0.19},
		Status:           status,
		MatchingStrategy: models.StrategyLocationOnly,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	for _, m := range mutate {
		m(t)
	}
	store.tasks[t.ID] = t
	return t
}

func withMatched(ids ...string) func(*models.Task) {
	return func(t *models.Task) {
		for i, id := range ids {
			t.MatchedProviders = append(t.MatchedProviders, models.MatchedProvider{
				ProviderID: id,
				DistanceKm: float64(i + 1),
				MatchedAt:  time.Now().UTC(),
			})
		}
	}
}

func createInput() models.CreateTaskInput {
	w := futureWindow()
	return models.CreateTaskInput{
		CustomerID:       "cust-1",
		Title:            "Fix kitchen sink",
		Service:          models.ServiceRef{ID: "plumbing"},
		ScheduleStart:    w.Start,
		ScheduleEnd:      w.End,
		CustomerLocation: models.Coordinates{Latitude: 5.6, Longitude: -0.19},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("with candidates the task comes back matched", func(t *testing.T) {
		store := newMemStore()
		engine := &fakeEngine{candidates: []models.MatchCandidate{
			{ProviderID: "p-1", DistanceKm: 2},
			{ProviderID: "p-2", DistanceKm: 7},
		}}
		svc := newTestService(engine, store)

		created, err := svc.Create(ctx, createInput())
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusMatched, created.Status)
		require.Len(t, created.MatchedProviders, 2)
		assert.Equal(t, "p-1", created.MatchedProviders[0].ProviderID)
		assert.Equal(t, models.StrategyLocationOnly, created.MatchingStrategy)
	})

	t.Run("with no candidates the task floats", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(&fakeEngine{}, store)

		created, err := svc.Create(ctx, createInput())
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusFloating, created.Status)
		assert.Empty(t, created.MatchedProviders)
	})

	t.Run("engine failure leaves the task pending", func(t *testing.T) {
		store := newMemStore()
		engine := &fakeEngine{err: errors.New("engine offline")}
		svc := newTestService(engine, store)

		created, err := svc.Create(ctx, createInput())
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusPending, created.Status)
	})

	t.Run("inverted schedule window is rejected", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(nil, store)
		input := createInput()
		input.ScheduleStart, input.ScheduleEnd = input.ScheduleEnd, input.ScheduleStart

		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, store.tasks)
	})

	t.Run("past schedule window is rejected", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(nil, store)
		input := createInput()
		input.ScheduleStart = time.Now().UTC().Add(-3 * time.Hour)
		input.ScheduleEnd = time.Now().UTC().Add(-2 * time.Hour)

		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing service reference is rejected", func(t *testing.T) {
		store := newMemStore()
		svc := newTestService(nil, store)
		input := createInput()
		input.Service = models.ServiceRef{}

		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRequestProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("moves matched to requested", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusMatched, withMatched("p-1", "p-2"))
		svc := newTestService(nil, store)

		got, err := svc.RequestProvider(ctx, "task-1", "p-2")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusRequested, got.Status)
		assert.Equal(t, "p-2", got.RequestedProviderID)
	})

	t.Run("provider outside the matched list is rejected", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusMatched, withMatched("p-1"))
		svc := newTestService(nil, store)

		_, err := svc.RequestProvider(ctx, "task-1", "p-stranger")
		assert.ErrorIs(t, err, ErrProviderNotMatched)
	})

	t.Run("floating task cannot be requested", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusFloating)
		svc := newTestService(nil, store)

		_, err := svc.RequestProvider(ctx, "task-1", "p-1")
		assert.ErrorIs(t, err, ErrProviderNotMatched)
	})

	t.Run("converted task reports already converted", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusConverted, func(t *models.Task) {
			t.ConvertedToBookingID = "bk-1"
		})
		svc := newTestService(nil, store)

		_, err := svc.RequestProvider(ctx, "task-1", "p-1")
		assert.ErrorIs(t, err, ErrAlreadyConverted)
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := newTestService(nil, newMemStore())
		_, err := svc.RequestProvider(ctx, "ghost", "p-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRespondToRequest(t *testing.T) {
	ctx := context.Background()

	seedRequested := func(store *memStore) {
		seedTask(store, models.TaskStatusRequested, withMatched("p-1", "p-2"), func(t *models.Task) {
			t.RequestedProviderID = "p-1"
		})
	}

	t.Run("accept converts the task and creates the booking", func(t *testing.T) {
		store := newMemStore()
		seedRequested(store)
		svc := newTestService(nil, store)

		converted, b, err := svc.RespondToRequest(ctx, "task-1", "p-1", true)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, models.TaskStatusConverted, converted.Status)
		assert.Equal(t, b.ID, converted.ConvertedToBookingID)
		assert.Equal(t, models.BookingStatusConfirmed, b.Status)
		assert.Equal(t, "task-1", b.TaskID)
		assert.Equal(t, "cust-1", b.ClientID)
		assert.Equal(t, "p-1", b.ProviderID)
	})

	t.Run("only the requested provider may respond", func(t *testing.T) {
		store := newMemStore()
		seedRequested(store)
		svc := newTestService(nil, store)

		_, _, err := svc.RespondToRequest(ctx, "task-1", "p-2", true)
		assert.ErrorIs(t, err, ErrProviderNotMatched)
		assert.Empty(t, store.bookings)
	})

	t.Run("reject reverts to matched and drops the provider", func(t *testing.T) {
		store := newMemStore()
		seedRequested(store)
		svc := newTestService(nil, store)

		got, b, err := svc.RespondToRequest(ctx, "task-1", "p-1", false)
		require.NoError(t, err)
		assert.Nil(t, b)
		assert.Equal(t, models.TaskStatusMatched, got.Status)
		assert.Empty(t, got.RequestedProviderID)
		require.Len(t, got.MatchedProviders, 1)
		assert.Equal(t, "p-2", got.MatchedProviders[0].ProviderID)
	})

	t.Run("response while not requested", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusMatched, withMatched("p-1"))
		svc := newTestService(nil, store)

		_, _, err := svc.RespondToRequest(ctx, "task-1", "p-1", true)
		assert.ErrorIs(t, err, ErrNotRequested)
	})

	t.Run("second accept after conversion", func(t *testing.T) {
		store := newMemStore()
		seedRequested(store)
		svc := newTestService(nil, store)

		_, _, err := svc.RespondToRequest(ctx, "task-1", "p-1", true)
		require.NoError(t, err)
		_, _, err = svc.RespondToRequest(ctx, "task-1", "p-1", true)
		assert.ErrorIs(t, err, ErrAlreadyConverted)
		assert.Len(t, store.bookings, 1)
	})
}

// Concurrent accepts of the same request must produce exactly one booking;
// every loser observes the conversion, never a partial state.
func TestConcurrentAccepts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedTask(store, models.TaskStatusRequested, withMatched("p-1"), func(t *models.Task) {
		t.RequestedProviderID = "p-1"
	})
	svc := newTestService(nil, store)

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RespondToRequest(ctx, "task-1", "p-1", true)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyConverted):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, losses)
	assert.Len(t, store.bookings, 1)

	final, err := store.FindByID(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusConverted, final.Status)
	assert.NotEmpty(t, final.ConvertedToBookingID)
}

func TestExpressInterest(t *testing.T) {
	ctx := context.Background()

	newSvcWithProvider := func(store *memStore) *DefaultTaskService {
		svc := newTestService(nil, store)
		svc.Providers = &fakeProviders{byID: map[string]*models.ProviderCandidate{
			"p-keen": {
				ProviderID:       "p-keen",
				Coordinates:      models.Coordinates{Latitude: 5.63, Longitude: -0.19},
				ActiveServiceIDs: []string{"plumbing"},
			},
		}}
		return svc
	}

	t.Run("adds the provider to a floating task", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusFloating)
		svc := newSvcWithProvider(store)

		got, err := svc.ExpressInterest(ctx, "task-1", "p-keen")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusFloating, got.Status)
		require.Len(t, got.MatchedProviders, 1)
		assert.Equal(t, "p-keen", got.MatchedProviders[0].ProviderID)
		assert.Greater(t, got.MatchedProviders[0].DistanceKm, 0.0)
	})

	t.Run("idempotent when already listed", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusMatched, withMatched("p-keen"))
		svc := newSvcWithProvider(store)

		got, err := svc.ExpressInterest(ctx, "task-1", "p-keen")
		require.NoError(t, err)
		assert.Len(t, got.MatchedProviders, 1)
	})

	t.Run("unknown provider", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusFloating)
		svc := newSvcWithProvider(store)

		_, err := svc.ExpressInterest(ctx, "task-1", "p-ghost")
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("deleted provider", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusFloating)
		svc := newSvcWithProvider(store)
		svc.Providers.(*fakeProviders).byID["p-keen"].Deleted = true

		_, err := svc.ExpressInterest(ctx, "task-1", "p-keen")
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("requested task is closed to interest", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusRequested, func(t *models.Task) {
			t.RequestedProviderID = "p-1"
		})
		svc := newSvcWithProvider(store)

		_, err := svc.ExpressInterest(ctx, "task-1", "p-keen")
		assert.ErrorIs(t, err, ErrNotOpen)
	})
}

// Two providers expressing interest at the same moment must both end up on
// the matched list; the second write may not discard the first entry.
func TestConcurrentInterest(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seedTask(store, models.TaskStatusFloating)

	gate := &sync.WaitGroup{}
	gate.Add(2)
	svc := newTestService(nil, store)
	svc.Providers = &gatedProviders{
		fakeProviders: fakeProviders{byID: map[string]*models.ProviderCandidate{
			"p-a": {
				ProviderID:       "p-a",
				Coordinates:      models.Coordinates{Latitude: 5.63, Longitude: -0.19},
				ActiveServiceIDs: []string{"plumbing"},
			},
			"p-b": {
				ProviderID:       "p-b",
				Coordinates:      models.Coordinates{Latitude: 5.65, Longitude: -0.19},
				ActiveServiceIDs: []string{"plumbing"},
			},
		}},
		gate: gate,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, id := range []string{"p-a", "p-b"} {
		wg.Add(1)
		go func(providerID string) {
			defer wg.Done()
			_, err := svc.ExpressInterest(ctx, "task-1", providerID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	final, err := store.FindByID(ctx, "task-1")
	require.NoError(t, err)
	require.Len(t, final.MatchedProviders, 2)
	seen := map[string]bool{}
	for _, m := range final.MatchedProviders {
		seen[m.ProviderID] = true
	}
	assert.True(t, seen["p-a"])
	assert.True(t, seen["p-b"])
}

func TestRematch(t *testing.T) {
	ctx := context.Background()

	t.Run("clears prior state and re-runs matching", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusMatched, withMatched("p-old"))
		engine := &fakeEngine{candidates: []models.MatchCandidate{{ProviderID: "p-new", DistanceKm: 3}}}
		svc := newTestService(engine, store)

		got, err := svc.Rematch(ctx, "task-1", models.StrategyIntelligent)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusMatched, got.Status)
		assert.Equal(t, models.StrategyIntelligent, got.MatchingStrategy)
		require.Len(t, got.MatchedProviders, 1)
		assert.Equal(t, "p-new", got.MatchedProviders[0].ProviderID)
	})

	t.Run("requested task can be rematched, dropping the request", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusRequested, withMatched("p-1"), func(t *models.Task) {
			t.RequestedProviderID = "p-1"
		})
		svc := newTestService(&fakeEngine{}, store)

		got, err := svc.Rematch(ctx, "task-1", "")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusFloating, got.Status)
		assert.Empty(t, got.RequestedProviderID)
	})

	t.Run("converted task", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusConverted)
		svc := newTestService(nil, store)

		_, err := svc.Rematch(ctx, "task-1", "")
		assert.ErrorIs(t, err, ErrAlreadyConverted)
	})

	t.Run("cancelled task", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusCancelled)
		svc := newTestService(nil, store)

		_, err := svc.Rematch(ctx, "task-1", "")
		assert.ErrorIs(t, err, ErrTerminal)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a live task", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusPending)
		svc := newTestService(nil, store)

		got, err := svc.Cancel(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusCancelled, got.Status)
	})

	t.Run("cancel is not re-applicable", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusCancelled)
		svc := newTestService(nil, store)

		_, err := svc.Cancel(ctx, "task-1")
		assert.ErrorIs(t, err, ErrTerminal)
	})

	t.Run("converted task cannot be cancelled", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusConverted)
		svc := newTestService(nil, store)

		_, err := svc.Cancel(ctx, "task-1")
		assert.ErrorIs(t, err, ErrAlreadyConverted)
	})
}

func TestLazyExpiry(t *testing.T) {
	ctx := context.Background()

	pastWindow := func(t *models.Task) {
		t.Schedule = models.ScheduleWindow{
			Start: time.Now().UTC().Add(-3 * time.Hour),
			End:   time.Now().UTC().Add(-time.Hour),
		}
	}

	t.Run("matched task past its window expires on read", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusMatched, withMatched("p-1"), pastWindow)
		svc := newTestService(nil, store)

		got, err := svc.Get(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusExpired, got.Status)
	})

	t.Run("expiry precedes a provider response", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusRequested, withMatched("p-1"), pastWindow, func(t *models.Task) {
			t.RequestedProviderID = "p-1"
		})
		svc := newTestService(nil, store)

		_, _, err := svc.RespondToRequest(ctx, "task-1", "p-1", true)
		assert.ErrorIs(t, err, ErrNotRequested)
		assert.Empty(t, store.bookings)
	})

	t.Run("pending tasks do not expire", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusPending, pastWindow)
		svc := newTestService(nil, store)

		got, err := svc.Get(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusPending, got.Status)
	})

	t.Run("converted tasks do not expire", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusConverted, pastWindow)
		svc := newTestService(nil, store)

		got, err := svc.Get(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusConverted, got.Status)
	})
}

func TestSoftDeleteAndRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a requested task cancels it first", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusRequested, withMatched("p-1"), func(t *models.Task) {
			t.RequestedProviderID = "p-1"
		})
		svc := newTestService(nil, store)

		require.NoError(t, svc.SoftDelete(ctx, "task-1"))
		_, err := svc.Get(ctx, "task-1")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, svc.Restore(ctx, "task-1"))
		got, err := svc.Get(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusCancelled, got.Status)
	})

	t.Run("converted task cannot be deleted", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusConverted)
		svc := newTestService(nil, store)

		err := svc.SoftDelete(ctx, "task-1")
		assert.ErrorIs(t, err, ErrAlreadyConverted)
	})
}

func TestPromoteFloating(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes floating tasks that now match", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusFloating)
		engine := &fakeEngine{}
		svc := newTestService(engine, store)

		// First sweep finds nobody.
		promoted, err := svc.PromoteFloating(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, promoted)

		engine.set([]models.MatchCandidate{{ProviderID: "p-1", DistanceKm: 2}}, nil)
		promoted, err = svc.PromoteFloating(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, promoted)

		got, err := svc.Get(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusMatched, got.Status)
	})

	t.Run("expired floating tasks are skipped", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusFloating, func(t *models.Task) {
			t.Schedule = models.ScheduleWindow{
				Start: time.Now().UTC().Add(-2 * time.Hour),
				End:   time.Now().UTC().Add(-time.Hour),
			}
		})
		engine := &fakeEngine{candidates: []models.MatchCandidate{{ProviderID: "p-1", DistanceKm: 2}}}
		svc := newTestService(engine, store)

		promoted, err := svc.PromoteFloating(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, promoted)

		got, err := svc.Get(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusExpired, got.Status)
	})
}

func TestUpdateDescriptive(t *testing.T) {
	ctx := context.Background()

	t.Run("patches descriptive fields", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusMatched, withMatched("p-1"))
		svc := newTestService(nil, store)

		title := "Fix kitchen sink and tap"
		got, err := svc.Update(ctx, "task-1", models.UpdateTaskInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, models.TaskStatusMatched, got.Status)
	})

	t.Run("converted task rejects updates", func(t *testing.T) {
		store := newMemStore()
		seedTask(store, models.TaskStatusConverted)
		svc := newTestService(nil, store)

		title := "too late"
		_, err := svc.Update(ctx, "task-1", models.UpdateTaskInput{Title: &title})
		assert.ErrorIs(t, err, ErrAlreadyConverted)
	})
}
