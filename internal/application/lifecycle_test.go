package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

type fakeApplicationRepo struct {
	mu           sync.RWMutex
	applications map[string]*domain.Application
	updateErr    error
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{applications: make(map[string]*domain.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.applications[app.ID]; exists {
		return errors.New("application already exists")
	}
	r.applications[app.ID] = app.Clone()
	return nil
}

func (r *fakeApplicationRepo) Get(ctx context.Context, applicationID string) (*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, exists := r.applications[applicationID]
	if !exists {
		return nil, nil
	}
	return app.Clone(), nil
}

func (r *fakeApplicationRepo) Update(ctx context.Context, app *domain.Application) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applications[app.ID] = app.Clone()
	return nil
}

func submittedApplication(t *testing.T, repo *fakeApplicationRepo) *domain.Application {
	t.Helper()
	app := domain.NewApplication(
		domain.CompanyInfo{
			CompanyType: "LIMITED",
			LegalName:   "Test Merchant Ltd.",
			TradeName:   "Test Merchant",
			TaxNumber:   "1234567890",
			City:        "Istanbul",
			Address:     "Test Street 1",
		},
		domain.AuthorizedPerson{
			NationalID:  "12345678901",
			FirstName:   "Ada",
			LastName:    "Tester",
			Email:       "ada@example.com",
			MobilePhone: "+905551112233",
		},
		nil,
	)
	if err := repo.Create(context.Background(), app); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return app
}

func TestLifecycleManager_StartAnalysis(t *testing.T) {
	logger := zap.NewNop().Sugar()
	repo := newFakeApplicationRepo()
	manager := NewLifecycleManager(repo, logger)
	ctx := context.Background()

	app := submittedApplication(t, repo)

	status, started, err := manager.StartAnalysis(ctx, app.ID)
	if err != nil {
		t.Fatalf("StartAnalysis() error = %v", err)
	}
	if !started {
		t.Fatal("StartAnalysis() should start the first run")
	}
	if status != domain.StatusAnalyzing {
		t.Errorf("StartAnalysis() status = %v, want %v", status, domain.StatusAnalyzing)
	}

	// second start is a no-op reporting the current status
	status, started, err = manager.StartAnalysis(ctx, app.ID)
	if err != nil {
		t.Fatalf("StartAnalysis() error = %v", err)
	}
	if started {
		t.Error("StartAnalysis() should not start a second run")
	}
	if status != domain.StatusAnalyzing {
		t.Errorf("StartAnalysis() status = %v, want %v", status, domain.StatusAnalyzing)
	}
}

func TestLifecycleManager_ConcurrentStarts(t *testing.T) {
	logger := zap.NewNop().Sugar()
	repo := newFakeApplicationRepo()
	manager := NewLifecycleManager(repo, logger)
	ctx := context.Background()

	app := submittedApplication(t, repo)

	const goroutines = 16
	startedCount := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, started, err := manager.StartAnalysis(ctx, app.ID)
			if err != nil {
				t.Errorf("StartAnalysis() error = %v", err)
				return
			}
			if started {
				mu.Lock()
				startedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if startedCount != 1 {
		t.Errorf("started count = %d, want exactly 1", startedCount)
	}
}

func TestLifecycleManager_ReadsDuringStartAnalysis(t *testing.T) {
	logger := zap.NewNop().Sugar()
	repo := newFakeApplicationRepo()
	manager := NewLifecycleManager(repo, logger)
	ctx := context.Background()

	app := submittedApplication(t, repo)

	// status polling must never observe a half-written transition: readers
	// get snapshots, writes happen on private copies under the per-id lock
	done := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 8; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				got, err := repo.Get(ctx, app.ID)
				if err != nil || got == nil {
					t.Errorf("Get() = %v, %v", got, err)
					return
				}
				switch got.Status {
				case domain.StatusSubmitted, domain.StatusAnalyzing, domain.StatusScored:
				default:
					t.Errorf("unexpected status %v", got.Status)
					return
				}
			}
		}()
	}

	var writers sync.WaitGroup
	for i := 0; i < 4; i++ {
		writers.Add(1)
		go func() {
			defer writers.Done()
			if _, _, err := manager.StartAnalysis(ctx, app.ID); err != nil {
				t.Errorf("StartAnalysis() error = %v", err)
			}
		}()
	}
	writers.Wait()

	if err := manager.MarkScored(ctx, app.ID); err != nil {
		t.Fatalf("MarkScored() error = %v", err)
	}

	close(done)
	readers.Wait()
}

func TestLifecycleManager_StartAnalysisUnknownApplication(t *testing.T) {
	logger := zap.NewNop().Sugar()
	manager := NewLifecycleManager(newFakeApplicationRepo(), logger)

	_, _, err := manager.StartAnalysis(context.Background(), "missing")
	if !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("StartAnalysis() error = %v, want ErrApplicationNotFound", err)
	}
}

func TestLifecycleManager_Transitions(t *testing.T) {
	logger := zap.NewNop().Sugar()
	repo := newFakeApplicationRepo()
	manager := NewLifecycleManager(repo, logger)
	ctx := context.Background()

	app := submittedApplication(t, repo)

	// scored before analyzing violates the state machine
	if err := manager.MarkScored(ctx, app.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("MarkScored() error = %v, want ErrInvalidTransition", err)
	}

	if _, _, err := manager.StartAnalysis(ctx, app.ID); err != nil {
		t.Fatalf("StartAnalysis() error = %v", err)
	}
	if err := manager.MarkScored(ctx, app.ID); err != nil {
		t.Fatalf("MarkScored() error = %v", err)
	}
	if err := manager.MarkReportDispatched(ctx, app.ID); err != nil {
		t.Fatalf("MarkReportDispatched() error = %v", err)
	}

	// terminal state rejects further transitions
	if err := manager.MarkFailed(ctx, app.ID, "boom"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("MarkFailed() error = %v, want ErrInvalidTransition", err)
	}
}

func TestLifecycleManager_MarkFailedFromAnalyzing(t *testing.T) {
	logger := zap.NewNop().Sugar()
	repo := newFakeApplicationRepo()
	manager := NewLifecycleManager(repo, logger)
	ctx := context.Background()

	app := submittedApplication(t, repo)

	if _, _, err := manager.StartAnalysis(ctx, app.ID); err != nil {
		t.Fatalf("StartAnalysis() error = %v", err)
	}
	if err := manager.MarkFailed(ctx, app.ID, "source registry misconfigured"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	stored, _ := repo.Get(ctx, app.ID)
	if stored.Status != domain.StatusFailed {
		t.Errorf("status = %v, want %v", stored.Status, domain.StatusFailed)
	}
	if stored.ErrorMessage != "source registry misconfigured" {
		t.Errorf("error message = %q", stored.ErrorMessage)
	}
}
