package cached

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/cache"
	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/store"
	"github.com/wearefrancis/auth/internal/store/memory"
)

// countingStore wraps the memory store to count backend hits.
type countingStore struct {
	store.Store
	accounts *countingAccounts
}

type countingAccounts struct {
	store.AccountStore
	findByID       int
	findByUsername int
}

func newCountingStore() *countingStore {
	inner := memory.New()
	return &countingStore{
		Store:    inner,
		accounts: &countingAccounts{AccountStore: inner.Accounts()},
	}
}

func (s *countingStore) Accounts() store.AccountStore { return s.accounts }

func (a *countingAccounts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a.findByID++
	return a.AccountStore.FindByID(ctx, id)
}

func (a *countingAccounts) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	a.findByUsername++
	return a.AccountStore.FindByUsername(ctx, username)
}

func seed(t *testing.T, s store.Store) *domain.Account {
	t.Helper()
	acct := &domain.Account{
		ID:       uuid.New(),
		Username: "gibson",
		Email:    "gibson@example.org",
		Role:     domain.RoleUser,
		Enabled:  true,
	}
	if _, err := s.Accounts().Save(context.Background(), acct); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return acct
}

func TestFindByIDHitsCacheOnRepeat(t *testing.T) {
	ctx := context.Background()
	counting := newCountingStore()
	s := New(counting, cache.NewMemory(time.Minute), time.Minute)
	acct := seed(t, s)
	counting.accounts.findByID = 0

	for i := 0; i < 3; i++ {
		got, err := s.Accounts().FindByID(ctx, acct.ID)
		if err != nil {
			t.Fatalf("find %d: %v", i, err)
		}
		if got.Username != "gibson" {
			t.Errorf("username = %q", got.Username)
		}
	}
	if counting.accounts.findByID != 1 {
		t.Errorf("backend hits = %d, want 1", counting.accounts.findByID)
	}
}

func TestFindByUsernameHitsCacheOnRepeat(t *testing.T) {
	ctx := context.Background()
	counting := newCountingStore()
	s := New(counting, cache.NewMemory(time.Minute), time.Minute)
	seed(t, s)
	counting.accounts.findByUsername = 0

	for i := 0; i < 3; i++ {
		if _, err := s.Accounts().FindByUsername(ctx, "gibson"); err != nil {
			t.Fatalf("find %d: %v", i, err)
		}
	}
	if counting.accounts.findByUsername != 1 {
		t.Errorf("backend hits = %d, want 1", counting.accounts.findByUsername)
	}
}

// Un Save invalida ambas keys: el próximo lookup ve el estado nuevo.
// Esto es lo que hace que un lock se vea de inmediato en el proceso que
// lo escribió.
func TestSaveInvalidates(t *testing.T) {
	ctx := context.Background()
	s := New(newCountingStore(), cache.NewMemory(time.Minute), time.Minute)
	acct := seed(t, s)

	// poblar cache
	if _, err := s.Accounts().FindByUsername(ctx, "gibson"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	acct.Locked = true
	if _, err := s.Accounts().Save(ctx, acct); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Accounts().FindByUsername(ctx, "gibson")
	if err != nil {
		t.Fatalf("find after save: %v", err)
	}
	if !got.Locked {
		t.Error("stale cached account served after write")
	}
}

func TestDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	s := New(newCountingStore(), cache.NewMemory(time.Minute), time.Minute)
	acct := seed(t, s)

	if _, err := s.Accounts().FindByID(ctx, acct.ID); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if err := s.Accounts().Delete(ctx, acct.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Accounts().FindByID(ctx, acct.ID); err != store.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Accounts().FindByUsername(ctx, "gibson"); err != store.ErrNotFound {
		t.Errorf("by username err = %v, want ErrNotFound", err)
	}
}
