// File: internal/provider/memory.go
package provider

import (
	"context"
	"strings"
	"sync"
	"time"

	"nujum_backend/internal/common"
	"nujum_backend/internal/user"

	"github.com/google/uuid"
)

// MemoryProvider is the local mock backend: credentials and profiles live in
// process memory. It is the AUTH_BACKEND=memory strategy and the fake the
// session core is tested against.
type MemoryProvider struct {
	mu        sync.Mutex
	accounts  map[string]*memoryAccount // keyed by normalized email
	profiles  map[uuid.UUID]*user.User
	currentID *uuid.UUID
	events    *broadcaster

	// profileUpdateErr, when set, fails UpdateProfile. Test hook only.
	profileUpdateErr error
}

type memoryAccount struct {
	id           uuid.UUID
	passwordHash string
}

// NewMemoryProvider creates an empty in-memory identity provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]*memoryAccount),
		profiles: make(map[uuid.UUID]*user.User),
		events:   newBroadcaster(),
	}
}

var _ Provider = (*MemoryProvider)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	account, ok := p.accounts[normalizeEmail(email)]
	p.mu.Unlock()
	if !ok || !common.CheckPasswordHash(password, account.passwordHash) {
		return ErrInvalidCredentials
	}

	p.mu.Lock()
	id := account.id
	p.currentID = &id
	p.mu.Unlock()

	p.events.publish(Event{Type: EventSignedIn, UserID: id})
	return nil
}

func (p *MemoryProvider) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	normalized := normalizeEmail(email)
	hash, err := common.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[normalized]; exists {
		return uuid.Nil, ErrEmailTaken
	}

	id := uuid.New()
	now := time.Now().UTC()
	p.accounts[normalized] = &memoryAccount{id: id, passwordHash: hash}
	p.profiles[id] = &user.User{
		ID:                 id,
		Email:              normalized,
		IsVerified:         false,
		VerificationStatus: user.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return id, nil
}

func (p *MemoryProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	current := p.currentID
	p.currentID = nil
	p.mu.Unlock()

	if current != nil {
		p.events.publish(Event{Type: EventSignedOut, UserID: *current})
	}
	return ctx.Err()
}

func (p *MemoryProvider) CurrentUser(ctx context.Context) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentID == nil {
		return uuid.Nil, false, nil
	}
	return *p.currentID, true, nil
}

func (p *MemoryProvider) OnSessionChange(fn func(Event)) (unsubscribe func()) {
	return p.events.subscribe(fn)
}

func (p *MemoryProvider) GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	clone := *profile
	return &clone, nil
}

func (p *MemoryProvider) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profileUpdateErr != nil {
		return p.profileUpdateErr
	}
	profile, ok := p.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	user.ApplyRemoteFields(profile, fields)
	profile.UpdatedAt = time.Now().UTC()
	return nil
}

// FailProfileUpdates makes subsequent UpdateProfile calls fail with the given
// error. Test hook for the orphaned-identity scenario.
func (p *MemoryProvider) FailProfileUpdates(err error) {
	p.mu.Lock()
	p.profileUpdateErr = err
	p.mu.Unlock()
}
