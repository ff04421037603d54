package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"accounts-service/internal/event"
	"accounts-service/internal/model"
	"accounts-service/internal/provider"
	"accounts-service/internal/store"
	"accounts-service/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeStore struct {
	mu          sync.Mutex
	seq         uint
	users       map[string]*model.User
	profiles    map[uint]*model.ClientProfile
	accounts    map[uint]*model.Account
	verifTokens map[string]*model.VerificationToken
	resetTokens map[string]*model.PasswordResetToken
	activities  []model.ActivityLog

	failCreateAccount bool
	failCreateProfile bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]*model.User{},
		profiles:    map[uint]*model.ClientProfile{},
		accounts:    map[uint]*model.Account{},
		verifTokens: map[string]*model.VerificationToken{},
		resetTokens: map[string]*model.PasswordResetToken{},
	}
}

func (f *fakeStore) nextID() uint {
	f.seq++
	return f.seq
}

type fakeSnapshot struct {
	users       map[string]*model.User
	profiles    map[uint]*model.ClientProfile
	accounts    map[uint]*model.Account
	verifTokens map[string]*model.VerificationToken
	resetTokens map[string]*model.PasswordResetToken
	activities  []model.ActivityLog
}

func (f *fakeStore) snapshot() fakeSnapshot {
	s := fakeSnapshot{
		users:       map[string]*model.User{},
		profiles:    map[uint]*model.ClientProfile{},
		accounts:    map[uint]*model.Account{},
		verifTokens: map[string]*model.VerificationToken{},
		resetTokens: map[string]*model.PasswordResetToken{},
		activities:  append([]model.ActivityLog(nil), f.activities...),
	}
	for k, v := range f.users {
		u := *v
		s.users[k] = &u
	}
	for k, v := range f.profiles {
		p := *v
		s.profiles[k] = &p
	}
	for k, v := range f.accounts {
		a := *v
		s.accounts[k] = &a
	}
	for k, v := range f.verifTokens {
		t := *v
		s.verifTokens[k] = &t
	}
	for k, v := range f.resetTokens {
		t := *v
		s.resetTokens[k] = &t
	}
	return s
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.users = s.users
	f.profiles = s.profiles
	f.accounts = s.accounts
	f.verifTokens = s.verifTokens
	f.resetTokens = s.resetTokens
	f.activities = s.activities
}

// WithTx rolls the whole fake back when fn fails, mirroring a database
// transaction.
func (f *fakeStore) WithTx(ctx context.Context, fn func(store.Store) error) error {
	f.mu.Lock()
	snap := f.snapshot()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.restore(snap)
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.nextID()
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeStore) UpdateUserName(ctx context.Context, userID uint, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			u.Name = name
		}
	}
	return nil
}

func (f *fakeStore) MarkEmailVerified(ctx context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, u := range f.users {
		if u.ID == userID {
			u.EmailVerifiedAt = &now
		}
	}
	return nil
}

func (f *fakeStore) SoftDeleteUser(ctx context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, u := range f.users {
		if u.ID == userID {
			delete(f.users, email)
		}
	}
	return nil
}

func (f *fakeStore) ProfileByUserID(ctx context.Context, userID uint) (*model.ClientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreateProfile(ctx context.Context, p *model.ClientProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateProfile {
		return errors.New("induced profile failure")
	}
	p.ID = f.nextID()
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, userID uint, displayName, bio string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[userID]; ok {
		p.DisplayName = displayName
		p.Bio = bio
	}
	return nil
}

func (f *fakeStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SoftDeleteProfile(ctx context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, userID)
	return nil
}

func (f *fakeStore) CredentialsAccount(ctx context.Context, userID uint) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) CreateAccount(ctx context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateAccount {
		return errors.New("induced account failure")
	}
	a.ID = f.nextID()
	cp := *a
	f.accounts[a.UserID] = &cp
	return nil
}

func (f *fakeStore) UpdateAccountPassword(ctx context.Context, userID uint, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[userID]; ok {
		a.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeStore) VerificationTokenByValue(ctx context.Context, token string) (*model.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.verifTokens[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) CreateVerificationToken(ctx context.Context, t *model.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID()
	if t.Token == "" {
		t.Token = fmt.Sprintf("vt-%d", t.ID)
	}
	cp := *t
	f.verifTokens[t.Token] = &cp
	return nil
}

func (f *fakeStore) DeleteVerificationTokensByEmail(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.verifTokens {
		if t.Email == email {
			delete(f.verifTokens, k)
		}
	}
	return nil
}

func (f *fakeStore) DeleteVerificationToken(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.verifTokens {
		if t.ID == id {
			delete(f.verifTokens, k)
		}
	}
	return nil
}

func (f *fakeStore) ResetTokenByValue(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.resetTokens[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) CreateResetToken(ctx context.Context, t *model.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID()
	if t.Token == "" {
		t.Token = fmt.Sprintf("rt-%d", t.ID)
	}
	cp := *t
	f.resetTokens[t.Token] = &cp
	return nil
}

func (f *fakeStore) DeleteResetTokensByEmail(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.resetTokens {
		if t.Email == email {
			delete(f.resetTokens, k)
		}
	}
	return nil
}

func (f *fakeStore) DeleteResetToken(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.resetTokens {
		if t.ID == id {
			delete(f.resetTokens, k)
		}
	}
	return nil
}

func (f *fakeStore) CreateActivityLog(ctx context.Context, l *model.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, *l)
	return nil
}

// --- provider fake ---

type fakeProvider struct {
	name      string
	signInErr error
	signUpErr error
	signedUp  []string
	signedOut []string
}

func (f *fakeProvider) Name() string {
	if f.name == "" {
		return provider.NameLocal
	}
	return f.name
}

func (f *fakeProvider) SignIn(ctx context.Context, user *model.User) (*provider.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &provider.Session{
		Token:     "sess-" + user.Email,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password string) error {
	if f.signUpErr != nil {
		return f.signUpErr
	}
	f.signedUp = append(f.signedUp, email)
	return nil
}

func (f *fakeProvider) SignOut(ctx context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

func (f *fakeProvider) OAuthURL(social, redirectTo string) (string, error) {
	return "https://auth.example.test/authorize?provider=" + social, nil
}

// --- event sink recorder ---

type sinkRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *sinkRecorder) Emit(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *sinkRecorder) byKind(k event.Kind) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// --- helpers ---

func newTestService(t *testing.T, st *fakeStore, prov *fakeProvider) (*AuthService, *sinkRecorder) {
	t.Helper()
	sink := &sinkRecorder{}
	cfg := &config.Config{
		Token: config.TokenConfig{
			VerificationTTL:  time.Hour,
			PasswordResetTTL: time.Hour,
		},
	}
	factory := func(name string) (provider.Provider, error) {
		return prov, nil
	}
	svc := NewAuthService(st, sink, factory, cfg, zap.NewNop())
	svc.bcryptCost = bcrypt.MinCost
	return svc, sink
}

func seedUser(t *testing.T, st *fakeStore, email, password, role string, withProfile bool) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test User", Role: role}
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed hash: %v", err)
	}
	err = st.CreateAccount(context.Background(), &model.Account{
		UserID:       user.ID,
		Provider:     model.ProviderCredentials,
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	if withProfile {
		err = st.CreateProfile(context.Background(), &model.ClientProfile{
			UserID:      user.ID,
			DisplayName: user.Name,
			Username:    usernameBase(email),
		})
		if err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
	return user
}
