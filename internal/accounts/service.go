package accounts

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

// Revocations remembers signed-out token ids until they would have expired.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	Repo       Repository
	Secret     []byte
	TTL        time.Duration
	Revoked    Revocations
	Blobs      blob.Store
	Hub        *Hub
	V          *validation.Validator
	Log        *zap.Logger
	Now        func() time.Time
	BcryptCost int
}

func NewService(repo Repository, secret string, ttl time.Duration, rev Revocations, blobs blob.Store, log *zap.Logger) *Service {
	return &Service{
		Repo:       repo,
		Secret:     []byte(secret),
		TTL:        ttl,
		Revoked:    rev,
		Blobs:      blobs,
		Hub:        NewHub(),
		V:          validation.New(),
		Log:        log,
		Now:        time.Now,
		BcryptCost: bcrypt.DefaultCost,
	}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// SignUp opens a member account and signs it in.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	in.Email = normEmail(in.Email)
	if err := s.V.Struct(in); err != nil {
		return Session{}, err
	}
	p, err := s.create(ctx, RoleMember, in.Email, in.Password, in.FullName, in.Phone, in.Address)
	if err != nil {
		return Session{}, err
	}
	return s.startSession(p)
}

func (s *Service) create(ctx context.Context, role Role, email, password, fullName, phone, address string) (Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.Create(ctx, Account{
		Profile: Profile{
			Email:    email,
			FullName: strings.TrimSpace(fullName),
			Phone:    strings.TrimSpace(phone),
			Address:  strings.TrimSpace(address),
			Role:     role,
		},
		PasswordHash: string(hash),
	})
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	a, err := s.Repo.ByEmail(ctx, normEmail(email))
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.startSession(a.Profile)
}

func (s *Service) startSession(p Profile) (Session, error) {
	tok, exp, err := issue(s.Secret, p.ID, s.Now(), s.TTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	s.Hub.Publish(Event{Type: EventSignedIn, UserID: p.ID, Profile: &p, At: s.Now()})
	return Session{Token: tok, ExpiresAt: exp, Profile: p}, nil
}

// SignOut revokes token for the rest of its lifetime.
func (s *Service) SignOut(ctx context.Context, token string) error {
	c, err := parse(s.Secret, token, s.Now())
	if err != nil {
		return err
	}
	if err := s.Revoked.Revoke(ctx, c.ID, c.ExpiresAt.Time.Sub(s.Now())); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.Hub.Publish(Event{Type: EventSignedOut, UserID: c.Subject, At: s.Now()})
	return nil
}

// CurrentSession resolves a token to its session. The profile, and with it
// the role, is always re-read from the store.
func (s *Service) CurrentSession(ctx context.Context, token string) (Session, error) {
	c, err := parse(s.Secret, token, s.Now())
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.Revoked.Revoked(ctx, c.ID)
	if err != nil {
		return Session{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Session{}, fmt.Errorf("%w: session revoked", ErrUnauthenticated)
	}
	p, err := s.Repo.Get(ctx, c.Subject)
	if errors.Is(err, ErrNotFound) {
		return Session{}, fmt.Errorf("%w: profile gone", ErrUnauthenticated)
	}
	if err != nil {
		return Session{}, err
	}
	return Session{Token: Bearer(token), ExpiresAt: c.ExpiresAt.Time, Profile: p}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.Repo.List(ctx)
}

// UpdateProfile edits name, phone and address. Members may edit only
// themselves; admins may edit anyone. Roles are not editable here or anywhere.
func (s *Service) UpdateProfile(ctx context.Context, caller Profile, id string, patch ProfilePatch) (Profile, error) {
	if caller.ID != id {
		if err := s.requireAdmin(ctx, caller.ID); err != nil {
			return Profile{}, err
		}
	}
	if err := s.V.Struct(patch); err != nil {
		return Profile{}, err
	}
	p, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return Profile{}, err
	}
	s.Hub.Publish(Event{Type: EventProfileUpdated, UserID: id, Profile: &p, At: s.Now()})
	return p, nil
}

// CreateMember opens a member account for a customer. The caller's admin
// role is re-verified against the store, not taken from the session.
func (s *Service) CreateMember(ctx context.Context, callerID string, in CreateMemberInput) (Profile, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return Profile{}, err
	}
	in.Email = normEmail(in.Email)
	if err := s.V.Struct(in); err != nil {
		return Profile{}, err
	}
	p, err := s.create(ctx, RoleMember, in.Email, in.Password, in.FullName, in.Phone, in.Address)
	if err != nil {
		return Profile{}, err
	}
	s.Log.Info("member created", zap.String("admin_id", callerID), zap.String("user_id", p.ID))
	s.Hub.Publish(Event{Type: EventMemberCreated, UserID: p.ID, Profile: &p, At: s.Now()})
	return p, nil
}

// EnsureAdmin opens an admin account unless the email is already registered.
// created is false when the account existed; its role is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, fullName string) (p Profile, created bool, err error) {
	email = normEmail(email)
	if err := s.V.Struct(SignUpInput{Email: email, Password: password, FullName: fullName}); err != nil {
		return Profile{}, false, err
	}
	a, err := s.Repo.ByEmail(ctx, email)
	if err == nil {
		return a.Profile, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, false, err
	}
	p, err = s.create(ctx, RoleAdmin, email, password, fullName, "", "")
	if err != nil {
		return Profile{}, false, err
	}
	s.Log.Info("admin account created", zap.String("user_id", p.ID))
	return p, true, nil
}

func (s *Service) requireAdmin(ctx context.Context, id string) error {
	p, err := s.Repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// UploadIDCard stores an identity document and links it to the caller.
func (s *Service) UploadIDCard(ctx context.Context, userID string, f blob.File) (Profile, error) {
	now := s.Now()
	objectPath := blob.IDCardPath(userID, f.Name, now, rand.New(rand.NewSource(now.UnixNano())))
	url, err := s.Blobs.Upload(ctx, blob.BucketIDCards, objectPath, f.Body, f.ContentType)
	if err != nil {
		return Profile{}, fmt.Errorf("upload id card: %w", err)
	}
	p, err := s.Repo.SetIDCard(ctx, userID, url)
	if err != nil {
		return Profile{}, err
	}
	s.Hub.Publish(Event{Type: EventProfileUpdated, UserID: userID, Profile: &p, At: now})
	return p, nil
}

// LogEvents writes every hub event to log until ctx ends.
func LogEvents(ctx context.Context, h *Hub, log *zap.Logger) {
	for e := range h.Subscribe(ctx) {
		log.Info("session event", zap.String("type", string(e.Type)), zap.String("user_id", e.UserID), zap.Time("at", e.At))
	}
}
