package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
)

// Profiles implements accounts.Repository. Emails are unique.
type Profiles struct{ s *Store }

func (p *Profiles) Create(_ context.Context, a accounts.Account) (accounts.Profile, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.profiles {
		if rec.a.Email == a.Email {
			return accounts.Profile{}, accounts.ErrEmailTaken
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Role == "" {
		a.Role = accounts.RoleMember
	}
	now := s.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.profiles[a.ID] = &profileRec{a: a, updatedSeq: s.next()}
	return a.Profile, nil
}

func (p *Profiles) ByEmail(_ context.Context, email string) (accounts.Account, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.profiles {
		if rec.a.Email == email {
			return rec.a, nil
		}
	}
	return accounts.Account{}, accounts.ErrNotFound
}

func (p *Profiles) Get(_ context.Context, id string) (accounts.Profile, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.profiles[id]
	if !ok {
		return accounts.Profile{}, accounts.ErrNotFound
	}
	return rec.a.Profile, nil
}

func (p *Profiles) List(_ context.Context) ([]accounts.Profile, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*profileRec, 0, len(s.profiles))
	for _, rec := range s.profiles {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].updatedSeq > recs[j].updatedSeq })
	out := make([]accounts.Profile, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.a.Profile)
	}
	return out, nil
}

func (p *Profiles) Update(_ context.Context, id string, patch accounts.ProfilePatch) (accounts.Profile, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.profiles[id]
	if !ok {
		return accounts.Profile{}, accounts.ErrNotFound
	}
	if patch.FullName != nil {
		rec.a.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		rec.a.Phone = *patch.Phone
	}
	if patch.Address != nil {
		rec.a.Address = *patch.Address
	}
	s.touch(rec)
	return rec.a.Profile, nil
}

func (p *Profiles) SetIDCard(_ context.Context, id, url string) (accounts.Profile, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.profiles[id]
	if !ok {
		return accounts.Profile{}, accounts.ErrNotFound
	}
	rec.a.IDCardURL = &url
	s.touch(rec)
	return rec.a.Profile, nil
}

func (s *Store) touch(rec *profileRec) {
	rec.a.UpdatedAt = s.Now().UTC()
	rec.updatedSeq = s.next()
}
