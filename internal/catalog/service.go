package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/redisx"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

// Cache holds JSON values under string keys. Implementations may be remote,
// so every miss or failure falls back to the repository.
type Cache interface {
	Load(ctx context.Context, key string, out any) (bool, error)
	Store(ctx context.Context, key string, v any, ttl time.Duration) error
	Drop(ctx context.Context, keys ...string) error
}

type Service struct {
	Repo     Repository
	Blobs    blob.Store
	Cache    Cache // optional
	CacheTTL time.Duration
	V        *validation.Validator
	Log      *zap.Logger
	Now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(repo Repository, blobs blob.Store, log *zap.Logger) *Service {
	return &Service{
		Repo:     repo,
		Blobs:    blobs,
		CacheTTL: time.Minute,
		V:        validation.New(),
		Log:      log,
		Now:      time.Now,
	}
}

func (s *Service) GetAll(ctx context.Context) ([]Vehicle, error) {
	return s.list(ctx, ListFilter{})
}

// GetAvailable lists vehicles that may be booked or bought, newest first.
func (s *Service) GetAvailable(ctx context.Context) ([]Vehicle, error) {
	return s.list(ctx, ListFilter{Status: StatusAvailable})
}

func (s *Service) list(ctx context.Context, f ListFilter) ([]Vehicle, error) {
	rows, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]Vehicle, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromRow(r))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Vehicle, error) {
	r, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	return FromRow(r), nil
}

// Snapshot returns the available-vehicle collection with its price ceiling,
// served from the cache while it is fresh.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.Cache != nil {
		var snap Snapshot
		ok, err := s.Cache.Load(ctx, redisx.KeyCatalogAvailable, &snap)
		if err != nil {
			s.Log.Warn("catalog cache load", zap.Error(err))
		}
		if ok {
			return snap, nil
		}
	}
	vs, err := s.GetAvailable(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := NewSnapshot(vs, s.Now().UTC())
	if s.Cache != nil {
		if err := s.Cache.Store(ctx, redisx.KeyCatalogAvailable, snap, s.CacheTTL); err != nil {
			s.Log.Warn("catalog cache store", zap.Error(err))
		}
	}
	return snap, nil
}

// Invalidate drops the cached snapshot. Called after every vehicle write,
// including status flips made by rentals and sales.
func (s *Service) Invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Drop(ctx, redisx.KeyCatalogAvailable); err != nil {
		s.Log.Warn("catalog cache drop", zap.Error(err))
	}
}

// Add uploads the primary image, then the gallery, then inserts the row.
// The stored gallery is the primary image, the uploads, then any provided
// gallery URLs other than the primary image.
func (s *Service) Add(ctx context.Context, v Vehicle, image *blob.File, gallery []blob.File) (Vehicle, error) {
	if err := s.V.Struct(v); err != nil {
		return Vehicle{}, err
	}
	if image != nil {
		url, err := s.UploadImage(ctx, *image)
		if err != nil {
			return Vehicle{}, err
		}
		v.Image = url
	}
	uploaded, err := s.uploadAll(ctx, gallery)
	if err != nil {
		return Vehicle{}, err
	}

	merged := make([]string, 0, 1+len(uploaded)+len(v.Gallery))
	merged = append(merged, v.Image)
	merged = append(merged, uploaded...)
	for _, u := range v.Gallery {
		if u != v.Image {
			merged = append(merged, u)
		}
	}
	v.Gallery = compact(merged)

	row, err := s.Repo.Insert(ctx, ToRow(v))
	if err != nil {
		return Vehicle{}, fmt.Errorf("add vehicle: %w", err)
	}
	s.Invalidate(ctx)
	return FromRow(row), nil
}

// Update applies a partial edit. A new primary image replaces Image; new
// gallery uploads are appended to the provided gallery.
func (s *Service) Update(ctx context.Context, id string, p Patch, image *blob.File, gallery []blob.File) (Vehicle, error) {
	if err := s.V.Struct(p); err != nil {
		return Vehicle{}, err
	}
	if image != nil {
		url, err := s.UploadImage(ctx, *image)
		if err != nil {
			return Vehicle{}, err
		}
		p.Image = &url
	}
	uploaded, err := s.uploadAll(ctx, gallery)
	if err != nil {
		return Vehicle{}, err
	}
	if len(uploaded) > 0 || p.Gallery != nil {
		p.Gallery = append(append([]string{}, p.Gallery...), uploaded...)
	}

	row, err := s.Repo.Update(ctx, id, p)
	if err != nil {
		return Vehicle{}, err
	}
	s.Invalidate(ctx)
	return FromRow(row), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// UpdateStatus is the manual admin override of a vehicle's availability.
func (s *Service) UpdateStatus(ctx context.Context, id string, st Status) error {
	if !st.Valid() {
		return validation.Errors{}.Add("status", "must be one of: tersedia disewa terjual")
	}
	if err := s.Repo.SetStatus(ctx, id, st); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// UploadImage stores one vehicle image and returns its public URL.
func (s *Service) UploadImage(ctx context.Context, f blob.File) (string, error) {
	p := blob.VehiclePath(f.Name, s.Now(), s.random())
	url, err := s.Blobs.Upload(ctx, blob.BucketVehicleImages, p, f.Body, f.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload image %s: %w", f.Name, err)
	}
	return url, nil
}

func (s *Service) uploadAll(ctx context.Context, files []blob.File) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.UploadImage(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, url)
	}
	return out, nil
}

func (s *Service) random() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(s.Now().UnixNano()))
	}
	// rand.Rand is not safe for concurrent use; hand out a derived source
	return rand.New(rand.NewSource(s.rnd.Int63()))
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
