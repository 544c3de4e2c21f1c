package content

import (
	"context"
	"strings"

	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

type Service struct {
	Repo Repository
	V    *validation.Validator
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo, V: validation.New()}
}

func (s *Service) Testimonials(ctx context.Context) ([]Testimonial, error) {
	return s.Repo.Testimonials(ctx)
}

func (s *Service) CreateTestimonial(ctx context.Context, t Testimonial) (Testimonial, error) {
	if t.Rating == 0 {
		t.Rating = 5
	}
	if err := s.V.Struct(t); err != nil {
		return Testimonial{}, err
	}
	return s.Repo.InsertTestimonial(ctx, t)
}

func (s *Service) UpdateTestimonial(ctx context.Context, id string, p TestimonialPatch) (Testimonial, error) {
	if err := s.V.Struct(p); err != nil {
		return Testimonial{}, err
	}
	t, err := s.Repo.GetTestimonial(ctx, id)
	if err != nil {
		return Testimonial{}, err
	}
	p.Apply(&t)
	if err := s.Repo.SaveTestimonial(ctx, t); err != nil {
		return Testimonial{}, err
	}
	return t, nil
}

func (s *Service) DeleteTestimonial(ctx context.Context, id string) error {
	return s.Repo.DeleteTestimonial(ctx, id)
}

func (s *Service) FAQs(ctx context.Context) ([]FAQ, error) {
	return s.Repo.FAQs(ctx)
}

func (s *Service) CreateFAQ(ctx context.Context, f FAQ) (FAQ, error) {
	if strings.TrimSpace(f.Category) == "" {
		f.Category = DefaultFAQCategory
	}
	if err := s.V.Struct(f); err != nil {
		return FAQ{}, err
	}
	return s.Repo.InsertFAQ(ctx, f)
}

func (s *Service) UpdateFAQ(ctx context.Context, id string, p FAQPatch) (FAQ, error) {
	if err := s.V.Struct(p); err != nil {
		return FAQ{}, err
	}
	f, err := s.Repo.GetFAQ(ctx, id)
	if err != nil {
		return FAQ{}, err
	}
	p.Apply(&f)
	if strings.TrimSpace(f.Category) == "" {
		f.Category = DefaultFAQCategory
	}
	if err := s.Repo.SaveFAQ(ctx, f); err != nil {
		return FAQ{}, err
	}
	return f, nil
}

func (s *Service) DeleteFAQ(ctx context.Context, id string) error {
	return s.Repo.DeleteFAQ(ctx, id)
}
