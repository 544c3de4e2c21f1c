// Package seed loads starter data (vehicles, testimonials, faqs and the first
// admin account) from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/catalog"
	"github.com/ariefcatur/go-vehicle-market/internal/content"
)

type Admin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
}

type File struct {
	Admin        *Admin                `yaml:"admin"`
	Vehicles     []catalog.Vehicle     `yaml:"vehicles"`
	Testimonials []content.Testimonial `yaml:"testimonials"`
	FAQs         []content.FAQ         `yaml:"faqs"`
}

func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("parse seed: %w", err)
	}
	return f, nil
}

// Targets are the services the seed writes through, so seeded records get
// the same validation and defaults as records created over the API.
type Targets struct {
	Catalog  *catalog.Service
	Content  *content.Service
	Accounts *accounts.Service
}

type Result struct {
	Vehicles     int  `json:"vehicles"`
	Testimonials int  `json:"testimonials"`
	FAQs         int  `json:"faqs"`
	AdminCreated bool `json:"admin_created"`
}

// Apply writes f into an empty store. Each collection is only seeded while
// its table is empty, so running Apply twice adds nothing.
func Apply(ctx context.Context, t Targets, f File, log *zap.Logger) (Result, error) {
	var res Result

	if f.Admin != nil && t.Accounts != nil {
		_, created, err := t.Accounts.EnsureAdmin(ctx, f.Admin.Email, f.Admin.Password, f.Admin.FullName)
		if err != nil {
			return res, fmt.Errorf("seed admin: %w", err)
		}
		res.AdminCreated = created
	}

	if len(f.Vehicles) > 0 && t.Catalog != nil {
		existing, err := t.Catalog.GetAll(ctx)
		if err != nil {
			return res, fmt.Errorf("seed vehicles: %w", err)
		}
		if len(existing) == 0 {
			for i, v := range f.Vehicles {
				if _, err := t.Catalog.Add(ctx, v, nil, nil); err != nil {
					return res, fmt.Errorf("seed vehicle %d (%s): %w", i, v.Name, err)
				}
				res.Vehicles++
			}
		}
	}

	if t.Content != nil {
		if err := seedTestimonials(ctx, t.Content, f.Testimonials, &res); err != nil {
			return res, err
		}
		if err := seedFAQs(ctx, t.Content, f.FAQs, &res); err != nil {
			return res, err
		}
	}

	log.Info("seed applied",
		zap.Int("vehicles", res.Vehicles),
		zap.Int("testimonials", res.Testimonials),
		zap.Int("faqs", res.FAQs),
		zap.Bool("admin_created", res.AdminCreated))
	return res, nil
}

func seedTestimonials(ctx context.Context, svc *content.Service, ts []content.Testimonial, res *Result) error {
	if len(ts) == 0 {
		return nil
	}
	existing, err := svc.Testimonials(ctx)
	if err != nil {
		return fmt.Errorf("seed testimonials: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, t := range ts {
		if _, err := svc.CreateTestimonial(ctx, t); err != nil {
			return fmt.Errorf("seed testimonial %q: %w", t.Name, err)
		}
		res.Testimonials++
	}
	return nil
}

func seedFAQs(ctx context.Context, svc *content.Service, fs []content.FAQ, res *Result) error {
	if len(fs) == 0 {
		return nil
	}
	existing, err := svc.FAQs(ctx)
	if err != nil {
		return fmt.Errorf("seed faqs: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, f := range fs {
		if _, err := svc.CreateFAQ(ctx, f); err != nil {
			return fmt.Errorf("seed faq %q: %w", f.Question, err)
		}
		res.FAQs++
	}
	return nil
}
