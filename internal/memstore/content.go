package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-vehicle-market/internal/content"
)

// Content implements content.Repository.
type Content struct{ s *Store }

func (c *Content) Testimonials(_ context.Context) ([]content.Testimonial, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*testimonialRec, 0, len(s.testimonials))
	for _, rec := range s.testimonials {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	out := make([]content.Testimonial, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.t)
	}
	return out, nil
}

func (c *Content) GetTestimonial(_ context.Context, id string) (content.Testimonial, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.testimonials[id]
	if !ok {
		return content.Testimonial{}, content.ErrNotFound
	}
	return rec.t, nil
}

func (c *Content) InsertTestimonial(_ context.Context, t content.Testimonial) (content.Testimonial, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = s.Now().UTC()
	s.testimonials[t.ID] = &testimonialRec{t: t, seq: s.next()}
	return t, nil
}

func (c *Content) SaveTestimonial(_ context.Context, t content.Testimonial) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.testimonials[t.ID]
	if !ok {
		return content.ErrNotFound
	}
	t.CreatedAt = rec.t.CreatedAt
	rec.t = t
	return nil
}

func (c *Content) DeleteTestimonial(_ context.Context, id string) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testimonials[id]; !ok {
		return content.ErrNotFound
	}
	delete(s.testimonials, id)
	return nil
}

func (c *Content) FAQs(_ context.Context) ([]content.FAQ, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*faqRec, 0, len(s.faqs))
	for _, rec := range s.faqs {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	out := make([]content.FAQ, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.f)
	}
	return out, nil
}

func (c *Content) GetFAQ(_ context.Context, id string) (content.FAQ, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.faqs[id]
	if !ok {
		return content.FAQ{}, content.ErrNotFound
	}
	return rec.f, nil
}

func (c *Content) InsertFAQ(_ context.Context, f content.FAQ) (content.FAQ, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = s.Now().UTC()
	s.faqs[f.ID] = &faqRec{f: f, seq: s.next()}
	return f, nil
}

func (c *Content) SaveFAQ(_ context.Context, f content.FAQ) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.faqs[f.ID]
	if !ok {
		return content.ErrNotFound
	}
	f.CreatedAt = rec.f.CreatedAt
	rec.f = f
	return nil
}

func (c *Content) DeleteFAQ(_ context.Context, id string) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.faqs[id]; !ok {
		return content.ErrNotFound
	}
	delete(s.faqs, id)
	return nil
}
