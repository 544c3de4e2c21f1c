package content_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-vehicle-market/internal/content"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

func newService() *content.Service {
	return content.NewService(memstore.New().Content())
}

func TestTestimonials(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.CreateTestimonial(ctx, content.Testimonial{Name: "Rina", Role: "Penyewa", Content: "Mobil bersih."})
	require.NoError(t, err)
	require.Equal(t, 5, first.Rating, "rating defaults to 5")
	require.NotEmpty(t, first.ID)

	_, err = svc.CreateTestimonial(ctx, content.Testimonial{Name: "Doni", Role: "Pembeli", Content: "Proses cepat.", Rating: 4})
	require.NoError(t, err)

	ts, err := svc.Testimonials(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	require.Equal(t, "Doni", ts[0].Name, "newest first")

	rating := 3
	upd, err := svc.UpdateTestimonial(ctx, first.ID, content.TestimonialPatch{Rating: &rating})
	require.NoError(t, err)
	require.Equal(t, 3, upd.Rating)
	require.Equal(t, "Rina", upd.Name)

	bad := 6
	_, err = svc.UpdateTestimonial(ctx, first.ID, content.TestimonialPatch{Rating: &bad})
	_, ok := validation.As(err)
	require.True(t, ok)

	require.NoError(t, svc.DeleteTestimonial(ctx, first.ID))
	require.ErrorIs(t, svc.DeleteTestimonial(ctx, first.ID), content.ErrNotFound)
	_, err = svc.UpdateTestimonial(ctx, first.ID, content.TestimonialPatch{Rating: &rating})
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestCreateTestimonial_Validation(t *testing.T) {
	_, err := newService().CreateTestimonial(context.Background(), content.Testimonial{Rating: 9})
	errs, ok := validation.As(err)
	require.True(t, ok)
	require.Contains(t, errs, "name")
	require.Contains(t, errs, "role")
	require.Contains(t, errs, "content")
	require.Contains(t, errs, "rating")
}

func TestFAQs(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.CreateFAQ(ctx, content.FAQ{Question: "Apakah bisa antar?", Answer: "Bisa."})
	require.NoError(t, err)
	require.Equal(t, content.DefaultFAQCategory, a.Category)

	_, err = svc.CreateFAQ(ctx, content.FAQ{Question: "Syarat sewa?", Answer: "KTP dan SIM.", Category: "Sewa"})
	require.NoError(t, err)

	fs, err := svc.FAQs(ctx)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	require.Equal(t, a.ID, fs[0].ID, "oldest first")

	blank := "  "
	upd, err := svc.UpdateFAQ(ctx, a.ID, content.FAQPatch{Category: &blank})
	require.NoError(t, err)
	require.Equal(t, content.DefaultFAQCategory, upd.Category)

	_, err = svc.CreateFAQ(ctx, content.FAQ{Question: "Tanpa jawaban"})
	errs, ok := validation.As(err)
	require.True(t, ok)
	require.Contains(t, errs, "answer")

	require.NoError(t, svc.DeleteFAQ(ctx, a.ID))
	_, err = svc.UpdateFAQ(ctx, a.ID, content.FAQPatch{Category: &blank})
	require.ErrorIs(t, err, content.ErrNotFound)
}
