package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Testimonials are listed newest first.
	Testimonials(ctx context.Context) ([]Testimonial, error)
	GetTestimonial(ctx context.Context, id string) (Testimonial, error)
	InsertTestimonial(ctx context.Context, t Testimonial) (Testimonial, error)
	SaveTestimonial(ctx context.Context, t Testimonial) error
	DeleteTestimonial(ctx context.Context, id string) error

	// FAQs are listed oldest first.
	FAQs(ctx context.Context) ([]FAQ, error)
	GetFAQ(ctx context.Context, id string) (FAQ, error)
	InsertFAQ(ctx context.Context, f FAQ) (FAQ, error)
	SaveFAQ(ctx context.Context, f FAQ) error
	DeleteFAQ(ctx context.Context, id string) error
}

type PGRepo struct{ DB *pgxpool.Pool }

const (
	testimonialColumns = `id, name, role, content, image, rating, created_at`
	faqColumns         = `id, question, answer, category, created_at`
)

func scanTestimonial(row pgx.Row) (Testimonial, error) {
	var t Testimonial
	err := row.Scan(&t.ID, &t.Name, &t.Role, &t.Content, &t.Image, &t.Rating, &t.CreatedAt)
	return t, err
}

func scanFAQ(row pgx.Row) (FAQ, error) {
	var f FAQ
	err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.Category, &f.CreatedAt)
	return f, err
}

func (p *PGRepo) Testimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := p.DB.Query(ctx, `SELECT `+testimonialColumns+` FROM testimonials ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()
	out := []Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *PGRepo) GetTestimonial(ctx context.Context, id string) (Testimonial, error) {
	t, err := scanTestimonial(p.DB.QueryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Testimonial{}, ErrNotFound
	}
	return t, err
}

func (p *PGRepo) InsertTestimonial(ctx context.Context, t Testimonial) (Testimonial, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	out, err := scanTestimonial(p.DB.QueryRow(ctx, `
		INSERT INTO testimonials (id, name, role, content, image, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+testimonialColumns, t.ID, t.Name, t.Role, t.Content, t.Image, t.Rating))
	if err != nil {
		return Testimonial{}, fmt.Errorf("insert testimonial: %w", err)
	}
	return out, nil
}

func (p *PGRepo) SaveTestimonial(ctx context.Context, t Testimonial) error {
	tag, err := p.DB.Exec(ctx, `
		UPDATE testimonials SET name = $2, role = $3, content = $4, image = $5, rating = $6
		WHERE id = $1`, t.ID, t.Name, t.Role, t.Content, t.Image, t.Rating)
	if err != nil {
		return fmt.Errorf("update testimonial %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGRepo) DeleteTestimonial(ctx context.Context, id string) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete testimonial %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGRepo) FAQs(ctx context.Context) ([]FAQ, error) {
	rows, err := p.DB.Query(ctx, `SELECT `+faqColumns+` FROM faqs ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer rows.Close()
	out := []FAQ{}
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (p *PGRepo) GetFAQ(ctx context.Context, id string) (FAQ, error) {
	f, err := scanFAQ(p.DB.QueryRow(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return FAQ{}, ErrNotFound
	}
	return f, err
}

func (p *PGRepo) InsertFAQ(ctx context.Context, f FAQ) (FAQ, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	out, err := scanFAQ(p.DB.QueryRow(ctx, `
		INSERT INTO faqs (id, question, answer, category) VALUES ($1, $2, $3, $4)
		RETURNING `+faqColumns, f.ID, f.Question, f.Answer, f.Category))
	if err != nil {
		return FAQ{}, fmt.Errorf("insert faq: %w", err)
	}
	return out, nil
}

func (p *PGRepo) SaveFAQ(ctx context.Context, f FAQ) error {
	tag, err := p.DB.Exec(ctx, `UPDATE faqs SET question = $2, answer = $3, category = $4 WHERE id = $1`,
		f.ID, f.Question, f.Answer, f.Category)
	if err != nil {
		return fmt.Errorf("update faq %s: %w", f.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGRepo) DeleteFAQ(ctx context.Context, id string) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faq %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
