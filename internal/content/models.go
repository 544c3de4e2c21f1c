package content

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("content not found")

const DefaultFAQCategory = "Umum"

type Testimonial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" yaml:"name" validate:"required"`
	Role      string    `json:"role" yaml:"role" validate:"required"`
	Content   string    `json:"content" yaml:"content" validate:"required"`
	Image     string    `json:"image" yaml:"image"`
	Rating    int       `json:"rating" yaml:"rating" validate:"min=1,max=5"`
	CreatedAt time.Time `json:"created_at"`
}

type TestimonialPatch struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Role    *string `json:"role,omitempty" validate:"omitempty,min=1"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1"`
	Image   *string `json:"image,omitempty"`
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type FAQ struct {
	ID        string    `json:"id"`
	Question  string    `json:"question" yaml:"question" validate:"required"`
	Answer    string    `json:"answer" yaml:"answer" validate:"required"`
	Category  string    `json:"category" yaml:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type FAQPatch struct {
	Question *string `json:"question,omitempty" validate:"omitempty,min=1"`
	Answer   *string `json:"answer,omitempty" validate:"omitempty,min=1"`
	Category *string `json:"category,omitempty"`
}

func (p TestimonialPatch) Apply(t *Testimonial) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Role != nil {
		t.Role = *p.Role
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Image != nil {
		t.Image = *p.Image
	}
	if p.Rating != nil {
		t.Rating = *p.Rating
	}
}

func (p FAQPatch) Apply(f *FAQ) {
	if p.Question != nil {
		f.Question = *p.Question
	}
	if p.Answer != nil {
		f.Answer = *p.Answer
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
}
