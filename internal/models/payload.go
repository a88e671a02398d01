package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Coordinates is an optional geolocation attached to a Note.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NotePayload is the normalized create/update body for a Note. Optional
// fields are omitted entirely when absent from the source frontmatter.
type NotePayload struct {
	Title        string       `json:"title"`
	Text         string       `json:"text"`
	Mood         string       `json:"mood,omitempty"`
	Weather      string       `json:"weather,omitempty"`
	AllowComment *bool        `json:"allowComment,omitempty"`
	Password     string       `json:"password,omitempty"`
	PublicAt     string       `json:"publicAt,omitempty"`
	Bookmark     *bool        `json:"bookmark,omitempty"`
	Location     string       `json:"location,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	TopicID      string       `json:"topicId,omitempty"`
}

// Validate checks the payload before submission.
func (p *NotePayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required),
	)
}

// PostPayload is the normalized create/update body for a Post. CategoryID
// is required and must be resolved before the payload is sent.
type PostPayload struct {
	Title        string   `json:"title"`
	Text         string   `json:"text"`
	Slug         string   `json:"slug"`
	CategoryID   string   `json:"categoryId"`
	Tags         []string `json:"tags,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Copyright    *bool    `json:"copyright,omitempty"`
	AllowComment *bool    `json:"allowComment,omitempty"`
	Pin          *bool    `json:"pin,omitempty"`
}

// Validate checks the payload before submission.
func (p *PostPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Slug, validation.Required),
		validation.Field(&p.CategoryID, validation.Required),
	)
}
