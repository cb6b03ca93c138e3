package domain

import "strings"

// Book is a catalog entry. Books are not owned by any user; a user holds a
// book through a LibraryEntry.
type Book struct {
	Entity
	Title         string `json:"title"`
	Author        string `json:"author"`
	Cover         string `json:"cover,omitempty"` // stored path reference, may be empty
	CoverBlurHash string `json:"cover_blur_hash,omitempty"`
	Description   string `json:"description,omitempty"`
	Genre         string `json:"genre,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	PublishedYear int    `json:"published_year,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	Pages         int    `json:"pages,omitempty"`

	// Extra holds arbitrary descriptive fields that have no dedicated column.
	Extra map[string]any `json:"extra,omitempty"`
}

// HasCover reports whether the book references a non-blank cover image.
func (b *Book) HasCover() bool {
	return strings.TrimSpace(b.Cover) != ""
}

// CoverOrDefault returns the book's cover reference, or fallback when the
// cover is absent or blank.
func (b *Book) CoverOrDefault(fallback string) string {
	if b.HasCover() {
		return b.Cover
	}
	return fallback
}
