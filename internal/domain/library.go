package domain

import "time"

// LibraryEntry records that a user possesses or has borrowed a book.
// The pair (UserID, BookID) is unique.
type LibraryEntry struct {
	UserID  string    `json:"user_id"`
	BookID  string    `json:"book_id"`
	AddedAt time.Time `json:"added_at"`

	// Book is the joined catalog entry, set on composed reads.
	Book *Book `json:"book,omitempty"`
}
