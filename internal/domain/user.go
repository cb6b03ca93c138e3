package domain

// User is a registered account of the library application.
//
// Library and Reviews are only populated by composed reads (a single user
// fetched with its relations); listings leave them nil.
type User struct {
	Entity
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // bcrypt digest, never the plaintext
	Name         string         `json:"name"`
	Phone        string         `json:"phone,omitempty"`
	Library      []LibraryEntry `json:"library,omitempty"`
	Reviews      []Review       `json:"reviews,omitempty"`
}

// HasBook reports whether bookID is part of the user's loaded library.
func (u *User) HasBook(bookID string) bool {
	for _, entry := range u.Library {
		if entry.BookID == bookID {
			return true
		}
	}
	return false
}

// BookIDs returns the ids of the books in the user's loaded library, in library order.
func (u *User) BookIDs() []string {
	ids := make([]string, 0, len(u.Library))
	for _, entry := range u.Library {
		ids = append(ids, entry.BookID)
	}
	return ids
}
