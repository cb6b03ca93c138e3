package domain

// Review is a rating and comment a user left on a book.
type Review struct {
	Entity
	UserID  string `json:"user_id"`
	BookID  string `json:"book_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is within the accepted rating range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
