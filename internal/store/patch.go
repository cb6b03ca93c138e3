package store

// BookPatch lists the book columns to change. Nil fields are left untouched.
type BookPatch struct {
	Title         *string
	Author        *string
	Cover         *string
	CoverBlurHash *string
	Description   *string
	Genre         *string
	Publisher     *string
	PublishedYear *int
	ISBN          *string
	Pages         *int
	Extra         map[string]any // replaces the stored map when non-nil
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Cover == nil && p.CoverBlurHash == nil &&
		p.Description == nil && p.Genre == nil && p.Publisher == nil &&
		p.PublishedYear == nil && p.ISBN == nil && p.Pages == nil && p.Extra == nil
}

// UserPatch lists the user columns to change. Nil fields are left untouched.
// PasswordHash must already be a digest.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	Name         *string
	Phone        *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.Name == nil && p.Phone == nil
}
