package model

import "time"

// Book is a digital-library record. BorrowedBy is nil while the book sits on
// the shelf; at most one borrower holds it at a time.
type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	CoverImage string    `json:"cover_image"`
	BorrowedBy *string   `json:"borrowed_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Available reports whether the book can be borrowed.
func (b *Book) Available() bool {
	return b.BorrowedBy == nil
}
