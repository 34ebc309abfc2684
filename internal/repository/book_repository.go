package repository

import (
	"context"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

// Create inserts a new library book.
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, title, author, cover_image)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.CoverImage,
	).Scan(&book.CreatedAt)

	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	return nil
}

// GetByID returns the book or nil when missing.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*model.Book, error) {
	query := `
		SELECT id, title, author, cover_image, borrowed_by, created_at
		FROM books
		WHERE id = $1
	`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.CoverImage,
		&book.BorrowedBy,
		&book.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get book by id: %w", err)
	}

	return &book, nil
}

// List returns books ordered by title, optionally filtered by a title/author
// substring match.
func (r *BookRepository) List(ctx context.Context, search string) ([]*model.Book, error) {
	query := `
		SELECT id, title, author, cover_image, borrowed_by, created_at
		FROM books
		WHERE $1 = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%'
		ORDER BY title
	`

	rows, err := r.pool.Query(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		var book model.Book
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.CoverImage,
			&book.BorrowedBy,
			&book.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, &book)
	}

	return books, nil
}

// Borrow marks the book as held by the user. The conditional write keeps
// two concurrent borrowers from both succeeding.
func (r *BookRepository) Borrow(ctx context.Context, id, userID string) error {
	query := `
		UPDATE books
		SET borrowed_by = $2
		WHERE id = $1 AND borrowed_by IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("borrow book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrBookUnavailable
	}

	return nil
}

// Return puts the book back on the shelf, only for its current borrower.
func (r *BookRepository) Return(ctx context.Context, id, userID string) error {
	query := `
		UPDATE books
		SET borrowed_by = NULL
		WHERE id = $1 AND borrowed_by = $2
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("return book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// CountBorrowed returns how many books are currently out.
func (r *BookRepository) CountBorrowed(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE borrowed_by IS NOT NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count borrowed books: %w", err)
	}
	return n, nil
}
