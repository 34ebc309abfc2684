package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookStore is the persistence collaborator for the digital library.
// Borrow must be a conditional write: of two concurrent borrowers for the
// same book, at most one succeeds.
type BookStore interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context, search string) ([]*model.Book, error)
	Borrow(ctx context.Context, id, userID string) error
	Return(ctx context.Context, id, userID string) error
}

type LibraryService struct {
	books  BookStore
	audit  *AuditService
	logger *zap.Logger
}

func NewLibraryService(books BookStore, audit *AuditService, logger *zap.Logger) *LibraryService {
	return &LibraryService{
		books:  books,
		audit:  audit,
		logger: logger,
	}
}

// List returns books, optionally filtered by a title/author search term.
func (s *LibraryService) List(ctx context.Context, search string) ([]*model.Book, error) {
	books, err := s.books.List(ctx, search)
	if err != nil {
		return nil, model.NewStorageError("list books", err)
	}
	return books, nil
}

// AddBook puts a new title on the shelf.
func (s *LibraryService) AddBook(ctx context.Context, actorID, title, author, coverImage string) (*model.Book, error) {
	if title == "" || author == "" {
		return nil, fmt.Errorf("%w: title and author are required", model.ErrInvalidInput)
	}

	book := &model.Book{
		ID:         uuid.NewString(),
		Title:      title,
		Author:     author,
		CoverImage: coverImage,
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, model.NewStorageError("create book", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, actorID, "Book Added",
			fmt.Sprintf("Added %q by %s to the library", book.Title, book.Author),
			model.AuditLevelInfo)
	}

	return book, nil
}

// ToggleBorrow borrows the book for the user, or returns it if the user is
// the current holder.
func (s *LibraryService) ToggleBorrow(ctx context.Context, userID, bookID string) (*model.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, model.NewStorageError("get book", err)
	}
	if book == nil {
		return nil, model.ErrNotFound
	}

	if book.BorrowedBy != nil && *book.BorrowedBy == userID {
		if err := s.books.Return(ctx, bookID, userID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.ErrNotFound
			}
			return nil, model.NewStorageError("return book", err)
		}
		book.BorrowedBy = nil

		if s.audit != nil {
			s.audit.Record(ctx, userID, "Book Returned",
				fmt.Sprintf("Returned %q", book.Title), model.AuditLevelInfo)
		}
		return book, nil
	}

	if err := s.books.Borrow(ctx, bookID, userID); err != nil {
		if errors.Is(err, model.ErrBookUnavailable) {
			return nil, model.ErrBookUnavailable
		}
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, model.NewStorageError("borrow book", err)
	}
	book.BorrowedBy = &userID

	if s.audit != nil {
		s.audit.Record(ctx, userID, "Book Borrowed",
			fmt.Sprintf("Borrowed %q", book.Title), model.AuditLevelInfo)
	}

	return book, nil
}
