package book

import (
	"context"
	"log/slog"
)

// Service provides book-related business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new book service. A nil logger falls back to slog.Default.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger.With("component", "book")}
}

// List returns every stored book.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// GetByISBN returns a book by its ISBN.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

// Create stores a new book.
func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return Book{}, err
	}
	s.logger.InfoContext(ctx, "book created", "isbn", created.ISBN)
	return created, nil
}

// Update overwrites every field of the book stored under isbn. The isbn
// argument wins over b.ISBN; books are never re-keyed.
func (s *Service) Update(ctx context.Context, isbn string, b Book) (Book, error) {
	b.ISBN = isbn
	updated, err := s.repo.Update(ctx, isbn, b)
	if err != nil {
		return Book{}, err
	}
	s.logger.InfoContext(ctx, "book updated", "isbn", isbn)
	return updated, nil
}

// Delete removes the book stored under isbn.
func (s *Service) Delete(ctx context.Context, isbn string) error {
	if err := s.repo.Delete(ctx, isbn); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "book deleted", "isbn", isbn)
	return nil
}
