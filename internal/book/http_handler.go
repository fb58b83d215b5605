package book

import (
	"bookstore/internal/httpx"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{service: service, logger: logger}
}

type listResponse struct {
	Books []Book `json:"books"`
}

type bookResponse struct {
	Book Book `json:"book"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Routes registers the book endpoints on mux.
func (h *HTTPHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("GET /books/{isbn}", h.GetByISBN)
	mux.HandleFunc("PUT /books/{isbn}", h.Update)
	mux.HandleFunc("DELETE /books/{isbn}", h.Delete)
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Books: books})
}

// GetByISBN handles GET /books/{isbn}
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	book, err := h.service.GetByISBN(r.Context(), isbn)
	if err != nil {
		h.writeError(w, r, isbn, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bookResponse{Book: book})
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	candidate, err := readBook(r)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}

	book, err := h.service.Create(r.Context(), candidate)
	if err != nil {
		h.writeError(w, r, candidate.ISBN, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bookResponse{Book: book})
}

// Update handles PUT /books/{isbn}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	candidate, err := readBook(r)
	if err != nil {
		h.writeError(w, r, isbn, err)
		return
	}

	book, err := h.service.Update(r.Context(), isbn, candidate)
	if err != nil {
		h.writeError(w, r, isbn, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bookResponse{Book: book})
}

// Delete handles DELETE /books/{isbn}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")

	if err := h.service.Delete(r.Context(), isbn); err != nil {
		h.writeError(w, r, isbn, err)
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: "Book deleted"})
}

func readBook(r *http.Request) (Book, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return Book{}, fmt.Errorf("read request body: %w", err)
	}
	return Validate(body)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, isbn string, err error) {
	var (
		validationErr *ValidationError
		tooLarge      *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validationErr):
		httpx.JSONError(w, http.StatusBadRequest, validationErr.Messages)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, fmt.Sprintf("There is no book with an isbn '%s'", isbn))
	case errors.As(err, &tooLarge):
		httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		h.logger.ErrorContext(r.Context(), "book request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFrom(r),
			"error", err,
		)
		httpx.JSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
