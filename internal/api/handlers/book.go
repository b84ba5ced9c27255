package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mgarcia-dev/biblioteca-api/internal/api/middleware"
	"github.com/mgarcia-dev/biblioteca-api/internal/service"
)

type BookHandler struct {
	bookService *service.BookService
}

func NewBookHandler(bookService *service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

type CreateBookRequest struct {
	Title      string `json:"titulo"`
	Author     string `json:"autor"`
	Genre      string `json:"genero"`
	Year       int    `json:"ano_publicacion"`
	Rating     int    `json:"valoracion"`
	Comment    string `json:"comentario"`
	CoverImage string `json:"foto"`
	Summary    string `json:"resumen"`
}

// UpdateBookRequest mirrors the edit form: cover image and summary are not
// part of this path. Comment is a pointer so an explicit empty string
// clears the field while an omitted one leaves it alone.
type UpdateBookRequest struct {
	Title   string  `json:"titulo"`
	Author  string  `json:"autor"`
	Genre   string  `json:"genero"`
	Year    int     `json:"ano_publicacion"`
	Rating  int     `json:"valoracion"`
	Comment *string `json:"comentario"`
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	query := r.URL.Query()
	books, err := h.bookService.List(r.Context(), claims.Subject, service.ListBooksInput{
		Genre:  query.Get("genero"),
		Search: query.Get("buscar"),
		Sort:   query.Get("ordenar"),
	})
	if err != nil {
		failDomain(w, err, "Error al obtener los libros")
		return
	}

	ok(w, envelope{
		"total":  len(books),
		"libros": books,
	})
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	book, err := h.bookService.Get(r.Context(), claims.Subject, chi.URLParam(r, "id"))
	if err != nil {
		failDomain(w, err, "Error al obtener el libro")
		return
	}

	ok(w, envelope{"libro": book})
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	book, err := h.bookService.Create(r.Context(), claims.Subject, service.CreateBookInput{
		Title:      req.Title,
		Author:     req.Author,
		Genre:      req.Genre,
		Year:       req.Year,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CoverImage: req.CoverImage,
		Summary:    req.Summary,
	})
	if err != nil {
		failDomain(w, err, "Error al agregar el libro")
		return
	}

	created(w, envelope{
		"mensaje": "Libro agregado exitosamente",
		"libro":   book,
	})
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	book, err := h.bookService.Update(r.Context(), claims.Subject, chi.URLParam(r, "id"), service.UpdateBookInput{
		Title:   req.Title,
		Author:  req.Author,
		Genre:   req.Genre,
		Year:    req.Year,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		failDomain(w, err, "Error al actualizar el libro")
		return
	}

	ok(w, envelope{
		"mensaje": "Libro actualizado exitosamente",
		"libro":   book,
	})
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	if err := h.bookService.Delete(r.Context(), claims.Subject, chi.URLParam(r, "id")); err != nil {
		failDomain(w, err, "Error al eliminar el libro")
		return
	}

	ok(w, envelope{"mensaje": "Libro eliminado exitosamente"})
}

func (h *BookHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	stats, err := h.bookService.Stats(r.Context(), claims.Subject)
	if err != nil {
		failDomain(w, err, "Error al obtener estadísticas")
		return
	}

	ok(w, envelope{"stats": stats})
}
