package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
)

// envelope is the response shape shared by every endpoint:
// {"success": bool, "mensaje": string?, ...payload}.
type envelope map[string]interface{}

func respond(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR [handlers.respond] encoding response: %v", err)
	}
}

func ok(w http.ResponseWriter, payload envelope) {
	payload["success"] = true
	respond(w, http.StatusOK, payload)
}

func created(w http.ResponseWriter, payload envelope) {
	payload["success"] = true
	respond(w, http.StatusCreated, payload)
}

func fail(w http.ResponseWriter, status int, mensaje string) {
	respond(w, status, envelope{"success": false, "mensaje": mensaje})
}

// failDomain maps a service error to the envelope with the matching status.
// Unexpected errors are logged and reduced to a generic 500 message.
func failDomain(w http.ResponseWriter, err error, fallback string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fail(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, domain.ErrEmailTaken):
		fail(w, http.StatusConflict, "Este email ya está registrado. Por favor, inicia sesión o usa otro email")
	case errors.Is(err, domain.ErrInvalidCredentials):
		fail(w, http.StatusUnauthorized, "Email o contraseña incorrectos")
	case errors.Is(err, domain.ErrUserNotFound):
		fail(w, http.StatusNotFound, "Usuario no encontrado")
	case errors.Is(err, domain.ErrBookNotFound):
		fail(w, http.StatusNotFound, "Libro no encontrado")
	default:
		log.Printf("ERROR [handlers] unexpected: %v", err)
		fail(w, http.StatusInternalServerError, fallback)
	}
}
