package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/mgarcia-dev/biblioteca-api/internal/api/middleware"
	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
	"github.com/mgarcia-dev/biblioteca-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	FullName string `json:"nombreCompleto"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"passwordActual"`
	NewPassword     string `json:"passwordNueva"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		respond(w, http.StatusBadRequest, envelope{
			"success": false,
			"mensaje": "Todos los campos son obligatorios",
			"campos":  missingFields(req.FullName, req.Email, req.Password),
		})
		return
	}

	profile, err := h.authService.Register(r.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		failDomain(w, err, "Error en el servidor. Por favor, intenta nuevamente")
		return
	}

	created(w, envelope{
		"mensaje": "Usuario registrado exitosamente. Ahora puedes iniciar sesión",
		"usuario": envelope{
			"nombreCompleto": profile.FullName,
			"email":          profile.Email,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	if req.Email == "" || req.Password == "" {
		respond(w, http.StatusBadRequest, envelope{
			"success": false,
			"mensaje": "Email y contraseña son obligatorios",
			"campos": envelope{
				"email":    requiredField(req.Email, "El email es requerido"),
				"password": requiredField(req.Password, "La contraseña es requerida"),
			},
		})
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		failDomain(w, err, "Error en el servidor. Por favor, intenta nuevamente")
		return
	}

	mensaje := "Login exitoso"
	if result.Profile.IsAdmin {
		mensaje = "Login exitoso como administrador"
	}

	ok(w, envelope{
		"mensaje": mensaje,
		"token":   result.Token,
		"usuario": result.Profile,
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), claims.Subject)
	if err != nil {
		failDomain(w, err, "Error al obtener datos del usuario")
		return
	}

	ok(w, envelope{"usuario": profile})
}

func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), claims.Subject)
	if err != nil {
		failDomain(w, err, "Error al obtener datos del dashboard")
		return
	}

	ok(w, envelope{
		"mensaje": fmt.Sprintf("Bienvenido/a, %s", profile.FullName),
		"usuario": envelope{
			"nombreCompleto": profile.FullName,
			"email":          profile.Email,
			"miembroDesde":   profile.CreatedAt,
			"ultimoAcceso":   profile.LastAccessAt,
		},
	})
}

// Logout has no server-side effect: tokens are stateless and invalidation
// is the client discarding its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, found := middleware.GetClaims(r.Context()); found {
		log.Printf("user logged out: %s", claims.Email)
	}
	ok(w, envelope{"mensaje": "Sesión cerrada exitosamente"})
}

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	ok(w, envelope{
		"mensaje": "Token válido",
		"userId":  claims.Subject,
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, found := middleware.GetClaims(r.Context())
	if !found {
		fail(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}

	err := h.authService.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			fail(w, http.StatusUnauthorized, "La contraseña actual es incorrecta")
			return
		}
		failDomain(w, err, "Error al cambiar la contraseña")
		return
	}

	ok(w, envelope{"mensaje": "Contraseña actualizada exitosamente"})
}

func missingFields(fullName, email, password string) envelope {
	return envelope{
		"nombreCompleto": requiredField(fullName, "El nombre completo es requerido"),
		"email":          requiredField(email, "El email es requerido"),
		"password":       requiredField(password, "La contraseña es requerida"),
	}
}

func requiredField(value, message string) interface{} {
	if value == "" {
		return message
	}
	return nil
}
