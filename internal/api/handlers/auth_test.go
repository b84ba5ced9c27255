package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mgarcia-dev/biblioteca-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"nombreCompleto": "Laura Gómez",
				"email":          "laura@example.com",
				"password":       "Secreta123",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result struct {
					Success bool `json:"success"`
					Usuario struct {
						FullName string `json:"nombreCompleto"`
						Email    string `json:"email"`
					} `json:"usuario"`
				}
				testutil.AssertJSONResponse(t, resp, &result)
				assert.True(t, result.Success)
				assert.Equal(t, "Laura Gómez", result.Usuario.FullName)
				assert.Equal(t, "laura@example.com", result.Usuario.Email)
			},
		},
		{
			name: "missing fields include per-field detail",
			request: map[string]string{
				"email": "laura@example.com",
			},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result struct {
					Success bool                   `json:"success"`
					Campos  map[string]interface{} `json:"campos"`
				}
				testutil.AssertJSONResponse(t, resp, &result)
				assert.False(t, result.Success)
				assert.NotNil(t, result.Campos["nombreCompleto"])
				assert.Nil(t, result.Campos["email"])
			},
		},
		{
			name: "weak password",
			request: map[string]string{
				"nombreCompleto": "Laura Gómez",
				"email":          "laura@example.com",
				"password":       "secreta",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"nombreCompleto": "Laura Bis",
				"email":          "registrada@example.com",
				"password":       "Secreta123",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("registrada@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := doJSON(t, http.MethodPost, ts.APIURL("/register"), "", tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("acceso@example.com").
		WithPassword("Correcta123").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful login",
			request: map[string]string{
				"email":    user.Email,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.LoginResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.True(t, result.Success)
				assert.NotEmpty(t, result.Token)
				assert.Equal(t, user.ID.String(), result.Usuario.ID)
			},
		},
		{
			name: "superuser login",
			request: map[string]string{
				"email":    "admin",
				"password": "1234",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.LoginResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.True(t, result.Usuario.IsAdmin)
				assert.Equal(t, "admin-special", result.Usuario.ID)
			},
		},
		{
			name: "wrong password",
			request: map[string]string{
				"email":    user.Email,
				"password": "Incorrecta123",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown email gets the same generic error",
			request: map[string]string{
				"email":    "nadie@example.com",
				"password": "Correcta123",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "missing password",
			request: map[string]string{
				"email": user.Email,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.APIURL("/login"), "", tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_ProtectedRoutes(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().
		WithFullName("Pedro Navarro").
		WithEmail("pedro@example.com").
		BuildAndLogin(t, ts)

	t.Run("profile with valid token", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.APIURL("/profile"), token, nil)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Success bool `json:"success"`
			Usuario struct {
				ID       string `json:"id"`
				FullName string `json:"nombreCompleto"`
				Email    string `json:"email"`
			} `json:"usuario"`
		}
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, user.ID.String(), result.Usuario.ID)
		assert.Equal(t, "Pedro Navarro", result.Usuario.FullName)
	})

	t.Run("usuario alias serves the same view", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.APIURL("/usuario"), token, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("dashboard greets by name", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.APIURL("/dashboard"), token, nil)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Mensaje string `json:"mensaje"`
		}
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, "Bienvenido/a, Pedro Navarro", result.Mensaje)
	})

	t.Run("verify-token returns the subject", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.APIURL("/verify-token"), token, nil)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Success bool   `json:"success"`
			UserID  string `json:"userId"`
		}
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, user.ID.String(), result.UserID)
	})

	t.Run("logout succeeds without server-side state", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.APIURL("/logout"), token, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// The token still works afterwards; discarding it is up to the client
		again := doJSON(t, http.MethodGet, ts.APIURL("/profile"), token, nil)
		defer again.Body.Close()
		assert.Equal(t, http.StatusOK, again.StatusCode)
	})

	t.Run("missing token is forbidden", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.APIURL("/profile"), "", nil)
		defer resp.Body.Close()
		testutil.AssertErrorEnvelope(t, resp, http.StatusForbidden, "Token no proporcionado")
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.APIURL("/profile"), "garbage.token.here", nil)
		defer resp.Body.Close()
		testutil.AssertErrorEnvelope(t, resp, http.StatusUnauthorized, "Token inválido")
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().
		WithEmail("clave@example.com").
		WithPassword("Original123").
		BuildAndLogin(t, ts)

	t.Run("wrong current password", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.APIURL("/profile/password"), token, map[string]string{
			"passwordActual": "Equivocada123",
			"passwordNueva":  "Renovada123",
		})
		defer resp.Body.Close()
		testutil.AssertErrorEnvelope(t, resp, http.StatusUnauthorized, "La contraseña actual es incorrecta")
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.APIURL("/profile/password"), token, map[string]string{})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("successful change allows login with the new password", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.APIURL("/profile/password"), token, map[string]string{
			"passwordActual": "Original123",
			"passwordNueva":  "Renovada123",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		newToken := testutil.Login(t, ts, user.Email, "Renovada123")
		assert.NotEmpty(t, newToken)
	})
}
