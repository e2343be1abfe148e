package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(validator TokenValidator, optional bool) *gin.Engine {
	router := gin.New()
	mw := AuthMiddleware(validator)
	if optional {
		mw = OptionalAuth(validator)
	}
	router.GET("/me", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})
	return router
}

func do(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	validator := new(mocks.MockAuthService)
	validator.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 7}, nil)
	validator.On("ValidateToken", mock.Anything, "bad").Return(nil, service.ErrInvalidToken)
	router := authRouter(validator, false)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"token scheme", "Token good", http.StatusOK},
		{"bearer scheme", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"unknown scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Token", http.StatusUnauthorized},
		{"invalid token", "Token bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	validator := new(mocks.MockAuthService)
	validator.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 7}, nil)
	validator.On("ValidateToken", mock.Anything, "revoked").Return(nil, service.ErrTokenRevoked)
	router := authRouter(validator, true)

	w := do(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	w = do(router, "Token good")
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())

	w = do(router, "Token revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	staff := testhelpers.CreateUser(t, db, "admin", true)
	regular := testhelpers.CreateUser(t, db, "cook", false)

	validator := new(mocks.MockAuthService)
	validator.On("ValidateToken", mock.Anything, "staff").Return(&types.TokenClaims{UserID: staff.ID}, nil)
	validator.On("ValidateToken", mock.Anything, "regular").Return(&types.TokenClaims{UserID: regular.ID}, nil)
	validator.On("ValidateToken", mock.Anything, "ghost").Return(&types.TokenClaims{UserID: 999}, nil)

	router := gin.New()
	router.GET("/me", AuthMiddleware(validator), RequireStaff(db), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, do(router, "Token staff").Code)
	assert.Equal(t, http.StatusForbidden, do(router, "Token regular").Code)
	assert.Equal(t, http.StatusForbidden, do(router, "Token ghost").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, "").Code)
}
