package services_test

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/models"
	"shopfront/internal/repositories"
	"shopfront/internal/services"
)

func testUser() models.User {
	return models.User{
		ID:        "user-1",
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Role:      models.RoleUser,
	}
}

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(expiresIn).Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestAuthStore_LoginAndAccessors(t *testing.T) {
	store, err := services.NewAuthStore(repositories.NewMockSessionRepository())
	require.NoError(t, err)

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "", store.Token())

	store.Login(testUser(), "access-1", "refresh-1")

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "access-1", store.Token())
	assert.Equal(t, "refresh-1", store.RefreshToken())
	assert.Equal(t, "user-1", store.UserID())

	user, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.False(t, store.IsAdmin())
}

func TestAuthStore_PersistsAcrossRestart(t *testing.T) {
	repo := repositories.NewMockSessionRepository()

	store, err := services.NewAuthStore(repo)
	require.NoError(t, err)
	store.Login(testUser(), "access-1", "")

	// A new store over the same repository restores the session.
	restored, err := services.NewAuthStore(repo)
	require.NoError(t, err)
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, "access-1", restored.Token())
	assert.Equal(t, "user-1", restored.UserID())
}

func TestAuthStore_LogoutClearsStateAndStorage(t *testing.T) {
	repo := repositories.NewMockSessionRepository()
	store, err := services.NewAuthStore(repo)
	require.NoError(t, err)

	store.Login(testUser(), "access-1", "refresh-1")
	store.Logout()

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "", store.Token())
	_, ok := store.CurrentUser()
	assert.False(t, ok)

	record, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestAuthStore_UpdateUserShallowMerge(t *testing.T) {
	store, err := services.NewAuthStore(repositories.NewMockSessionRepository())
	require.NoError(t, err)
	store.Login(testUser(), "access-1", "")

	phone := "+91 98765 43210"
	store.UpdateUser(models.UserUpdate{Phone: &phone})

	user, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, phone, user.Phone)
	assert.Equal(t, "Asha", user.FirstName) // untouched
}

func TestAuthStore_UpdateUserWithoutSessionIsNoop(t *testing.T) {
	store, err := services.NewAuthStore(repositories.NewMockSessionRepository())
	require.NoError(t, err)

	name := "Nobody"
	store.UpdateUser(models.UserUpdate{FirstName: &name})

	_, ok := store.CurrentUser()
	assert.False(t, ok)
}

func TestAuthStore_UpdateTokenRotatesCredentialOnly(t *testing.T) {
	repo := repositories.NewMockSessionRepository()
	store, err := services.NewAuthStore(repo)
	require.NoError(t, err)
	store.Login(testUser(), "access-1", "refresh-1")

	store.UpdateToken("access-2")

	assert.Equal(t, "access-2", store.Token())
	assert.Equal(t, "refresh-1", store.RefreshToken())
	user, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "user-1", user.ID)

	// Rotation is persisted.
	record, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "access-2", record.AccessToken)
}

func TestAuthStore_TokenExpiresWithin(t *testing.T) {
	store, err := services.NewAuthStore(repositories.NewMockSessionRepository())
	require.NoError(t, err)

	store.Login(testUser(), signedToken(t, 10*time.Minute), "")
	assert.False(t, store.TokenExpiresWithin(5*time.Minute))
	assert.True(t, store.TokenExpiresWithin(15*time.Minute))

	// Opaque tokens without claims are never reported as expiring.
	store.UpdateToken("not-a-jwt")
	assert.False(t, store.TokenExpiresWithin(time.Hour))
}
