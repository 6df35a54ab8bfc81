package backoffice_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	backoffice "github.com/proveeduria/backoffice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserStore serves users out of a map keyed by normalized email.
type memUserStore struct {
	byEmail map[string]*backoffice.User
	err     error
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*backoffice.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.byEmail[backoffice.NormalizeEmail(email)]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return user, nil
}

func (s *memUserStore) GetByID(_ context.Context, id string, _ ...repository.SelectCriteria) (*backoffice.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, user := range s.byEmail {
		if user.ID.String() == id {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func newStoreWithUser(t *testing.T, password string, active bool, role backoffice.UserRole) (*memUserStore, *backoffice.User) {
	t.Helper()

	hash, err := backoffice.HashPassword(password)
	require.NoError(t, err)

	user := &backoffice.User{
		ID:           uuid.New(),
		Name:         "Ana Torres",
		Email:        "ana@proveeduria.local",
		Role:         role,
		Active:       active,
		PasswordHash: hash,
	}

	return &memUserStore{byEmail: map[string]*backoffice.User{user.Email: user}}, user
}

func TestVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("active user with right password", func(t *testing.T) {
		store, user := newStoreWithUser(t, "secreta123", true, backoffice.RoleAprobador)
		provider := backoffice.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "ana@proveeduria.local", "secreta123")

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, user.Email, identity.Email())
		assert.Equal(t, user.Name, identity.Name())
		assert.Equal(t, backoffice.RoleAprobador, identity.Role())
	})

	t.Run("email lookup is case insensitive", func(t *testing.T) {
		store, _ := newStoreWithUser(t, "secreta123", true, backoffice.RoleComprador)
		provider := backoffice.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "  Ana@Proveeduria.LOCAL ", "secreta123")
		assert.NoError(t, err)
	})

	// All three rejection causes collapse into the same error so a caller
	// cannot probe which accounts exist or which are disabled.
	t.Run("rejections are indistinguishable", func(t *testing.T) {
		tests := []struct {
			name     string
			email    string
			password string
			active   bool
		}{
			{
				name:     "unknown email",
				email:    "nadie@proveeduria.local",
				password: "secreta123",
				active:   true,
			},
			{
				name:     "wrong password",
				email:    "ana@proveeduria.local",
				password: "incorrecta",
				active:   true,
			},
			{
				name:     "inactive account with right password",
				email:    "ana@proveeduria.local",
				password: "secreta123",
				active:   false,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store, _ := newStoreWithUser(t, "secreta123", tt.active, backoffice.RoleComprador)
				provider := backoffice.NewUserProvider(store)

				identity, err := provider.VerifyIdentity(ctx, tt.email, tt.password)

				assert.Nil(t, identity)
				assert.Equal(t, backoffice.ErrInvalidCredentials, err)
			})
		}
	})

	t.Run("store failure is not an auth rejection", func(t *testing.T) {
		store := &memUserStore{err: errors.New("disk on fire", errors.CategoryInternal)}
		provider := backoffice.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "ana@proveeduria.local", "secreta123")

		require.Error(t, err)
		assert.False(t, backoffice.IsAuthRejection(err),
			"infrastructure failures must not masquerade as bad credentials")
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		store, user := newStoreWithUser(t, "secreta123", true, backoffice.RoleComprador)
		user.Role = "Superusuario"
		provider := backoffice.NewUserProvider(store)

		_, err := provider.VerifyIdentity(ctx, "ana@proveeduria.local", "secreta123")

		require.Error(t, err)
		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, "INVALID_ROLE", richErr.TextCode)
	})
}

func TestFindIdentityByID(t *testing.T) {
	ctx := context.Background()
	store, user := newStoreWithUser(t, "secreta123", true, backoffice.RoleAdmin)
	provider := backoffice.NewUserProvider(store)

	identity, err := provider.FindIdentityByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Email, identity.Email())

	_, err = provider.FindIdentityByID(ctx, uuid.New().String())
	assert.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}
