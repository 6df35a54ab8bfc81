package backoffice

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUsersController(repo RepositoryManager) *UsersController {
	return NewUsersController(
		WithUsersRepo(repo),
		WithUsersMiddleware(&stubMiddleware{}),
	)
}

func TestUsersCreateDuplicateEmail(t *testing.T) {
	existing := &User{ID: uuid.New(), Email: "ana@proveeduria.local", Active: true}
	repo := &stubRepoManager{users: &stubUsers{
		getByEmail: func(_ context.Context, email string) (*User, error) {
			return existing, nil
		},
	}}
	ctrl := newTestUsersController(repo)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*CreateUserPayload)
		payload.Nombre = "Ana Torres"
		payload.Email = "ana@proveeduria.local"
		payload.Role = RoleComprador
		payload.Password = "secreta123"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())

	var body router.ViewContext
	ctx.On("JSON", router.StatusConflict, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(router.ViewContext)
	}).Return(nil)

	err := ctrl.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, "DUPLICATE_EMAIL", body["code"])
}

func TestUsersCreateRejectsUnknownRole(t *testing.T) {
	repo := &stubRepoManager{users: &stubUsers{}}
	ctrl := newTestUsersController(repo)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*CreateUserPayload)
		payload.Nombre = "Ana Torres"
		payload.Email = "ana@proveeduria.local"
		payload.Role = "Superusuario"
		payload.Password = "secreta123"
	}).Return(nil)

	var body router.ViewContext
	ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(router.ViewContext)
	}).Return(nil)

	err := ctrl.Create(ctx)
	require.NoError(t, err)

	details, ok := body["validation"].(map[string]string)
	require.True(t, ok)
	require.Contains(t, details, "rol")
}

func TestUsersListFilters(t *testing.T) {
	var got UserFilters
	repo := &stubRepoManager{users: &stubUsers{
		listFiltered: func(_ context.Context, filters UserFilters) ([]*User, error) {
			got = filters
			return []*User{}, nil
		},
	}}
	ctrl := newTestUsersController(repo)

	ctx := router.NewMockContext()
	ctx.QueriesM["rol"] = "Aprobador"
	ctx.QueriesM["activo"] = "false"
	ctx.On("Context").Return(context.Background())

	var body router.ViewContext
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(router.ViewContext)
	}).Return(nil)

	err := ctrl.List(ctx)
	require.NoError(t, err)
	require.Equal(t, RoleAprobador, got.Role)
	require.NotNil(t, got.Active)
	require.False(t, *got.Active)
	require.Equal(t, 0, body["total"])
}

func TestUsersInactivate(t *testing.T) {
	adminID := uuid.New()
	targetID := uuid.New()

	target := &User{ID: targetID, Name: "Benito Ruiz", Role: RoleComprador, Active: true}

	newCtx := func(id uuid.UUID) *router.MockContext {
		ctx := router.NewMockContext()
		ctx.ParamsM["id"] = id.String()
		ctx.LocalsMock["principal"] = Principal{UserID: adminID.String(), Role: RoleAdmin}
		ctx.On("Context").Return(context.Background())
		return ctx
	}

	t.Run("admin cannot inactivate their own account", func(t *testing.T) {
		self := &User{ID: adminID, Name: "Admin", Role: RoleAdmin, Active: true}
		repo := &stubRepoManager{users: &stubUsers{
			getByID: func(context.Context, string) (*User, error) { return self, nil },
		}}
		ctrl := newTestUsersController(repo)

		ctx := newCtx(adminID)
		var body router.ViewContext
		ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(router.ViewContext)
		}).Return(nil)

		err := ctrl.Inactivate(ctx)
		require.NoError(t, err)
		require.Equal(t, "No puede inactivar su propio usuario", body["error"])
	})

	t.Run("already inactive", func(t *testing.T) {
		inactive := &User{ID: targetID, Active: false}
		repo := &stubRepoManager{users: &stubUsers{
			getByID: func(context.Context, string) (*User, error) { return inactive, nil },
		}}
		ctrl := newTestUsersController(repo)

		ctx := newCtx(targetID)
		var body router.ViewContext
		ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(router.ViewContext)
		}).Return(nil)

		err := ctrl.Inactivate(ctx)
		require.NoError(t, err)
		require.Equal(t, "El usuario ya está inactivo", body["error"])
	})

	t.Run("inactivates another user", func(t *testing.T) {
		var flipped bool
		repo := &stubRepoManager{users: &stubUsers{
			getByID: func(context.Context, string) (*User, error) { return target, nil },
			setActive: func(_ context.Context, id uuid.UUID, active bool) (*User, error) {
				require.Equal(t, targetID, id)
				require.False(t, active)
				flipped = true
				out := *target
				out.Active = false
				return &out, nil
			},
		}}
		ctrl := newTestUsersController(repo)

		ctx := newCtx(targetID)
		var body router.ViewContext
		ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(router.ViewContext)
		}).Return(nil)

		err := ctrl.Inactivate(ctx)
		require.NoError(t, err)
		require.True(t, flipped)
		require.Equal(t, "Usuario inactivado exitosamente", body["mensaje"])
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := &stubRepoManager{users: &stubUsers{
			getByID: func(context.Context, string) (*User, error) {
				return nil, repository.NewRecordNotFound()
			},
		}}
		ctrl := newTestUsersController(repo)

		ctx := newCtx(uuid.New())
		var body router.ViewContext
		ctx.On("JSON", router.StatusNotFound, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(router.ViewContext)
		}).Return(nil)

		err := ctrl.Inactivate(ctx)
		require.NoError(t, err)
		require.Equal(t, "NOT_FOUND", body["code"])
	})
}

func TestUsersActivate(t *testing.T) {
	targetID := uuid.New()
	inactive := &User{ID: targetID, Name: "Benito Ruiz", Role: RoleComprador, Active: false}

	repo := &stubRepoManager{users: &stubUsers{
		getByID: func(context.Context, string) (*User, error) { return inactive, nil },
		setActive: func(_ context.Context, id uuid.UUID, active bool) (*User, error) {
			require.True(t, active)
			out := *inactive
			out.Active = true
			return &out, nil
		},
	}}
	ctrl := newTestUsersController(repo)

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = targetID.String()
	ctx.On("Context").Return(context.Background())

	var body router.ViewContext
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(router.ViewContext)
	}).Return(nil)

	err := ctrl.Activate(ctx)
	require.NoError(t, err)
	require.Equal(t, "Usuario activado exitosamente", body["mensaje"])
}

func TestUsersUpdatePasswordHonorsHashCost(t *testing.T) {
	targetID := uuid.New()
	user := &User{ID: targetID, Name: "Benito Ruiz", Email: "benito@proveeduria.local", Role: RoleComprador, Active: true}

	var storedHash string
	repo := &stubRepoManager{users: &stubUsers{
		getByID: func(context.Context, string) (*User, error) { return user, nil },
		update: func(_ context.Context, record *User) (*User, error) {
			return record, nil
		},
		updatePassword: func(_ context.Context, id uuid.UUID, hash string) error {
			require.Equal(t, targetID, id)
			storedHash = hash
			return nil
		},
	}}

	ctrl := NewUsersController(
		WithUsersRepo(repo),
		WithUsersMiddleware(&stubMiddleware{}),
		WithUsersHashCost(bcrypt.MinCost),
	)

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = targetID.String()
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*UpdateUserPayload)
		payload.Password = "renovada123"
	}).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, mock.Anything).Return(nil)

	err := ctrl.Update(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, storedHash)

	cost, err := bcrypt.Cost([]byte(storedHash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost,
		"configured work factor must reach the stored hash")
}

func TestUsersUpdateEmptyPayload(t *testing.T) {
	repo := &stubRepoManager{users: &stubUsers{}}
	ctrl := newTestUsersController(repo)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Return(nil)

	var body router.ViewContext
	ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(router.ViewContext)
	}).Return(nil)

	err := ctrl.Update(ctx)
	require.NoError(t, err)
	require.Equal(t, "No hay campos para actualizar", body["error"])
}
