package backoffice

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// RegisterUserRoutes wires the user administration endpoints. Every route is
// admin only.
func RegisterUserRoutes[T any](app router.Router[T], opts ...UsersControllerOption) {

	controller := NewUsersController(opts...)
	adminOnly := controller.Auther.ProtectedRoute(RoleAdmin)

	app.Post("/users", adminOnly(controller.Create)).SetName("users-create.post")
	app.Get("/users", adminOnly(controller.List)).SetName("users-list.get")
	app.Get("/users/:id", adminOnly(controller.Show)).SetName("users-show.get")
	app.Put("/users/:id", adminOnly(controller.Update)).SetName("users-update.put")
	app.Patch("/users/:id/inactivate", adminOnly(controller.Inactivate)).SetName("users-inactivate.patch")
	app.Patch("/users/:id/activate", adminOnly(controller.Activate)).SetName("users-activate.patch")
}

type UsersController struct {
	// HashCost is the bcrypt work factor for new and updated passwords.
	// Zero keeps the default.
	HashCost     int
	Logger       Logger
	Repo         RepositoryManager
	Auther       Middleware
	ErrorHandler router.ErrorHandler
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in users controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTP authenticator in users controller...")
	}

	return c
}

func WithUsersRepo(repo RepositoryManager) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Repo = repo
		return c
	}
}

func WithUsersMiddleware(auther Middleware) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Auther = auther
		return c
	}
}

func WithUsersLogger(logger Logger) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Logger = logger
		return c
	}
}

func WithUsersHashCost(cost int) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.HashCost = cost
		return c
	}
}

// CreateUserPayload is the create form
type CreateUserPayload struct {
	Nombre   string `form:"nombre" json:"nombre"`
	Email    string `form:"email" json:"email"`
	Role     string `form:"rol" json:"rol"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nombre, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Role, validation.Required, validation.In(anyRoles()...)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *UsersController) Create(ctx router.Context) error {
	payload := new(CreateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("create user parse payload: %v", err)
		return badRequest(ctx, "Cuerpo de la petición inválido", nil)
	}

	if err := payload.Validate(); err != nil {
		return badRequest(ctx, "Datos de usuario inválidos", FormatValidationErrorToMap(err))
	}

	if _, err := a.Repo.Users().GetByEmail(ctx.Context(), payload.Email); err == nil {
		return ctx.JSON(router.StatusConflict, router.ViewContext{
			"error": "El correo ya está registrado",
			"code":  "DUPLICATE_EMAIL",
		})
	} else if !repository.IsRecordNotFound(err) {
		return a.ErrorHandler(ctx, err)
	}

	handler := NewRegisterUserHandler(a.Repo).WithHashCost(a.HashCost)
	user, err := handler.Execute(ctx.Context(), RegisterUserMessage{
		Nombre:   payload.Nombre,
		Email:    payload.Email,
		Role:     payload.Role,
		Password: payload.Password,
	})
	if err != nil {
		a.Logger.Error("create user: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, router.ViewContext{
		"mensaje": "Usuario creado exitosamente",
		"user":    user,
	})
}

func (a *UsersController) List(ctx router.Context) error {
	filters := UserFilters{
		Role: ctx.Query("rol", ""),
	}

	switch ctx.Query("activo", "") {
	case "true":
		active := true
		filters.Active = &active
	case "false":
		active := false
		filters.Active = &active
	}

	records, err := a.Repo.Users().ListFiltered(ctx.Context(), filters)
	if err != nil {
		a.Logger.Error("list users: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"usuarios": records,
		"total":    len(records),
	})
}

func (a *UsersController) Show(ctx router.Context) error {
	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"user": user,
	})
}

// UpdateUserPayload is the partial update form. Zero-value fields are left untouched.
type UpdateUserPayload struct {
	Nombre   string `form:"nombre" json:"nombre"`
	Email    string `form:"email" json:"email"`
	Role     string `form:"rol" json:"rol"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nombre, validation.Length(1, 200)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Role, validation.In(anyRoles()...)),
		validation.Field(&r.Password, validation.Length(6, 100)),
	)
}

func (r UpdateUserPayload) isEmpty() bool {
	return r.Nombre == "" && r.Email == "" && r.Role == "" && r.Password == ""
}

func (a *UsersController) Update(ctx router.Context) error {
	payload := new(UpdateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("update user parse payload: %v", err)
		return badRequest(ctx, "Cuerpo de la petición inválido", nil)
	}

	if payload.isEmpty() {
		return badRequest(ctx, "No hay campos para actualizar", nil)
	}

	if err := payload.Validate(); err != nil {
		return badRequest(ctx, "Datos de usuario inválidos", FormatValidationErrorToMap(err))
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	if payload.Email != "" && NormalizeEmail(payload.Email) != user.Email {
		if _, err := a.Repo.Users().GetByEmail(ctx.Context(), payload.Email); err == nil {
			return ctx.JSON(router.StatusConflict, router.ViewContext{
				"error": "El correo ya está registrado",
				"code":  "DUPLICATE_EMAIL",
			})
		} else if !repository.IsRecordNotFound(err) {
			return a.ErrorHandler(ctx, err)
		}
		user.Email = NormalizeEmail(payload.Email)
	}

	if payload.Nombre != "" {
		user.Name = payload.Nombre
	}

	if payload.Role != "" {
		user.Role = payload.Role
	}

	updated, err := a.Repo.Users().Update(ctx.Context(), user)
	if err != nil {
		a.Logger.Error("update user: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if payload.Password != "" {
		hash, err := a.hashPassword(payload.Password)
		if err != nil {
			return a.ErrorHandler(ctx, err)
		}
		if err := a.Repo.Users().UpdatePassword(ctx.Context(), updated.ID, hash); err != nil {
			a.Logger.Error("update user password: %v", err)
			return a.ErrorHandler(ctx, err)
		}
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"mensaje": "Usuario actualizado exitosamente",
		"user":    updated,
	})
}

// Inactivate flips activo off. Admins cannot inactivate their own account:
// the system must always keep at least the acting admin usable.
func (a *UsersController) Inactivate(ctx router.Context) error {
	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	if principal, ok := PrincipalFromRouterContext(ctx, ""); ok {
		if principal.UserID == user.ID.String() {
			return badRequest(ctx, "No puede inactivar su propio usuario", nil)
		}
	}

	if !user.Active {
		return badRequest(ctx, "El usuario ya está inactivo", nil)
	}

	updated, err := a.Repo.Users().SetActive(ctx.Context(), user.ID, false)
	if err != nil {
		a.Logger.Error("inactivate user: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"mensaje": "Usuario inactivado exitosamente",
		"user":    updated,
	})
}

func (a *UsersController) Activate(ctx router.Context) error {
	user, err := a.Repo.Users().GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return notFound(ctx)
		}
		return a.ErrorHandler(ctx, err)
	}

	if user.Active {
		return badRequest(ctx, "El usuario ya está activo", nil)
	}

	updated, err := a.Repo.Users().SetActive(ctx.Context(), user.ID, true)
	if err != nil {
		a.Logger.Error("activate user: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"mensaje": "Usuario activado exitosamente",
		"user":    updated,
	})
}

func (a *UsersController) hashPassword(password string) (string, error) {
	if a.HashCost > 0 {
		return HashPasswordCost(password, a.HashCost)
	}
	return HashPassword(password)
}

func badRequest(ctx router.Context, message string, details map[string]string) error {
	body := router.ViewContext{
		"error": message,
		"code":  "BAD_REQUEST",
	}
	if len(details) > 0 {
		body["validation"] = details
	}
	return ctx.JSON(router.StatusBadRequest, body)
}

func notFound(ctx router.Context) error {
	return ctx.JSON(router.StatusNotFound, router.ViewContext{
		"error": "Usuario no encontrado",
		"code":  "NOT_FOUND",
	})
}

func anyRoles() []any {
	roles := GetAllRoles()
	out := make([]any, len(roles))
	for i, r := range roles {
		out[i] = r
	}
	return out
}
