package backoffice

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// Middleware is what controllers need from the HTTP authenticator.
type Middleware interface {
	Login(ctx router.Context, payload LoginPayload) (string, Principal, error)
	Logout(ctx router.Context)
	ProtectedRoute(roles ...UserRole) router.MiddlewareFunc
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth-login.post")

	app.
		Post(controller.Routes.Logout,
			controller.Auther.ProtectedRoute()(controller.LogOut),
		).
		SetName("auth-logout.post")

	app.
		Get(controller.Routes.Me,
			controller.Auther.ProtectedRoute()(controller.Me),
		).
		SetName("auth-me.get")

	if controller.AllowInit {
		app.
			Post(controller.Routes.Init, controller.InitPost).
			SetName("auth-init.post")
	}
}

type AuthControllerRoutes struct {
	Login  string
	Logout string
	Me     string
	Init   string
}

type AuthController struct {
	Debug bool
	// AllowInit enables the bootstrap endpoint. Development only: it mints
	// the first admin account when the users table is empty.
	AllowInit bool
	// HashCost is the bcrypt work factor for bootstrap accounts. Zero keeps
	// the default.
	HashCost     int
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Auther       Middleware
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:  "/auth/login",
			Logout: "/auth/logout",
			Me:     "/auth/me",
			Init:   "/auth/init",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTP authenticator in auth controller...")
	}

	return c
}

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuthMiddleware(auther Middleware) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthInit(allow bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.AllowInit = allow
		return c
	}
}

func WithAuthHashCost(cost int) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.HashCost = cost
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the email
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return ctx.JSON(router.StatusBadRequest, router.ViewContext{
			"error": "Cuerpo de la petición inválido",
			"code":  "BAD_REQUEST",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, router.ViewContext{
			"error":      "Email y contraseña son requeridos",
			"code":       "BAD_REQUEST",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, principal, err := a.Auther.Login(ctx, payload)
	if err != nil {
		// Every login failure, including internal ones, renders the same
		// generic rejection. Causes live in the logs only.
		return ctx.JSON(router.StatusUnauthorized, router.ViewContext{
			"error": "Email o contraseña incorrectos",
			"code":  TextCodeInvalidCredentials,
		})
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), principal.UserID)
	if err != nil {
		a.Logger.Error("login fetch user: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"mensaje": "Login exitoso",
		"token":   token,
		"user":    user,
	})
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.JSON(router.StatusOK, router.ViewContext{
		"mensaje": "Sesión cerrada exitosamente",
	})
}

// Me returns the user record behind the authorized session.
func (a *AuthController) Me(ctx router.Context) error {
	principal, ok := PrincipalFromRouterContext(ctx, "")
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, router.ViewContext{
			"error": "Autenticación requerida",
			"code":  TextCodeUnauthenticated,
		})
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), principal.UserID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.JSON(router.StatusNotFound, router.ViewContext{
				"error": "Usuario no encontrado",
				"code":  "NOT_FOUND",
			})
		}
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"user": user,
	})
}

// InitPost bootstraps the first admin account. Idempotent: once any user
// exists it refuses.
func (a *AuthController) InitPost(ctx router.Context) error {
	payload := new(InitRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, router.ViewContext{
			"error": "Cuerpo de la petición inválido",
			"code":  "BAD_REQUEST",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, router.ViewContext{
			"error":      "Datos de inicialización inválidos",
			"code":       "BAD_REQUEST",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	existing, err := a.Repo.Users().ListFiltered(ctx.Context(), UserFilters{})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if len(existing) > 0 {
		return ctx.JSON(router.StatusConflict, router.ViewContext{
			"error": "El sistema ya fue inicializado",
			"code":  "ALREADY_INITIALIZED",
		})
	}

	handler := NewRegisterUserHandler(a.Repo).WithHashCost(a.HashCost)
	user, err := handler.Execute(ctx.Context(), RegisterUserMessage{
		Nombre:   payload.Nombre,
		Email:    payload.Email,
		Role:     RoleAdmin,
		Password: payload.Password,
	})
	if err != nil {
		a.Logger.Error("init admin: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, router.ViewContext{
		"mensaje": "Administrador inicial creado",
		"user":    user,
	})
}

// InitRequest bootstraps the initial admin
type InitRequest struct {
	Nombre   string `form:"nombre" json:"nombre"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r InitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nombre, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// FormatValidationErrorToMap flattens ozzo validation errors so they can be
// serialized in JSON error payloads.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	if err != nil {
		out["error"] = err.Error()
	}

	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.JSON(router.StatusInternalServerError, router.ViewContext{
		"error": "Error interno del servidor",
		"code":  TextCodeInternalFailure,
	})
}
