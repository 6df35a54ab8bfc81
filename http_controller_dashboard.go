package backoffice

import (
	"github.com/goliatone/go-router"
)

// RegisterDashboardRoutes wires the dashboard summary endpoint. Any
// authenticated session may read it.
func RegisterDashboardRoutes[T any](app router.Router[T], opts ...DashboardControllerOption) {

	controller := NewDashboardController(opts...)

	app.Get("/dashboard",
		controller.Auther.ProtectedRoute()(controller.Summary),
	).SetName("dashboard.get")
}

type DashboardController struct {
	Logger       Logger
	Repo         RepositoryManager
	Auther       Middleware
	ErrorHandler router.ErrorHandler
}

type DashboardControllerOption func(*DashboardController) *DashboardController

func NewDashboardController(opts ...DashboardControllerOption) *DashboardController {
	c := &DashboardController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in dashboard controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTP authenticator in dashboard controller...")
	}

	return c
}

func WithDashboardRepo(repo RepositoryManager) DashboardControllerOption {
	return func(c *DashboardController) *DashboardController {
		c.Repo = repo
		return c
	}
}

func WithDashboardMiddleware(auther Middleware) DashboardControllerOption {
	return func(c *DashboardController) *DashboardController {
		c.Auther = auther
		return c
	}
}

func WithDashboardLogger(logger Logger) DashboardControllerOption {
	return func(c *DashboardController) *DashboardController {
		c.Logger = logger
		return c
	}
}

// Summary returns the request totals grouped by estado. Every known estado
// appears, zero-filled, so charts always have the full key set.
func (a *DashboardController) Summary(ctx router.Context) error {
	counts, err := a.Repo.Solicitudes().CountByEstado(ctx.Context())
	if err != nil {
		a.Logger.Error("dashboard counts: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, counts)
}
