package notify

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
)

// Logger matches the root package's logging interface without importing it.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// RegisterRoutes wires the notification endpoint. protect is the session
// middleware for the route; any authenticated caller may trigger a
// notification.
func RegisterRoutes[T any](app router.Router[T], protect router.MiddlewareFunc, opts ...ControllerOption) {

	controller := NewController(opts...)

	app.Post("/notificar", protect(controller.Notify)).SetName("notificar.post")
}

type Controller struct {
	Logger  Logger
	Handler *Handler
}

type ControllerOption func(*Controller) *Controller

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: nopLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Handler == nil {
		panic("Missing notification handler in notify controller...")
	}

	return c
}

func WithHandler(handler *Handler) ControllerOption {
	return func(c *Controller) *Controller {
		c.Handler = handler
		return c
	}
}

func WithLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

// NotifyPayload is the request body
type NotifyPayload struct {
	Email  string `form:"email" json:"email"`
	Evento string `form:"evento" json:"evento"`
}

// Validate will validate the payload
func (r NotifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Evento, validation.Required),
	)
}

// Notify delivers the evento's notification synchronously and reports the
// outcome. Delivery failure is a 500 with ok:false; it never touches
// session state.
func (a *Controller) Notify(ctx router.Context) error {
	payload := new(NotifyPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("notify parse payload: %v", err)
		return ctx.JSON(router.StatusBadRequest, router.ViewContext{
			"ok":    false,
			"error": "Cuerpo de la petición inválido",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, router.ViewContext{
			"ok":    false,
			"error": "Email y evento son requeridos",
		})
	}

	msg := Message{
		Email:  payload.Email,
		Evento: payload.Evento,
	}

	if err := a.Handler.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("notify send: %v", err)
		return ctx.JSON(router.StatusInternalServerError, router.ViewContext{
			"ok":    false,
			"error": "No se pudo enviar la notificación",
		})
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"ok":      true,
		"mensaje": "Notificación enviada",
	})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
