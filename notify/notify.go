// Package notify sends the fixed email notifications that accompany a
// purchase request's lifecycle events.
package notify

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Evento identifies a lifecycle event on a purchase request
type Evento = string

const (
	// EventoCreacion fires when a request is created
	EventoCreacion Evento = "creacion"
	// EventoAprobacion fires when a request is approved
	EventoAprobacion Evento = "aprobacion"
	// EventoRechazo fires when a request is rejected
	EventoRechazo Evento = "rechazo"
)

const asuntoDefault = "Notificación de solicitud"

// cuerpos holds the fixed message body per evento.
var cuerpos = map[Evento]string{
	EventoCreacion:   "Su solicitud ha sido creada exitosamente.",
	EventoAprobacion: "Su solicitud ha sido aprobada.",
	EventoRechazo:    "Su solicitud ha sido rechazada.",
}

// CuerpoParaEvento returns the body for the evento, or the unknown-event
// fallback. Unknown eventos are not an error: the notification still goes
// out, just with the generic body.
func CuerpoParaEvento(evento Evento) string {
	if cuerpo, ok := cuerpos[evento]; ok {
		return cuerpo
	}
	return "Evento desconocido."
}

// Message asks for a notification to be delivered
type Message struct {
	Email  string `json:"email"`
	Evento Evento `json:"evento"`
}

func (m Message) Type() string { return "notificacion.solicitud" }

// Sender delivers a rendered notification
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, to, subject, body string) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// Handler renders the evento body and hands it to the sender.
type Handler struct {
	sender Sender
}

func NewHandler(sender Sender) *Handler {
	return &Handler{sender: sender}
}

func (h *Handler) Execute(ctx context.Context, event Message) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during notification delivery",
		)
	default:
	}

	if event.Email == "" {
		return goerrors.New("notification requires a destination email", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	body := CuerpoParaEvento(event.Evento)

	if err := h.sender.Send(ctx, event.Email, asuntoDefault, body); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation,
			fmt.Sprintf("failed to deliver %q notification", event.Evento))
	}

	return nil
}
