package notify_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proveeduria/backoffice/notify"
)

func TestCuerpoParaEvento(t *testing.T) {
	tests := []struct {
		name   string
		evento notify.Evento
		want   string
	}{
		{
			name:   "creacion",
			evento: notify.EventoCreacion,
			want:   "Su solicitud ha sido creada exitosamente.",
		},
		{
			name:   "aprobacion",
			evento: notify.EventoAprobacion,
			want:   "Su solicitud ha sido aprobada.",
		},
		{
			name:   "rechazo",
			evento: notify.EventoRechazo,
			want:   "Su solicitud ha sido rechazada.",
		},
		{
			name:   "unknown evento falls back",
			evento: "auditoria",
			want:   "Evento desconocido.",
		},
		{
			name:   "empty evento falls back",
			evento: "",
			want:   "Evento desconocido.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notify.CuerpoParaEvento(tt.evento))
		})
	}
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func TestHandlerExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("renders and delivers", func(t *testing.T) {
		var sent []sentMail
		handler := notify.NewHandler(notify.SenderFunc(func(_ context.Context, to, subject, body string) error {
			sent = append(sent, sentMail{to: to, subject: subject, body: body})
			return nil
		}))

		err := handler.Execute(ctx, notify.Message{
			Email:  "solicitante@proveeduria.local",
			Evento: notify.EventoAprobacion,
		})

		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, "solicitante@proveeduria.local", sent[0].to)
		assert.Equal(t, "Notificación de solicitud", sent[0].subject)
		assert.Equal(t, "Su solicitud ha sido aprobada.", sent[0].body)
	})

	t.Run("unknown evento still delivers", func(t *testing.T) {
		var body string
		handler := notify.NewHandler(notify.SenderFunc(func(_ context.Context, _, _, b string) error {
			body = b
			return nil
		}))

		err := handler.Execute(ctx, notify.Message{
			Email:  "solicitante@proveeduria.local",
			Evento: "algo-nuevo",
		})

		require.NoError(t, err)
		assert.Equal(t, "Evento desconocido.", body)
	})

	t.Run("missing email is a validation error", func(t *testing.T) {
		handler := notify.NewHandler(notify.SenderFunc(func(context.Context, string, string, string) error {
			t.Fatal("sender should not be reached")
			return nil
		}))

		err := handler.Execute(ctx, notify.Message{Evento: notify.EventoCreacion})

		require.Error(t, err)
		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
	})

	t.Run("sender failure is wrapped", func(t *testing.T) {
		boom := errors.New("smtp connection refused")
		handler := notify.NewHandler(notify.SenderFunc(func(context.Context, string, string, string) error {
			return boom
		}))

		err := handler.Execute(ctx, notify.Message{
			Email:  "solicitante@proveeduria.local",
			Evento: notify.EventoRechazo,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context aborts before sending", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		handler := notify.NewHandler(notify.SenderFunc(func(context.Context, string, string, string) error {
			t.Fatal("sender should not be reached")
			return nil
		}))

		err := handler.Execute(cancelled, notify.Message{
			Email:  "solicitante@proveeduria.local",
			Evento: notify.EventoCreacion,
		})

		require.Error(t, err)
	})
}

func TestNotifyPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload notify.NotifyPayload
		wantErr bool
	}{
		{
			name:    "valid payload",
			payload: notify.NotifyPayload{Email: "ana@proveeduria.local", Evento: "creacion"},
		},
		{
			name:    "missing email",
			payload: notify.NotifyPayload{Evento: "creacion"},
			wantErr: true,
		},
		{
			name:    "bad email",
			payload: notify.NotifyPayload{Email: "no-es-un-email", Evento: "creacion"},
			wantErr: true,
		},
		{
			name:    "missing evento",
			payload: notify.NotifyPayload{Email: "ana@proveeduria.local"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
