package backoffice

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Solicitudes interface {
	repository.Repository[*Solicitud]

	CountByEstado(ctx context.Context) (map[SolicitudEstado]int, error)
	CountByEstadoTx(ctx context.Context, tx bun.IDB) (map[SolicitudEstado]int, error)
}

type solicitudes struct {
	repository.Repository[*Solicitud]
	db *bun.DB
}

var (
	_ Solicitudes                       = (*solicitudes)(nil)
	_ repository.Repository[*Solicitud] = (*solicitudes)(nil)
)

func NewSolicitudesRepository(db *bun.DB) Solicitudes {
	repo := repository.NewRepository[*Solicitud](db, repository.ModelHandlers[*Solicitud]{
		NewRecord: func() *Solicitud { return &Solicitud{} },
		GetID: func(s *Solicitud) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Solicitud, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
	})

	return &solicitudes{
		Repository: repo,
		db:         db,
	}
}

func (a *solicitudes) CountByEstado(ctx context.Context) (map[SolicitudEstado]int, error) {
	return a.CountByEstadoTx(ctx, a.db)
}

// CountByEstadoTx aggregates live requests by estado. Every known estado is
// present in the result, zero-filled, so the dashboard never has to guess
// which keys exist.
func (a *solicitudes) CountByEstadoTx(ctx context.Context, tx bun.IDB) (map[SolicitudEstado]int, error) {
	var rows []struct {
		Estado SolicitudEstado `bun:"estado"`
		Total  int             `bun:"total"`
	}

	err := tx.NewSelect().
		Model((*Solicitud)(nil)).
		Column("estado").
		ColumnExpr("COUNT(*) AS total").
		Group("estado").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	counts := make(map[SolicitudEstado]int, len(GetAllEstados()))
	for _, estado := range GetAllEstados() {
		counts[estado] = 0
	}
	for _, row := range rows {
		counts[row.Estado] = row.Total
	}

	return counts, nil
}
