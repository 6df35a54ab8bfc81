package backoffice

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. JSON and column names keep the Spanish field names
// the frontend expects.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"nombre,notnull" json:"nombre,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role          UserRole   `bun:"rol,notnull" json:"rol,omitempty"`
	Active        bool       `bun:"activo,notnull,default:true" json:"activo"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// SolicitudEstado is a purchase request's lifecycle state
type SolicitudEstado = string

const (
	// EstadoPendiente is the initial state, awaiting review
	EstadoPendiente SolicitudEstado = "Pendiente"
	// EstadoAprobada means an approver accepted the request
	EstadoAprobada SolicitudEstado = "Aprobada"
	// EstadoRechazada means an approver rejected the request
	EstadoRechazada SolicitudEstado = "Rechazada"
	// EstadoAnulada means the requester withdrew it
	EstadoAnulada SolicitudEstado = "Anulada"
)

// GetAllEstados returns every lifecycle state, in review order.
func GetAllEstados() []SolicitudEstado {
	return []SolicitudEstado{
		EstadoPendiente,
		EstadoAprobada,
		EstadoRechazada,
		EstadoAnulada,
	}
}

// Solicitud is the purchase request model. The dashboard only aggregates over
// estado; the detail fields ride along for the request views.
type Solicitud struct {
	bun.BaseModel `bun:"table:solicitudes,alias:sol"`
	ID            uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Descripcion   string          `bun:"descripcion,notnull" json:"descripcion,omitempty"`
	Estado        SolicitudEstado `bun:"estado,notnull" json:"estado,omitempty"`
	SolicitanteID uuid.UUID       `bun:"solicitante_id,notnull,type:uuid" json:"solicitante_id,omitempty"`
	Solicitante   *User           `bun:"rel:belongs-to,join:solicitante_id=id" json:"solicitante,omitempty"`
	CreatedAt     *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time      `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
