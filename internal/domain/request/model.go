package request

import "time"

// Request statuses as stored. A request is born pending and is closed
// exactly once, to approved or rejected.
const (
	StatusPending  = "pendiente"
	StatusApproved = "aprobada"
	StatusRejected = "rechazada"
)

// Rejection justifications as stored.
const (
	JustificationOutOfFormulary = "Fuera_de_cuadro"
	JustificationDirectPurchase = "Compra_directa"
	JustificationNoStock        = "No_existencia"
)

// ValidJustification reports whether s is one of the accepted rejection
// justifications.
func ValidJustification(s string) bool {
	switch s {
	case JustificationOutOfFormulary, JustificationDirectPurchase, JustificationNoStock:
		return true
	}
	return false
}

// Service types: a medical service is either an ambulatory or a hospital
// unit, resolved through its type-specific sub id.
const (
	ServiceAmbulatory = "ambulatorio"
	ServiceHospital   = "hospitalario"
)

// Patient demographics. The CURP is the natural key; demographics are
// written once at first sight and never updated by request creation.
type Patient struct {
	ID              int64  `db:"id_paciente" json:"id_paciente"`
	CURP            string `db:"curp" json:"curp"`
	FirstName       string `db:"nombre" json:"nombre"`
	PaternalSurname string `db:"apellido_paterno" json:"apellido_paterno"`
	MaternalSurname string `db:"apellido_materno" json:"apellido_materno"`
	Age             int    `db:"edad" json:"edad"`
	Gender          string `db:"sexo" json:"sexo"`
}

// Request is one supply petition for a patient under a service.
type Request struct {
	ID            int64      `db:"id_solicitud" json:"id_solicitud"`
	PatientID     int64      `db:"id_paciente" json:"id_paciente"`
	ServiceID     int64      `db:"id_servicio" json:"id_servicio"`
	RequesterName string     `db:"nombre_solicitante" json:"nombre_solicitante"`
	Diagnosis     string     `db:"diagnostico" json:"diagnostico"`
	Priority      string     `db:"prioridad" json:"prioridad"`
	Status        string     `db:"estatus" json:"estatus"`
	Justification string     `db:"justificacion" json:"justificacion"`
	CreatedAt     time.Time  `db:"fecha_solicitud" json:"fecha_solicitud"`
	ClosedAt      *time.Time `db:"fecha_atendido" json:"fecha_atendido,omitempty"`
}

// Line is one requested item inside a request. Presentation is captured from
// the petition at creation time; QuantitySupplied stays zero until
// fulfillment.
type Line struct {
	ID                int64  `db:"id_detalle" json:"id_detalle"`
	RequestID         int64  `db:"id_solicitud" json:"id_solicitud"`
	ItemID            string `db:"id_insumo" json:"id_insumo"`
	ItemName          string `db:"nombre" json:"nombre,omitempty"`
	Presentation      string `db:"presentacion" json:"presentacion"`
	QuantityRequested int    `db:"cantidad_solicitada" json:"cantidad_solicitada"`
	QuantitySupplied  int    `db:"cantidad_surtida" json:"cantidad_surtida"`
	Justification     string `db:"justificacion" json:"justificacion,omitempty"`
}

// View is the supervision listing of a request with patient and service
// context and its lines attached.
type View struct {
	Request
	PatientCURP string  `json:"curp"`
	PatientName string  `json:"paciente"`
	ServiceName string  `json:"servicio"`
	Lines       []*Line `json:"detalle"`
}

// ServiceView is one entry in the merged ambulatory + hospital service list.
type ServiceView struct {
	ID   int64  `db:"id_servicio" json:"id_servicio"`
	Type string `db:"tipo" json:"tipo"`
	Name string `db:"nombre" json:"nombre"`
}

// ItemUsage is the per-item aggregation over a reporting window.
type ItemUsage struct {
	ItemID    string `json:"id_insumo"`
	ItemName  string `json:"nombre"`
	Requested int    `json:"solicitado"`
	Supplied  int    `json:"surtido"`
}

// UnfulfilledItem totals the requested quantity of an item whose lines
// received nothing inside a window.
type UnfulfilledItem struct {
	ItemID    string `json:"id_insumo"`
	ItemName  string `json:"nombre"`
	Requested int    `json:"solicitado"`
}
