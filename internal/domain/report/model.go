package report

import "time"

// Report is an incident raised by the floor staff about supplies or
// equipment, tracked until someone attends it.
type Report struct {
	ID          int64      `db:"id_reporte" json:"id_reporte"`
	Subject     string     `db:"asunto" json:"asunto"`
	Description string     `db:"descripcion" json:"descripcion"`
	ReportedBy  string     `db:"reportado_por" json:"reportado_por"`
	CreatedAt   time.Time  `db:"fecha" json:"fecha"`
	Attended    bool       `db:"atendido" json:"atendido"`
	AttendedAt  *time.Time `db:"fecha_atendido" json:"fecha_atendido,omitempty"`
}
