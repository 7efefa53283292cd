package request

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medstock/medstock/internal/domain/shared"
	"github.com/medstock/medstock/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id_paciente, curp, nombre, apellido_paterno, apellido_materno, edad, sexo`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.CURP, &p.FirstName, &p.PaternalSurname, &p.MaternalSurname, &p.Age, &p.Gender)
	return &p, err
}

func (r *patientRepoPG) GetByCURP(ctx context.Context, curp string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM pacientes WHERE curp = $1`, curp))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFoundf("patient %s not found", curp)
	}
	if err != nil {
		return nil, shared.Storage("get patient", err)
	}
	return p, nil
}

func (r *patientRepoPG) Insert(ctx context.Context, p *Patient) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pacientes (curp, nombre, apellido_paterno, apellido_materno, edad, sexo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_paciente`,
		p.CURP, p.FirstName, p.PaternalSurname, p.MaternalSurname, p.Age, p.Gender).Scan(&id)
	if err != nil {
		return 0, shared.Storage("insert patient", err)
	}
	return id, nil
}

func (r *patientRepoPG) SearchByCURP(ctx context.Context, fragment string, limit int) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM pacientes
		WHERE curp LIKE '%' || $1 || '%'
		ORDER BY id_paciente DESC
		LIMIT $2`, fragment, limit)
	if err != nil {
		return nil, shared.Storage("search patients", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, shared.Storage("scan patient row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate patients", err)
	}
	return out, nil
}

// =========== Service Repository ===========

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepoPG{pool: pool}
}

func (r *serviceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *serviceRepoPG) Resolve(ctx context.Context, serviceType string, subID int64) (int64, error) {
	column := "id_ambulatorio"
	if serviceType == ServiceHospital {
		column = "id_hospitalario"
	}
	var id int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id_servicio FROM servicios WHERE tipo = $1 AND `+column+` = $2`,
		serviceType, subID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.NotFoundf("service %s/%d not found", serviceType, subID)
	}
	if err != nil {
		return 0, shared.Storage("resolve service", err)
	}
	return id, nil
}

func (r *serviceRepoPG) List(ctx context.Context) ([]*ServiceView, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id_servicio, tipo, nombre FROM servicios ORDER BY tipo, nombre`)
	if err != nil {
		return nil, shared.Storage("list services", err)
	}
	defer rows.Close()

	var out []*ServiceView
	for rows.Next() {
		var sv ServiceView
		if err := rows.Scan(&sv.ID, &sv.Type, &sv.Name); err != nil {
			return nil, shared.Storage("scan service row", err)
		}
		out = append(out, &sv)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate services", err)
	}
	return out, nil
}

// =========== Request Repository ===========

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository {
	return &requestRepoPG{pool: pool}
}

func (r *requestRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *requestRepoPG) Insert(ctx context.Context, req *Request) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO solicitudes (id_paciente, id_servicio, nombre_solicitante, diagnostico,
		                         prioridad, estatus, justificacion, fecha_solicitud)
		VALUES ($1, $2, $3, $4, $5, $6, '', $7)
		RETURNING id_solicitud`,
		req.PatientID, req.ServiceID, req.RequesterName, req.Diagnosis,
		req.Priority, req.Status, req.CreatedAt).Scan(&id)
	if err != nil {
		return 0, shared.Storage("insert request", err)
	}
	return id, nil
}

func (r *requestRepoPG) GetStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT estatus FROM solicitudes WHERE id_solicitud = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.NotFoundf("request %d not found", id)
	}
	if err != nil {
		return "", shared.Storage("get request status", err)
	}
	return status, nil
}

func (r *requestRepoPG) Close(ctx context.Context, id int64, status, justification string, closedAt time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE solicitudes
		SET estatus = $2, justificacion = $3, fecha_atendido = $4
		WHERE id_solicitud = $1 AND estatus = $5`,
		id, status, justification, closedAt, StatusPending)
	if err != nil {
		return false, shared.Storage("close request", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *requestRepoPG) InsertLine(ctx context.Context, line *Line) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO detalle_solicitud (id_solicitud, id_insumo, presentacion, cantidad_solicitada, cantidad_surtida, justificacion)
		VALUES ($1, $2, $3, $4, $5, '')`,
		line.RequestID, line.ItemID, line.Presentation, line.QuantityRequested, line.QuantitySupplied)
	if err != nil {
		return shared.Storage("insert request line", err)
	}
	return nil
}

func (r *requestRepoPG) SetLineSupplied(ctx context.Context, requestID int64, itemID string, supplied int, justification string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE detalle_solicitud
		SET cantidad_surtida = $3, justificacion = $4
		WHERE id_solicitud = $1 AND id_insumo = $2`,
		requestID, itemID, supplied, justification)
	if err != nil {
		return shared.Storage("update request line", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("request %d has no line for item %s", requestID, itemID)
	}
	return nil
}

const lineCols = `d.id_detalle, d.id_solicitud, d.id_insumo, COALESCE(i.nombre, ''),
	d.presentacion, d.cantidad_solicitada, d.cantidad_surtida, d.justificacion`

func (r *requestRepoPG) Lines(ctx context.Context, requestID int64) ([]*Line, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+lineCols+`
		FROM detalle_solicitud d
		LEFT JOIN insumos i ON i.id_insumo = d.id_insumo
		WHERE d.id_solicitud = $1
		ORDER BY d.id_detalle`, requestID)
	if err != nil {
		return nil, shared.Storage("list request lines", err)
	}
	defer rows.Close()
	return collectLines(rows)
}

func collectLines(rows pgx.Rows) ([]*Line, error) {
	var out []*Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.RequestID, &l.ItemID, &l.ItemName,
			&l.Presentation, &l.QuantityRequested, &l.QuantitySupplied, &l.Justification); err != nil {
			return nil, shared.Storage("scan request line", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate request lines", err)
	}
	return out, nil
}

const viewCols = `s.id_solicitud, s.id_paciente, s.id_servicio, s.nombre_solicitante,
	s.diagnostico, s.prioridad, s.estatus,
	s.justificacion, s.fecha_solicitud, s.fecha_atendido,
	p.curp, TRIM(p.nombre || ' ' || p.apellido_paterno || ' ' || p.apellido_materno),
	sv.nombre`

func scanView(row pgx.Row) (*View, error) {
	var v View
	err := row.Scan(&v.ID, &v.PatientID, &v.ServiceID, &v.RequesterName,
		&v.Diagnosis, &v.Priority, &v.Status,
		&v.Justification, &v.CreatedAt, &v.ClosedAt,
		&v.PatientCURP, &v.PatientName, &v.ServiceName)
	return &v, err
}

func (r *requestRepoPG) Get(ctx context.Context, id int64) (*View, error) {
	v, err := scanView(r.conn(ctx).QueryRow(ctx, `
		SELECT `+viewCols+`
		FROM solicitudes s
		JOIN pacientes p ON p.id_paciente = s.id_paciente
		JOIN servicios sv ON sv.id_servicio = s.id_servicio
		WHERE s.id_solicitud = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFoundf("request %d not found", id)
	}
	if err != nil {
		return nil, shared.Storage("get request", err)
	}
	if err := r.attachLines(ctx, []*View{v}); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *requestRepoPG) List(ctx context.Context, limit, offset int) ([]*View, int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+viewCols+`
		FROM solicitudes s
		JOIN pacientes p ON p.id_paciente = s.id_paciente
		JOIN servicios sv ON sv.id_servicio = s.id_servicio
		ORDER BY s.fecha_solicitud DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, shared.Storage("list requests", err)
	}
	views, err := collectViews(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM solicitudes`).Scan(&total); err != nil {
		return nil, 0, shared.Storage("count requests", err)
	}
	if err := r.attachLines(ctx, views); err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (r *requestRepoPG) ListPending(ctx context.Context) ([]*View, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+viewCols+`
		FROM solicitudes s
		JOIN pacientes p ON p.id_paciente = s.id_paciente
		JOIN servicios sv ON sv.id_servicio = s.id_servicio
		WHERE s.estatus = $1
		ORDER BY s.fecha_solicitud ASC`, StatusPending)
	if err != nil {
		return nil, shared.Storage("list pending requests", err)
	}
	views, err := collectViews(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

func collectViews(rows pgx.Rows) ([]*View, error) {
	defer rows.Close()
	var out []*View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, shared.Storage("scan request row", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate requests", err)
	}
	return out, nil
}

// attachLines loads the lines of all views in one query.
func (r *requestRepoPG) attachLines(ctx context.Context, views []*View) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]int64, len(views))
	byID := make(map[int64]*View, len(views))
	for i, v := range views {
		ids[i] = v.ID
		byID[v.ID] = v
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+lineCols+`
		FROM detalle_solicitud d
		LEFT JOIN insumos i ON i.id_insumo = d.id_insumo
		WHERE d.id_solicitud = ANY($1)
		ORDER BY d.id_detalle`, ids)
	if err != nil {
		return shared.Storage("load request lines", err)
	}
	defer rows.Close()

	lines, err := collectLines(rows)
	if err != nil {
		return err
	}
	for _, line := range lines {
		v := byID[line.RequestID]
		v.Lines = append(v.Lines, line)
	}
	return nil
}

func (r *requestRepoPG) Aggregate(ctx context.Context, start, end time.Time) ([]*ItemUsage, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id_insumo, COALESCE(i.nombre, ''),
		       SUM(d.cantidad_solicitada), SUM(d.cantidad_surtida)
		FROM detalle_solicitud d
		JOIN solicitudes s ON s.id_solicitud = d.id_solicitud
		LEFT JOIN insumos i ON i.id_insumo = d.id_insumo
		WHERE s.fecha_solicitud >= $1 AND s.fecha_solicitud < $2
		GROUP BY d.id_insumo, i.nombre
		ORDER BY SUM(d.cantidad_solicitada) DESC`, start, end)
	if err != nil {
		return nil, shared.Storage("aggregate usage", err)
	}
	defer rows.Close()

	var out []*ItemUsage
	for rows.Next() {
		var u ItemUsage
		if err := rows.Scan(&u.ItemID, &u.ItemName, &u.Requested, &u.Supplied); err != nil {
			return nil, shared.Storage("scan usage row", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate usage", err)
	}
	return out, nil
}

func (r *requestRepoPG) Unfulfilled(ctx context.Context, start, end time.Time) ([]*UnfulfilledItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id_insumo, COALESCE(i.nombre, ''), SUM(d.cantidad_solicitada)
		FROM detalle_solicitud d
		JOIN solicitudes s ON s.id_solicitud = d.id_solicitud
		LEFT JOIN insumos i ON i.id_insumo = d.id_insumo
		WHERE s.fecha_solicitud >= $1 AND s.fecha_solicitud < $2
		  AND d.cantidad_surtida = 0
		GROUP BY d.id_insumo, i.nombre
		ORDER BY SUM(d.cantidad_solicitada) DESC`, start, end)
	if err != nil {
		return nil, shared.Storage("list unfulfilled items", err)
	}
	defer rows.Close()

	var out []*UnfulfilledItem
	for rows.Next() {
		var u UnfulfilledItem
		if err := rows.Scan(&u.ItemID, &u.ItemName, &u.Requested); err != nil {
			return nil, shared.Storage("scan unfulfilled row", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate unfulfilled items", err)
	}
	return out, nil
}
