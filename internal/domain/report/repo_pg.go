package report

import (
	"context"
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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reportCols = `id_reporte, asunto, descripcion, reportado_por, fecha, atendido, fecha_atendido`

func (r *repoPG) Insert(ctx context.Context, rep *Report) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO reportes (asunto, descripcion, reportado_por, fecha, atendido)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id_reporte`,
		rep.Subject, rep.Description, rep.ReportedBy, rep.CreatedAt).Scan(&id)
	if err != nil {
		return 0, shared.Storage("insert report", err)
	}
	return id, nil
}

func (r *repoPG) List(ctx context.Context) ([]*Report, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+` FROM reportes ORDER BY fecha DESC`)
	if err != nil {
		return nil, shared.Storage("list reports", err)
	}
	return collectReports(rows)
}

func (r *repoPG) ListByDate(ctx context.Context, day time.Time) ([]*Report, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+reportCols+` FROM reportes
		WHERE fecha >= $1 AND fecha < $2
		ORDER BY fecha ASC`,
		day.Truncate(24*time.Hour), day.Truncate(24*time.Hour).AddDate(0, 0, 1))
	if err != nil {
		return nil, shared.Storage("list reports by date", err)
	}
	return collectReports(rows)
}

func collectReports(rows pgx.Rows) ([]*Report, error) {
	defer rows.Close()
	var out []*Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.Subject, &rep.Description, &rep.ReportedBy,
			&rep.CreatedAt, &rep.Attended, &rep.AttendedAt); err != nil {
			return nil, shared.Storage("scan report", err)
		}
		out = append(out, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate reports", err)
	}
	return out, nil
}

func (r *repoPG) MarkAttended(ctx context.Context, id int64, attendedAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reportes
		SET atendido = TRUE, fecha_atendido = $2
		WHERE id_reporte = $1 AND atendido = FALSE`, id, attendedAt)
	if err != nil {
		return shared.Storage("mark report attended", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("open report %d not found", id)
	}
	return nil
}
