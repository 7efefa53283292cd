package procurement

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

type criticalRepoPG struct{ pool *pgxpool.Pool }

func NewCriticalRepoPG(pool *pgxpool.Pool) CriticalRepository {
	return &criticalRepoPG{pool: pool}
}

func (r *criticalRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *criticalRepoPG) Add(ctx context.Context, itemID string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insumos_criticos (id_insumo) VALUES ($1)
		ON CONFLICT (id_insumo) DO NOTHING`, itemID)
	if err != nil {
		return shared.Storage("add critical item", err)
	}
	return nil
}

func (r *criticalRepoPG) Remove(ctx context.Context, itemID string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM insumos_criticos WHERE id_insumo = $1`, itemID)
	if err != nil {
		return shared.Storage("remove critical item", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("item %s is not on the watch list", itemID)
	}
	return nil
}

func (r *criticalRepoPG) List(ctx context.Context) ([]*CriticalItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT c.id_insumo, COALESCE(i.nombre, ''), COALESCE(i.cantidad, 0), l.fecha_vencimiento
		FROM insumos_criticos c
		LEFT JOIN insumos i ON i.id_insumo = c.id_insumo
		LEFT JOIN lotes l ON l.id_lote = i.id_lote
		ORDER BY i.nombre`)
	if err != nil {
		return nil, shared.Storage("list critical items", err)
	}
	defer rows.Close()

	var out []*CriticalItem
	for rows.Next() {
		var item CriticalItem
		if err := rows.Scan(&item.ItemID, &item.ItemName, &item.Quantity, &item.ExpirationDate); err != nil {
			return nil, shared.Storage("scan critical item", err)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate critical items", err)
	}
	return out, nil
}

type suggestionRepoPG struct{ pool *pgxpool.Pool }

func NewSuggestionRepoPG(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepoPG{pool: pool}
}

func (r *suggestionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *suggestionRepoPG) Insert(ctx context.Context, s *Suggestion) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO sugerencias (nombre, cantidad, fecha_creacion)
		VALUES ($1, $2, $3)
		RETURNING id_sugerencia`,
		s.ItemName, s.Quantity, s.CreatedAt).Scan(&id)
	if err != nil {
		return 0, shared.Storage("insert suggestion", err)
	}
	return id, nil
}

func (r *suggestionRepoPG) List(ctx context.Context) ([]*Suggestion, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id_sugerencia, nombre, cantidad, fecha_creacion
		FROM sugerencias
		ORDER BY fecha_creacion DESC`)
	if err != nil {
		return nil, shared.Storage("list suggestions", err)
	}
	defer rows.Close()

	var out []*Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.ID, &s.ItemName, &s.Quantity, &s.CreatedAt); err != nil {
			return nil, shared.Storage("scan suggestion", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate suggestions", err)
	}
	return out, nil
}

func (r *suggestionRepoPG) CopyAllToHistory(ctx context.Context, archivedAt time.Time) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO historico_compras (nombre, cantidad, fecha_archivo)
		SELECT nombre, cantidad, $1 FROM sugerencias`, archivedAt)
	if err != nil {
		return 0, shared.Storage("archive suggestions", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *suggestionRepoPG) DeleteAll(ctx context.Context) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM sugerencias`); err != nil {
		return shared.Storage("clear suggestions", err)
	}
	return nil
}

func (r *suggestionRepoPG) History(ctx context.Context) ([]*HistoryEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id_historico, nombre, cantidad, fecha_archivo
		FROM historico_compras
		ORDER BY fecha_archivo DESC, id_historico DESC`)
	if err != nil {
		return nil, shared.Storage("list purchase history", err)
	}
	defer rows.Close()

	var out []*HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.ItemName, &h.Quantity, &h.ArchivedAt); err != nil {
			return nil, shared.Storage("scan history entry", err)
		}
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate purchase history", err)
	}
	return out, nil
}
