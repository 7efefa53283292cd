package catalog

import (
	"context"
	"errors"

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

// =========== Item Repository ===========

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository {
	return &itemRepoPG{pool: pool}
}

func (r *itemRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const itemCols = `id_insumo, nombre, presentacion, cantidad, COALESCE(id_lote, ''), COALESCE(id_laboratorio, 0)`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Presentation, &it.Quantity, &it.LotID, &it.LabID)
	return &it, err
}

func (r *itemRepoPG) GetByID(ctx context.Context, id string) (*Item, error) {
	it, err := scanItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+itemCols+` FROM insumos WHERE id_insumo = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFoundf("item %s not found", id)
	}
	if err != nil {
		return nil, shared.Storage("get item", err)
	}
	return it, nil
}

func (r *itemRepoPG) GetDetail(ctx context.Context, id string) (*ItemDetail, error) {
	var d ItemDetail
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT i.cantidad, l.fecha_vencimiento
		FROM insumos i
		LEFT JOIN lotes l ON i.id_lote = l.id_lote
		WHERE i.id_insumo = $1`, id).Scan(&d.Quantity, &d.ExpirationDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFoundf("item %s not found", id)
	}
	if err != nil {
		return nil, shared.Storage("get item detail", err)
	}
	return &d, nil
}

func (r *itemRepoPG) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT 1 FROM insumos WHERE id_insumo = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, shared.Storage("check item existence", err)
	}
	return true, nil
}

func (r *itemRepoPG) List(ctx context.Context, limit, offset int) ([]*ItemWithLot, int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT i.id_insumo, i.nombre, i.presentacion, i.cantidad,
		       COALESCE(i.id_lote, ''), COALESCE(i.id_laboratorio, 0),
		       l.fecha_recepcion, l.fecha_vencimiento
		FROM insumos i
		LEFT JOIN lotes l ON i.id_lote = l.id_lote
		ORDER BY i.nombre ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, shared.Storage("list items", err)
	}
	defer rows.Close()

	var items []*ItemWithLot
	for rows.Next() {
		var it ItemWithLot
		if err := rows.Scan(&it.ID, &it.Name, &it.Presentation, &it.Quantity,
			&it.LotID, &it.LabID, &it.ReceivedDate, &it.ExpirationDate); err != nil {
			return nil, 0, shared.Storage("scan item row", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage("iterate items", err)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insumos`).Scan(&total); err != nil {
		return nil, 0, shared.Storage("count items", err)
	}

	return items, total, nil
}

func (r *itemRepoPG) Search(ctx context.Context, q string, limit int) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+itemCols+` FROM insumos
		WHERE nombre LIKE '%' || $1 || '%'
		ORDER BY nombre ASC
		LIMIT $2`, NormalizeText(q), limit)
	if err != nil {
		return nil, shared.Storage("search items", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, shared.Storage("scan item row", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage("iterate items", err)
	}
	return items, nil
}

func (r *itemRepoPG) Insert(ctx context.Context, item *Item) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insumos (id_insumo, nombre, presentacion, cantidad, id_lote, id_laboratorio)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0))`,
		item.ID, item.Name, item.Presentation, item.Quantity, item.LotID, item.LabID)
	if err != nil {
		return shared.Storage("insert item", err)
	}
	return nil
}

func (r *itemRepoPG) AddQuantity(ctx context.Context, id string, delta int) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE insumos SET cantidad = cantidad + $2 WHERE id_insumo = $1`, id, delta)
	if err != nil {
		return shared.Storage("add item quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("item %s not found", id)
	}
	return nil
}

func (r *itemRepoPG) DeductQuantity(ctx context.Context, id string, qty int) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE insumos SET cantidad = GREATEST(0, cantidad - $2) WHERE id_insumo = $1`, id, qty)
	if err != nil {
		return shared.Storage("deduct item quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("item %s not found", id)
	}
	return nil
}

func (r *itemRepoPG) UpdateStock(ctx context.Context, id string, quantity int, presentation string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE insumos
		SET cantidad = $2,
		    presentacion = CASE WHEN $3 <> '' THEN $3 ELSE presentacion END
		WHERE id_insumo = $1`, id, quantity, presentation)
	if err != nil {
		return shared.Storage("update item stock", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("item %s not found", id)
	}
	return nil
}

func (r *itemRepoPG) Delete(ctx context.Context, id string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM insumos WHERE id_insumo = $1`, id)
	if err != nil {
		return shared.Storage("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("item %s not found", id)
	}
	return nil
}

// =========== Lot Repository ===========

type lotRepoPG struct{ pool *pgxpool.Pool }

func NewLotRepoPG(pool *pgxpool.Pool) LotRepository {
	return &lotRepoPG{pool: pool}
}

func (r *lotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *lotRepoPG) Upsert(ctx context.Context, lot *Lot) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lotes (id_lote, fecha_recepcion, fecha_vencimiento)
		VALUES ($1, $2, $3)
		ON CONFLICT (id_lote) DO UPDATE SET fecha_vencimiento = EXCLUDED.fecha_vencimiento`,
		lot.ID, lot.ReceivedDate, lot.ExpirationDate)
	if err != nil {
		return shared.Storage("upsert lot", err)
	}
	return nil
}

func (r *lotRepoPG) GetByID(ctx context.Context, id string) (*Lot, error) {
	var lot Lot
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id_lote, fecha_recepcion, fecha_vencimiento
		FROM lotes WHERE id_lote = $1`, id).
		Scan(&lot.ID, &lot.ReceivedDate, &lot.ExpirationDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFoundf("lot %s not found", id)
	}
	if err != nil {
		return nil, shared.Storage("get lot", err)
	}
	return &lot, nil
}

// =========== Lab Repository ===========

type labRepoPG struct{ pool *pgxpool.Pool }

func NewLabRepoPG(pool *pgxpool.Pool) LabRepository {
	return &labRepoPG{pool: pool}
}

func (r *labRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *labRepoPG) FindOrCreate(ctx context.Context, name string) (int64, error) {
	// Single-statement upsert keeps lookup-or-create race free under
	// concurrent ingestion batches.
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO laboratorios (nombre) VALUES ($1)
		ON CONFLICT (nombre) DO UPDATE SET nombre = EXCLUDED.nombre
		RETURNING id_laboratorio`, name).Scan(&id)
	if err != nil {
		return 0, shared.Storage("find or create lab", err)
	}
	return id, nil
}
