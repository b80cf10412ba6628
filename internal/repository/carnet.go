package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aduanatech/docextract/internal/common"
	"github.com/aduanatech/docextract/internal/entity"
)

// ListParams controls pagination and filtering of carnet listings.
type ListParams struct {
	Limit  int    // page size; defaults to 50
	Offset int    // rows to skip
	Search string // substring match on numero_carnet or nombre_titular
}

const defaultListLimit = 50

// CarnetRepository persists extracted customs carnets.
type CarnetRepository interface {
	Create(ctx context.Context, c *entity.CarnetAduanero) (*entity.CarnetAduanero, error)
	Update(ctx context.Context, c *entity.CarnetAduanero) (*entity.CarnetAduanero, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*entity.CarnetAduanero, error)
	GetByNumero(ctx context.Context, numero string) (*entity.CarnetAduanero, error)
	List(ctx context.Context, params ListParams) ([]*entity.CarnetAduanero, error)
	ExistsByNumero(ctx context.Context, numero string) (bool, error)
	ExistsByHash(ctx context.Context, sourceHash string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*entity.CarnetStats, error)
}

const carnetColumns = `id, numero_carnet, fecha_emision, fecha_vencimiento,
	nombre_titular, rut_titular, aduana, patente_vehiculo,
	archivo_origen, source_hash, created_at, updated_at`

type carnetRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCarnetRepository(db *sql.DB, logger *slog.Logger) CarnetRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &carnetRepository{db: db, logger: logger}
}

func (r *carnetRepository) Create(ctx context.Context, c *entity.CarnetAduanero) (*entity.CarnetAduanero, error) {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carnets_aduaneros
			(numero_carnet, fecha_emision, fecha_vencimiento, nombre_titular,
			 rut_titular, aduana, patente_vehiculo, archivo_origen, source_hash,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		c.NumeroCarnet, c.FechaEmision, nullTime(c.FechaVencimiento), c.NombreTitular,
		c.RutTitular, c.Aduana, c.PatenteVehiculo, c.ArchivoOrigen, c.SourceHash,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		r.logger.Error("carnet.create.fail", "numero", c.NumeroCarnet, "error", err)
		return nil, common.WrapError(err, "create carnet")
	}

	r.logger.Info("carnet.create.ok", "id", c.ID, "numero", c.NumeroCarnet)
	return c, nil
}

func (r *carnetRepository) Update(ctx context.Context, c *entity.CarnetAduanero) (*entity.CarnetAduanero, error) {
	c.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE carnets_aduaneros SET
			numero_carnet = $1, fecha_emision = $2, fecha_vencimiento = $3,
			nombre_titular = $4, rut_titular = $5, aduana = $6,
			patente_vehiculo = $7, archivo_origen = $8, source_hash = $9,
			updated_at = $10
		WHERE id = $11`,
		c.NumeroCarnet, c.FechaEmision, nullTime(c.FechaVencimiento),
		c.NombreTitular, c.RutTitular, c.Aduana,
		c.PatenteVehiculo, c.ArchivoOrigen, c.SourceHash,
		c.UpdatedAt, c.ID,
	)
	if err != nil {
		return nil, common.WrapError(err, "update carnet")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("update carnet %d: %w", c.ID, common.ErrNotFound)
	}
	return c, nil
}

func (r *carnetRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carnets_aduaneros WHERE id = $1`, id)
	if err != nil {
		return common.WrapError(err, "delete carnet")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete carnet %d: %w", id, common.ErrNotFound)
	}
	r.logger.Info("carnet.delete.ok", "id", id)
	return nil
}

func (r *carnetRepository) GetByID(ctx context.Context, id int64) (*entity.CarnetAduanero, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+carnetColumns+` FROM carnets_aduaneros WHERE id = $1`, id)
	return scanCarnet(row)
}

func (r *carnetRepository) GetByNumero(ctx context.Context, numero string) (*entity.CarnetAduanero, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+carnetColumns+` FROM carnets_aduaneros WHERE numero_carnet = $1`, numero)
	return scanCarnet(row)
}

func (r *carnetRepository) List(ctx context.Context, params ListParams) ([]*entity.CarnetAduanero, error) {
	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}

	query := `SELECT ` + carnetColumns + ` FROM carnets_aduaneros`
	args := make([]any, 0, 3)
	if params.Search != "" {
		query += ` WHERE numero_carnet LIKE $1 OR nombre_titular LIKE $1`
		args = append(args, "%"+params.Search+"%")
	}
	query += fmt.Sprintf(` ORDER BY fecha_emision DESC, id DESC LIMIT $%d OFFSET $%d`,
		len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list carnets")
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []*entity.CarnetAduanero
	for rows.Next() {
		c, err := scanCarnet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "list carnets")
	}
	return out, nil
}

func (r *carnetRepository) ExistsByNumero(ctx context.Context, numero string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM carnets_aduaneros WHERE numero_carnet = $1)`, numero)
}

func (r *carnetRepository) ExistsByHash(ctx context.Context, sourceHash string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM carnets_aduaneros WHERE source_hash = $1)`, sourceHash)
}

func (r *carnetRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, common.WrapError(err, "exists carnet")
	}
	return found, nil
}

func (r *carnetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM carnets_aduaneros`).Scan(&n); err != nil {
		return 0, common.WrapError(err, "count carnets")
	}
	return n, nil
}

func (r *carnetRepository) Stats(ctx context.Context) (*entity.CarnetStats, error) {
	var (
		stats      entity.CarnetStats
		lastLoaded sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN fecha_vencimiento IS NULL OR fecha_vencimiento >= $1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN fecha_vencimiento IS NOT NULL AND fecha_vencimiento < $1 THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT CASE WHEN aduana <> '' THEN aduana END),
			MAX(created_at)
		FROM carnets_aduaneros`, time.Now().UTC(),
	).Scan(&stats.Total, &stats.Vigentes, &stats.Vencidos, &stats.AduanasDistintas, &lastLoaded)
	if err != nil {
		return nil, common.WrapError(err, "carnet stats")
	}
	if lastLoaded.Valid {
		stats.UltimaFechaCarga = &lastLoaded.Time
	}
	return &stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCarnet(s scanner) (*entity.CarnetAduanero, error) {
	var (
		c           entity.CarnetAduanero
		vencimiento sql.NullTime
	)
	err := s.Scan(
		&c.ID, &c.NumeroCarnet, &c.FechaEmision, &vencimiento,
		&c.NombreTitular, &c.RutTitular, &c.Aduana, &c.PatenteVehiculo,
		&c.ArchivoOrigen, &c.SourceHash, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "scan carnet")
	}
	if vencimiento.Valid {
		c.FechaVencimiento = &vencimiento.Time
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
