package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/entity"
)

// DBTX is the subset of pgxpool.Pool the repository needs; tests substitute
// a fake.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MedicinePatch holds the writable columns of a donated_meds row. Nil fields
// are left untouched, mirroring a partial PATCH.
type MedicinePatch struct {
	MedicineName *string
	Quantity     *int
	ExpiryDate   *string
	Ingredients  *string
	RawText      *string
	Status       *string
}

type MedicineRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.DonatedMedicine, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, status string) ([]*entity.DonatedMedicine, error)
	Create(ctx context.Context, med *entity.DonatedMedicine) (int64, error)
	UpdateExtraction(ctx context.Context, id int64, patch MedicinePatch) error
}

type medicineRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewMedicineRepository(db DBTX, logger *slog.Logger) MedicineRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &medicineRepository{db: db, logger: logger}
}

const medicineColumns = `id, medicine_name, quantity, expiry_date, ingredients, raw_text, status, image_url, date_added, updated_at`

func scanMedicine(row pgx.Row) (*entity.DonatedMedicine, error) {
	var m entity.DonatedMedicine
	err := row.Scan(&m.ID, &m.MedicineName, &m.Quantity, &m.ExpiryDate, &m.Ingredients,
		&m.RawText, &m.Status, &m.ImageURL, &m.DateAdded, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicineRepository) GetByID(ctx context.Context, id int64) (*entity.DonatedMedicine, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+medicineColumns+` FROM donated_meds WHERE id = $1`, id)
	m, err := scanMedicine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("MEDICINE_NOT_FOUND",
			fmt.Sprintf("donated_meds id %d", id), common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get medicine", "id", id, "error", err)
		return nil, common.NewAppError("DB_QUERY", "get medicine", err)
	}
	return m, nil
}

func (r *medicineRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM donated_meds WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check medicine existence", "id", id, "error", err)
		return false, common.NewAppError("DB_QUERY", "medicine exists", err)
	}
	return exists, nil
}

func (r *medicineRepository) List(ctx context.Context, status string) ([]*entity.DonatedMedicine, error) {
	q := `SELECT ` + medicineColumns + ` FROM donated_meds`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY date_added DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list medicines", "status", status, "error", err)
		return nil, common.NewAppError("DB_QUERY", "list medicines", err)
	}
	defer rows.Close()

	var out []*entity.DonatedMedicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "list medicines", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_QUERY", "list medicines", err)
	}
	return out, nil
}

func (r *medicineRepository) Create(ctx context.Context, med *entity.DonatedMedicine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO donated_meds (medicine_name, quantity, expiry_date, ingredients, raw_text, status, image_url, date_added, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		 RETURNING id`,
		med.MedicineName, med.Quantity, med.ExpiryDate, med.Ingredients,
		med.RawText, med.Status, med.ImageURL,
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to create medicine", "error", err)
		return 0, common.NewAppError("DB_EXEC", "create medicine", err)
	}
	return id, nil
}

func (r *medicineRepository) UpdateExtraction(ctx context.Context, id int64, patch MedicinePatch) error {
	q, args := buildUpdate(id, patch)
	if q == "" {
		return nil
	}
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to update medicine", "id", id, "error", err)
		return common.NewAppError("DB_EXEC", "update medicine", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NewAppError("MEDICINE_NOT_FOUND",
			fmt.Sprintf("donated_meds id %d", id), common.ErrNotFound)
	}
	return nil
}

// buildUpdate assembles the partial UPDATE from the non-nil patch fields.
// Returns an empty query when there is nothing to set.
func buildUpdate(id int64, patch MedicinePatch) (string, []any) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.MedicineName != nil {
		add("medicine_name", *patch.MedicineName)
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if patch.ExpiryDate != nil {
		add("expiry_date", *patch.ExpiryDate)
	}
	if patch.Ingredients != nil {
		add("ingredients", *patch.Ingredients)
	}
	if patch.RawText != nil {
		add("raw_text", *patch.RawText)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if len(sets) == 0 {
		return "", nil
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	q := fmt.Sprintf("UPDATE donated_meds SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	return q, args
}
