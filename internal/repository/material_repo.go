package repository

import (
	"context"
	"errors"
	"fmt"

	"pathshala/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicatePurchase is returned when a second non-terminal purchase for
// the same (student, material) pair hits the partial unique index.
var ErrDuplicatePurchase = errors.New("duplicate purchase for student and material")

// MaterialRepository is the material directory and purchase store.
type MaterialRepository interface {
	CreateMaterial(ctx context.Context, m *model.Material) error
	// GetMaterialByID returns the material, or nil when absent.
	GetMaterialByID(ctx context.Context, materialID string) (*model.Material, error)
	ListMaterials(ctx context.Context) ([]model.Material, error)
	ListFreeMaterials(ctx context.Context) ([]model.Material, error)
	UpdateMaterial(ctx context.Context, m *model.Material) error
	DeleteMaterial(ctx context.Context, materialID string) (bool, error)

	CreatePurchase(ctx context.Context, p *model.MaterialPurchase) error
	GetPurchaseByID(ctx context.Context, purchaseID string) (*model.MaterialPurchase, error)
	ListPendingPurchases(ctx context.Context) ([]model.MaterialPurchase, error)
	// ApprovePendingPurchase moves a pending purchase to approved. Returns
	// false when the purchase is absent or already approved.
	ApprovePendingPurchase(ctx context.Context, purchaseID string) (bool, error)
}

type materialRepo struct {
	pool *pgxpool.Pool
}

// NewMaterialRepo creates a new MaterialRepository
func NewMaterialRepo(pool *pgxpool.Pool) MaterialRepository {
	return &materialRepo{pool: pool}
}

const materialColumns = `id, title, price, image_url, access_control, for_courses, files, created_at, updated_at`

func scanMaterial(row pgx.Row, m *model.Material) error {
	return row.Scan(
		&m.MaterialID,
		&m.Title,
		&m.Price,
		&m.ImageURL,
		&m.AccessControl,
		&m.ForCourses,
		&m.Files,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (r *materialRepo) CreateMaterial(ctx context.Context, m *model.Material) error {
	query := `
		INSERT INTO materials (title, price, image_url, access_control, for_courses, files)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + materialColumns
	row := r.pool.QueryRow(ctx, query, m.Title, m.Price, m.ImageURL, m.AccessControl, m.ForCourses, m.Files)
	if err := scanMaterial(row, m); err != nil {
		return fmt.Errorf("creating material: %w", err)
	}
	return nil
}

func (r *materialRepo) GetMaterialByID(ctx context.Context, materialID string) (*model.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	var m model.Material
	err := scanMaterial(r.pool.QueryRow(ctx, query, materialID), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting material: %w", err)
	}
	return &m, nil
}

func (r *materialRepo) ListMaterials(ctx context.Context) ([]model.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying materials: %w", err)
	}
	defer rows.Close()
	return collectMaterials(rows)
}

func (r *materialRepo) ListFreeMaterials(ctx context.Context) ([]model.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE access_control = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, model.AccessFree)
	if err != nil {
		return nil, fmt.Errorf("querying free materials: %w", err)
	}
	defer rows.Close()
	return collectMaterials(rows)
}

func collectMaterials(rows pgx.Rows) ([]model.Material, error) {
	var materials []model.Material
	for rows.Next() {
		var m model.Material
		if err := scanMaterial(rows, &m); err != nil {
			return nil, fmt.Errorf("scanning material row: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating material rows: %w", err)
	}
	if len(materials) == 0 {
		return []model.Material{}, nil
	}
	return materials, nil
}

func (r *materialRepo) UpdateMaterial(ctx context.Context, m *model.Material) error {
	query := `
		UPDATE materials
		SET title = $1, price = $2, image_url = $3, access_control = $4, for_courses = $5, files = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + materialColumns
	row := r.pool.QueryRow(ctx, query, m.Title, m.Price, m.ImageURL, m.AccessControl, m.ForCourses, m.Files, m.MaterialID)
	if err := scanMaterial(row, m); err != nil {
		return fmt.Errorf("updating material: %w", err)
	}
	return nil
}

func (r *materialRepo) DeleteMaterial(ctx context.Context, materialID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, materialID)
	if err != nil {
		return false, fmt.Errorf("deleting material: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *materialRepo) CreatePurchase(ctx context.Context, p *model.MaterialPurchase) error {
	query := `
		INSERT INTO material_purchases (material_id, student_id, transaction_id, payment_method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, material_id, student_id, transaction_id, payment_method, status, created_at
	`
	err := r.pool.QueryRow(ctx, query, p.MaterialID, p.StudentID, p.TransactionID, p.PaymentMethod, p.Status).Scan(
		&p.PurchaseID,
		&p.MaterialID,
		&p.StudentID,
		&p.TransactionID,
		&p.PaymentMethod,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePurchase
		}
		return fmt.Errorf("creating material purchase: %w", err)
	}
	return nil
}

func (r *materialRepo) GetPurchaseByID(ctx context.Context, purchaseID string) (*model.MaterialPurchase, error) {
	query := `
		SELECT id, material_id, student_id, transaction_id, payment_method, status, created_at
		FROM material_purchases
		WHERE id = $1
	`
	var p model.MaterialPurchase
	err := r.pool.QueryRow(ctx, query, purchaseID).Scan(
		&p.PurchaseID,
		&p.MaterialID,
		&p.StudentID,
		&p.TransactionID,
		&p.PaymentMethod,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting material purchase: %w", err)
	}
	return &p, nil
}

func (r *materialRepo) ListPendingPurchases(ctx context.Context) ([]model.MaterialPurchase, error) {
	query := `
		SELECT id, material_id, student_id, transaction_id, payment_method, status, created_at
		FROM material_purchases
		WHERE status = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, model.EnrollmentPending)
	if err != nil {
		return nil, fmt.Errorf("querying pending purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.MaterialPurchase
	for rows.Next() {
		var p model.MaterialPurchase
		if err := rows.Scan(
			&p.PurchaseID,
			&p.MaterialID,
			&p.StudentID,
			&p.TransactionID,
			&p.PaymentMethod,
			&p.Status,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase rows: %w", err)
	}
	if len(purchases) == 0 {
		return []model.MaterialPurchase{}, nil
	}
	return purchases, nil
}

func (r *materialRepo) ApprovePendingPurchase(ctx context.Context, purchaseID string) (bool, error) {
	query := `UPDATE material_purchases SET status = $1 WHERE id = $2 AND status = $3`
	tag, err := r.pool.Exec(ctx, query, model.EnrollmentApproved, purchaseID, model.EnrollmentPending)
	if err != nil {
		return false, fmt.Errorf("approving material purchase: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
