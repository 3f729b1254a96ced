package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/omnistore/fulfillment-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO orders (
			id, source, fulfillment_type, status, parent_order_id,
			customer_id, total_amount, assigned_rider_id, courier_name,
			tracking_number, cancel_reason, created_at, updated_at
		)
		VALUES (
			:id, :source, :fulfillment_type, :status, :parent_order_id,
			:customer_id, :total_amount, :assigned_rider_id, :courier_name,
			:tracking_number, :cancel_reason, :created_at, :updated_at
		)
	`, o)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO order_items (id, order_id, variant_id, quantity, unit_price)
			VALUES (:id, :order_id, :variant_id, :quantity, :unit_price)
		`, it)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) GetItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM order_items WHERE order_id = $1`, orderID)
	return items, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, o *model.Order) error {
	res, err := r.DB.NamedExecContext(ctx, `
		UPDATE orders
		SET status = :status,
		    assigned_rider_id = :assigned_rider_id,
		    courier_name = :courier_name,
		    tracking_number = :tracking_number,
		    cancel_reason = :cancel_reason,
		    updated_at = :updated_at
		WHERE id = :id
	`, o)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &model.NotFoundError{Entity: "order", ID: o.ID}
	}
	return nil
}

func (r *PGRepository) ListChildren(ctx context.Context, parentID string) ([]model.Order, error) {
	var children []model.Order
	err := r.DB.SelectContext(ctx, &children,
		`SELECT * FROM orders WHERE parent_order_id = $1 ORDER BY created_at`, parentID)
	return children, err
}

func (r *PGRepository) AddNote(ctx context.Context, note *model.OrderNote) error {
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO order_notes (id, order_id, note, created_at)
		VALUES (:id, :order_id, :note, :created_at)
	`, note)
	return err
}
