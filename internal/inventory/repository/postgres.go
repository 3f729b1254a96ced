package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/omnistore/fulfillment-service/internal/inventory/dto"
	"github.com/omnistore/fulfillment-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetVariant(ctx context.Context, variantID string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.DB.GetContext(ctx, &v, `SELECT * FROM product_variants WHERE id = $1`, variantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) BatchGetVariants(ctx context.Context, variantIDs []string) ([]model.ProductVariant, error) {
	if len(variantIDs) == 0 {
		return []model.ProductVariant{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM product_variants WHERE id IN (?)`, variantIDs)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var items []model.ProductVariant
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

// The guard `current_stock - reserved_stock >= qty` and the write happen in
// one statement; the database serializes them per row.
const deductQuery = `
	UPDATE product_variants
	SET current_stock = current_stock - $2,
	    reserved_stock = reserved_stock + $2,
	    updated_at = now()
	WHERE id = $1 AND current_stock - reserved_stock >= $2
	RETURNING sku, current_stock, reserved_stock
`

func (r *PGRepository) DeductIfSufficient(ctx context.Context, variantID string, qty int) (*dto.DeductionResult, bool, error) {
	var sku string
	var stockAfter, reservedAfter int

	err := r.DB.QueryRowContext(ctx, deductQuery, variantID, qty).Scan(&sku, &stockAfter, &reservedAfter)
	if err == nil {
		return &dto.DeductionResult{
			VariantID:      variantID,
			SKU:            sku,
			StockBefore:    stockAfter + qty,
			StockAfter:     stockAfter,
			ReservedBefore: reservedAfter - qty,
			ReservedAfter:  reservedAfter,
			AvailableStock: stockAfter - reservedAfter,
		}, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	// Guard rejected the write: report the current counts.
	v, err := r.GetVariant(ctx, variantID)
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, &model.NotFoundError{Entity: "product variant", ID: variantID}
	}
	return &dto.DeductionResult{
		VariantID:      variantID,
		SKU:            v.SKU,
		StockBefore:    v.CurrentStock,
		StockAfter:     v.CurrentStock,
		ReservedBefore: v.ReservedStock,
		ReservedAfter:  v.ReservedStock,
		AvailableStock: v.AvailableStock(),
	}, false, nil
}

// DeductBatch runs every line inside one transaction. A single failing line
// rolls back all of them.
func (r *PGRepository) DeductBatch(ctx context.Context, items []dto.StockItem, orderID string) (bool, []dto.StockShortage, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, nil, err
	}
	defer tx.Rollback()

	var shortages []dto.StockShortage
	type applied struct {
		item       dto.StockItem
		sku        string
		stockAfter int
	}
	var committed []applied

	for _, it := range items {
		var sku string
		var stockAfter, reservedAfter int
		err := tx.QueryRowContext(ctx, deductQuery, it.VariantID, it.Quantity).Scan(&sku, &stockAfter, &reservedAfter)
		if err == nil {
			committed = append(committed, applied{item: it, sku: sku, stockAfter: stockAfter})
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return false, nil, err
		}

		var v model.ProductVariant
		if err := tx.GetContext(ctx, &v, `SELECT * FROM product_variants WHERE id = $1`, it.VariantID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				shortages = append(shortages, dto.StockShortage{
					VariantID: it.VariantID, Requested: it.Quantity, Available: 0,
				})
				continue
			}
			return false, nil, err
		}
		shortages = append(shortages, dto.StockShortage{
			VariantID: it.VariantID, SKU: v.SKU, Requested: it.Quantity, Available: v.AvailableStock(),
		})
	}

	if len(shortages) > 0 {
		return false, shortages, nil // rollback via defer
	}

	for _, a := range committed {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stock_movements (
				id, variant_id, movement_type, quantity_change,
				quantity_before, quantity_after, reference_type, reference_id,
				notes, created_at
			)
			VALUES (gen_random_uuid(), $1, 'sale', $2, $3, $4, 'order', $5, 'stock deducted for order', now())
		`, a.item.VariantID, -a.item.Quantity, a.stockAfter+a.item.Quantity, a.stockAfter, orderID)
		if err != nil {
			return false, nil, fmt.Errorf("failed to log movement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

// RestoreForItem always decrements reserved_stock, floored at zero. If this
// order's reservation was already consumed by a confirm, the decrement can
// take up another order's reservation on the same variant instead.
func (r *PGRepository) RestoreForItem(ctx context.Context, variantID string, qty int) (*dto.DeductionResult, error) {
	var sku string
	var stockAfter, reservedAfter int
	err := r.DB.QueryRowContext(ctx, `
		UPDATE product_variants
		SET current_stock = current_stock + $2,
		    reserved_stock = GREATEST(reserved_stock - $2, 0),
		    updated_at = now()
		WHERE id = $1
		RETURNING sku, current_stock, reserved_stock
	`, variantID, qty).Scan(&sku, &stockAfter, &reservedAfter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &model.NotFoundError{Entity: "product variant", ID: variantID}
		}
		return nil, err
	}
	return &dto.DeductionResult{
		VariantID:      variantID,
		SKU:            sku,
		StockBefore:    stockAfter - qty,
		StockAfter:     stockAfter,
		ReservedBefore: reservedAfter + qty,
		ReservedAfter:  reservedAfter,
		AvailableStock: stockAfter - reservedAfter,
	}, nil
}

func (r *PGRepository) ConfirmForItem(ctx context.Context, variantID string, qty int) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE product_variants
		SET reserved_stock = GREATEST(reserved_stock - $2, 0),
		    updated_at = now()
		WHERE id = $1
	`, variantID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &model.NotFoundError{Entity: "product variant", ID: variantID}
	}
	return nil
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	query := `
		INSERT INTO stock_movements (
			id, variant_id, movement_type, quantity_change,
			quantity_before, quantity_after, reference_type, reference_id,
			notes, created_at
		)
		VALUES (
			:id, :variant_id, :movement_type, :quantity_change,
			:quantity_before, :quantity_after, :reference_type, :reference_id,
			:notes, :created_at
		)
	`
	_, err := r.DB.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) AdjustWithMovement(ctx context.Context, v *model.ProductVariant, movement *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE product_variants
		SET current_stock = $2, updated_at = $3
		WHERE id = $1
	`, v.ID, v.CurrentStock, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update variant stock: %w", err)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO stock_movements (
			id, variant_id, movement_type, quantity_change,
			quantity_before, quantity_after, reference_type, reference_id,
			notes, created_at
		)
		VALUES (
			:id, :variant_id, :movement_type, :quantity_change,
			:quantity_before, :quantity_after, :reference_type, :reference_id,
			:notes, :created_at
		)
	`, movement)
	if err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}
