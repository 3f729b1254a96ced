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

func (r *PGRepository) Create(ctx context.Context, t *model.InventoryTransaction) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO inventory_transactions (
			id, type, status, reference_transaction_id, vendor_id,
			created_at, updated_at
		)
		VALUES (
			:id, :type, :status, :reference_transaction_id, :vendor_id,
			:created_at, :updated_at
		)
	`, t)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, it := range t.Items {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO inventory_transaction_items (
				id, transaction_id, variant_id, quantity, unit_cost
			)
			VALUES (:id, :transaction_id, :variant_id, :quantity, :unit_cost)
		`, it)
		if err != nil {
			return fmt.Errorf("failed to insert transaction item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.InventoryTransaction, error) {
	var t model.InventoryTransaction
	err := r.DB.GetContext(ctx, &t, `SELECT * FROM inventory_transactions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

func (r *PGRepository) GetItems(ctx context.Context, transactionID string) ([]model.InventoryTransactionItem, error) {
	var items []model.InventoryTransactionItem
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM inventory_transaction_items WHERE transaction_id = $1`, transactionID)
	return items, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE inventory_transactions
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &model.NotFoundError{Entity: "inventory transaction", ID: id}
	}
	return nil
}

func (r *PGRepository) ListApprovedReturns(ctx context.Context, referenceTransactionID string) ([]model.InventoryTransaction, error) {
	var txs []model.InventoryTransaction
	err := r.DB.SelectContext(ctx, &txs, `
		SELECT * FROM inventory_transactions
		WHERE reference_transaction_id = $1
		  AND type = 'purchase_return'
		  AND status = 'approved'
		ORDER BY created_at
	`, referenceTransactionID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return txs, nil
	}

	ids := make([]string, 0, len(txs))
	for _, t := range txs {
		ids = append(ids, t.ID)
	}
	query, args, err := sqlx.In(`SELECT * FROM inventory_transaction_items WHERE transaction_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var items []model.InventoryTransactionItem
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}

	byTx := map[string][]model.InventoryTransactionItem{}
	for _, it := range items {
		byTx[it.TransactionID] = append(byTx[it.TransactionID], it)
	}
	for i := range txs {
		txs[i].Items = byTx[txs[i].ID]
	}
	return txs, nil
}
