package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nordmart/storefront/internal/domain"
)

type productRepository struct {
	registry *Registry
}

const productColumns = `id, name, description, image, price, stock, created_at`

func (r *productRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	const query = `INSERT INTO products (name, description, image, price, stock)
	               VALUES ($1, $2, $3, $4, $5)
	               RETURNING ` + productColumns

	row := r.registry.q(ctx).QueryRowContext(ctx, query,
		product.Name, product.Description, product.Image, product.Price, product.Stock)
	out, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, wrapError("products.insert", err)
	}
	return out, nil
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	const query = `UPDATE products
	               SET name = $2, description = $3, image = $4, price = $5, stock = $6
	               WHERE id = $1
	               RETURNING ` + productColumns

	row := r.registry.q(ctx).QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.Image, product.Price, product.Stock)
	out, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, notFoundError("products.update", err)
	}
	if err != nil {
		return domain.Product{}, wrapError("products.update", err)
	}
	return out, nil
}

func (r *productRepository) FindByID(ctx context.Context, productID int64) (domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	row := r.registry.q(ctx).QueryRowContext(ctx, query, productID)
	out, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, wrapError("products.find_by_id", err)
	}
	return out, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	rows, err := r.registry.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("products.list", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Image, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, wrapError("products.list", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("products.list", err)
	}
	return products, nil
}

func (r *productRepository) Delete(ctx context.Context, productID int64) error {
	res, err := r.registry.q(ctx).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return wrapError("products.delete", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFoundError("products.delete", sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Image, &p.Price, &p.Stock, &p.CreatedAt)
	return p, err
}
