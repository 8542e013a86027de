package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/nordmart/storefront/internal/domain"
)

type orderRepository struct {
	registry *Registry
}

const orderColumns = `id, customer_id, total_price, payment_status, payment_id, order_status,
	customer_firstname, customer_lastname, customer_email, customer_phone,
	customer_street_address, customer_postal_code, customer_city, customer_country, created_at`

const orderItemColumns = `id, order_id, product_id, product_name, quantity, unit_price`

func (r *orderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	var out domain.Order
	err := r.registry.RunInTx(ctx, func(ctx context.Context) error {
		const query = `INSERT INTO orders (customer_id, total_price, payment_status, payment_id, order_status,
		                customer_firstname, customer_lastname, customer_email, customer_phone,
		                customer_street_address, customer_postal_code, customer_city, customer_country)
		               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		               RETURNING ` + orderColumns

		row := r.registry.q(ctx).QueryRowContext(ctx, query,
			order.CustomerID, order.TotalPrice, order.PaymentStatus, order.PaymentID, order.OrderStatus,
			order.CustomerFirstname, order.CustomerLastname, order.CustomerEmail, order.CustomerPhone,
			order.CustomerStreetAddress, order.CustomerPostalCode, order.CustomerCity, order.CustomerCountry)
		header, err := scanOrder(row)
		if err != nil {
			return wrapError("orders.insert", err)
		}

		const itemQuery = `INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
		                   VALUES ($1, $2, $3, $4, $5)
		                   RETURNING ` + orderItemColumns
		items := make([]domain.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			row := r.registry.q(ctx).QueryRowContext(ctx, itemQuery,
				header.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
			saved, err := scanOrderItem(row)
			if err != nil {
				return wrapError("orders.insert_item", err)
			}
			items = append(items, saved)
		}
		header.Items = items
		out = header
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (r *orderRepository) Patch(ctx context.Context, orderID int64, patch domain.OrderPatch) (domain.Order, error) {
	sets := make([]string, 0, 3)
	args := []any{orderID}
	if patch.PaymentStatus != nil {
		args = append(args, *patch.PaymentStatus)
		sets = append(sets, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if patch.PaymentID != nil {
		args = append(args, *patch.PaymentID)
		sets = append(sets, fmt.Sprintf("payment_id = $%d", len(args)))
	}
	if patch.OrderStatus != nil {
		args = append(args, *patch.OrderStatus)
		sets = append(sets, fmt.Sprintf("order_status = $%d", len(args)))
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, orderID)
	}

	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), orderColumns)
	header, err := scanOrder(r.registry.q(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Order{}, wrapError("orders.patch", err)
	}
	items, err := r.ListItems(ctx, header.ID)
	if err != nil {
		return domain.Order{}, err
	}
	header.Items = items
	return header, nil
}

func (r *orderRepository) FindByID(ctx context.Context, orderID int64) (domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	header, err := scanOrder(r.registry.q(ctx).QueryRowContext(ctx, query, orderID))
	if err != nil {
		return domain.Order{}, wrapError("orders.find_by_id", err)
	}
	items, err := r.ListItems(ctx, header.ID)
	if err != nil {
		return domain.Order{}, err
	}
	header.Items = items
	return header, nil
}

func (r *orderRepository) FindByPaymentID(ctx context.Context, paymentID string) (domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE payment_id = $1`

	header, err := scanOrder(r.registry.q(ctx).QueryRowContext(ctx, query, paymentID))
	if err != nil {
		return domain.Order{}, wrapError("orders.find_by_payment_id", err)
	}
	items, err := r.ListItems(ctx, header.ID)
	if err != nil {
		return domain.Order{}, err
	}
	header.Items = items
	return header, nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	return r.listWithItems(ctx, query)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`
	return r.listWithItems(ctx, query, customerID)
}

func (r *orderRepository) listWithItems(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.registry.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("orders.list", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, wrapError("orders.list", err)
		}
		order.Items = []domain.OrderItem{}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("orders.list", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	index := make(map[int64]int, len(orders))
	for i, order := range orders {
		ids = append(ids, order.ID)
		index[order.ID] = i
	}

	const itemQuery = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	itemRows, err := r.registry.q(ctx).QueryContext(ctx, itemQuery, pq.Array(ids))
	if err != nil {
		return nil, wrapError("orders.list_items", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			return nil, wrapError("orders.list_items", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, wrapError("orders.list_items", err)
	}
	return orders, nil
}

func (r *orderRepository) Delete(ctx context.Context, orderID int64) error {
	// order_items rows go with the header via ON DELETE CASCADE.
	res, err := r.registry.q(ctx).ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return wrapError("orders.delete", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFoundError("orders.delete", sql.ErrNoRows)
	}
	return nil
}

func (r *orderRepository) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const query = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.registry.q(ctx).QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, wrapError("orders.list_items", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, wrapError("orders.list_items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("orders.list_items", err)
	}
	return items, nil
}

func (r *orderRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (domain.OrderItem, error) {
	const query = `UPDATE order_items SET quantity = $2 WHERE id = $1
	               RETURNING ` + orderItemColumns

	item, err := scanOrderItem(r.registry.q(ctx).QueryRowContext(ctx, query, itemID, quantity))
	if err != nil {
		return domain.OrderItem{}, wrapError("orders.update_item", err)
	}
	return item, nil
}

func (r *orderRepository) DeleteItem(ctx context.Context, itemID int64) error {
	res, err := r.registry.q(ctx).ExecContext(ctx,
		`DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return wrapError("orders.delete_item", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFoundError("orders.delete_item", sql.ErrNoRows)
	}
	return nil
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.TotalPrice, &o.PaymentStatus, &o.PaymentID, &o.OrderStatus,
		&o.CustomerFirstname, &o.CustomerLastname, &o.CustomerEmail, &o.CustomerPhone,
		&o.CustomerStreetAddress, &o.CustomerPostalCode, &o.CustomerCity, &o.CustomerCountry, &o.CreatedAt)
	return o, err
}

func scanOrderItem(row rowScanner) (domain.OrderItem, error) {
	var item domain.OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice)
	return item, err
}
