package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nordmart/storefront/internal/domain"
)

type customerRepository struct {
	registry *Registry
}

const customerColumns = `id, firstname, lastname, email, password, phone, street_address, postal_code, city, country, created_at`

func (r *customerRepository) Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	const query = `INSERT INTO customers (firstname, lastname, email, password, phone, street_address, postal_code, city, country)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	               RETURNING ` + customerColumns

	row := r.registry.q(ctx).QueryRowContext(ctx, query,
		customer.Firstname, customer.Lastname, customer.Email, customer.Password,
		customer.Phone, customer.StreetAddress, customer.PostalCode, customer.City, customer.Country)
	out, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, wrapError("customers.insert", err)
	}
	return out, nil
}

func (r *customerRepository) Patch(ctx context.Context, customerID int64, patch domain.CustomerPatch) (domain.Customer, error) {
	sets := make([]string, 0, 8)
	args := []any{customerID}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("firstname", patch.Firstname)
	add("lastname", patch.Lastname)
	add("password", patch.Password)
	add("phone", patch.Phone)
	add("street_address", patch.StreetAddress)
	add("postal_code", patch.PostalCode)
	add("city", patch.City)
	add("country", patch.Country)

	if len(sets) == 0 {
		return r.FindByID(ctx, customerID)
	}

	query := fmt.Sprintf(`UPDATE customers SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), customerColumns)
	out, err := scanCustomer(r.registry.q(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Customer{}, wrapError("customers.patch", err)
	}
	return out, nil
}

func (r *customerRepository) FindByID(ctx context.Context, customerID int64) (domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	out, err := scanCustomer(r.registry.q(ctx).QueryRowContext(ctx, query, customerID))
	if err != nil {
		return domain.Customer{}, wrapError("customers.find_by_id", err)
	}
	return out, nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE LOWER(email) = LOWER($1)`

	out, err := scanCustomer(r.registry.q(ctx).QueryRowContext(ctx, query, email))
	if err != nil {
		return domain.Customer{}, wrapError("customers.find_by_email", err)
	}
	return out, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC, id DESC`

	rows, err := r.registry.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("customers.list", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Firstname, &c.Lastname, &c.Email, &c.Password,
			&c.Phone, &c.StreetAddress, &c.PostalCode, &c.City, &c.Country, &c.CreatedAt); err != nil {
			return nil, wrapError("customers.list", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("customers.list", err)
	}
	return customers, nil
}

func (r *customerRepository) Delete(ctx context.Context, customerID int64) error {
	res, err := r.registry.q(ctx).ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		return wrapError("customers.delete", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFoundError("customers.delete", sql.ErrNoRows)
	}
	return nil
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Firstname, &c.Lastname, &c.Email, &c.Password,
		&c.Phone, &c.StreetAddress, &c.PostalCode, &c.City, &c.Country, &c.CreatedAt)
	return c, err
}
