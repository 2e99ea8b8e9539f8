package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/unclebandit/customer-service/internal/db"
	appErrors "github.com/unclebandit/customer-service/internal/errors"
	"github.com/unclebandit/customer-service/internal/model"
)

// CustomerRepositoryInterface defines methods used by service
type CustomerRepositoryInterface interface {
	List(ctx context.Context) ([]model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Delete(ctx context.Context, id string) (*model.Customer, error)
	Ping(ctx context.Context) error
}

// CustomerRepository is the SQL implementation, shared by postgres and sqlite.
type CustomerRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)

const customerColumns = `id, name, date_of_birth, interests`

// List returns every customer ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.DB.QueryContext(ctx, r.listQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// GetByID fetches a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	query := r.rebind(`
        SELECT ` + customerColumns + `
        FROM customers
        WHERE id = ?
    `)
	c, err := scanCustomer(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewCustomerNotFound(id)
	}
	return c, err
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	created := *c
	created.ID = uuid.NewString()

	query := r.rebind(`
        INSERT INTO customers (` + customerColumns + `)
        VALUES (?, ?, ?, ?)
    `)
	if _, err := r.DB.ExecContext(ctx, query, created.ID, created.Name, created.DateOfBirth, nullString(created.Interests)); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces every mutable field of the row matching c.ID.
func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	query := r.rebind(`
        UPDATE customers
        SET name = ?, date_of_birth = ?, interests = ?
        WHERE id = ?
        RETURNING ` + customerColumns)
	updated, err := scanCustomer(r.DB.QueryRowContext(ctx, query, c.Name, c.DateOfBirth, nullString(c.Interests), c.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewCustomerNotFound(c.ID)
	}
	return updated, err
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) (*model.Customer, error) {
	query := r.rebind(`
        DELETE FROM customers
        WHERE id = ?
        RETURNING ` + customerColumns)
	removed, err := scanCustomer(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewCustomerNotFound(id)
	}
	return removed, err
}

func (r *CustomerRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// listQuery orders by name bytewise on every dialect. Postgres would
// otherwise use the database locale.
func (r *CustomerRepository) listQuery() string {
	orderBy := "name ASC, id ASC"
	if r.Dialect == db.DialectPostgres {
		orderBy = `name COLLATE "C" ASC, id ASC`
	}
	return `
        SELECT ` + customerColumns + `
        FROM customers
        ORDER BY ` + orderBy
}

// rebind turns ? placeholders into $n for postgres.
func (r *CustomerRepository) rebind(query string) string {
	if r.Dialect != db.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var (
		c         model.Customer
		interests sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.DateOfBirth, &interests); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	c.Interests = interests.String
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
