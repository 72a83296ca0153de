package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/arbaminim/order-intake/internal/intake/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "intake_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder appends a row. The table is append-only on purpose: duplicate
// order numbers from client-side retry passes are accepted rather than
// risking a lost order.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (
	            id, order_number, full_name, phone, email, city, address,
	            needs_shipping, total_price, total_items, detailed_summary,
	            sets_ordered, etrogim_ordered, individual_items_ordered,
	            has_timani_set, has_moroccan_set, has_ashkenazi_set,
	            has_etrogim, has_lulav, has_hadas, has_arava,
	            notes, terms, contact_approval, cart_items, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	                  $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24,
	                  $25, $26, NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.FullName,
		order.Phone,
		order.Email,
		order.City,
		order.Address,
		order.NeedsShipping,
		order.TotalPrice,
		order.TotalItems,
		order.DetailedSummary,
		order.SetsOrdered,
		order.EtrogimOrdered,
		order.IndividualItemsOrdered,
		order.HasTimaniSet,
		order.HasMoroccanSet,
		order.HasAshkenaziSet,
		order.HasEtrogim,
		order.HasLulav,
		order.HasHadas,
		order.HasArava,
		order.Notes,
		order.Terms,
		order.ContactApproval,
		order.CartItems,
		order.Status)

	if insertErr != nil {
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) ListOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `SELECT id, order_number, full_name, phone, email, city, address,
	            needs_shipping, total_price, total_items, detailed_summary,
	            sets_ordered, etrogim_ordered, individual_items_ordered,
	            has_timani_set, has_moroccan_set, has_ashkenazi_set,
	            has_etrogim, has_lulav, has_hadas, has_arava,
	            notes, terms, contact_approval, cart_items, status, created_at
	          FROM orders ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.FullName,
			&o.Phone,
			&o.Email,
			&o.City,
			&o.Address,
			&o.NeedsShipping,
			&o.TotalPrice,
			&o.TotalItems,
			&o.DetailedSummary,
			&o.SetsOrdered,
			&o.EtrogimOrdered,
			&o.IndividualItemsOrdered,
			&o.HasTimaniSet,
			&o.HasMoroccanSet,
			&o.HasAshkenaziSet,
			&o.HasEtrogim,
			&o.HasLulav,
			&o.HasHadas,
			&o.HasArava,
			&o.Notes,
			&o.Terms,
			&o.ContactApproval,
			&o.CartItems,
			&o.Status,
			&o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
