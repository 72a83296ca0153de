package repository

import (
	"context"

	"github.com/arbaminim/order-intake/internal/intake/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	ListOrders(ctx context.Context, limit int) ([]*domain.Order, error)
	RunMigrations(*Credentials) error
	Close() error
}
