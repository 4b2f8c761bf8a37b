package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

const saleKeyPrefix = "sale:deduction:"

var _ inventory.SaleGuard = (*SaleGuard)(nil)

// SaleGuard reserva el id de la venta con SET NX; solo el primer intento descuenta inventario.
type SaleGuard struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSaleGuard(client *goredis.Client, ttl time.Duration) *SaleGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SaleGuard{client: client, ttl: ttl}
}

func (g *SaleGuard) Reserve(ctx context.Context, saleID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, saleKeyPrefix+saleID, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: reservar venta %s: %w", saleID, err)
	}
	return ok, nil
}

// Release libera la reserva; lo usa el reverso administrativo de una venta.
func (g *SaleGuard) Release(ctx context.Context, saleID string) error {
	return g.client.Del(ctx, saleKeyPrefix+saleID).Err()
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
