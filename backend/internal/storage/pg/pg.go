package pg

import (
	"context"
	"database/sql"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/config"
	"github.com/BJS-kr/whatup/shared/logger"
	sharedpg "github.com/BJS-kr/whatup/shared/storage/pg"
	_ "github.com/lib/pq"
)

var (
	_ storage.UserStorage    = (*Storage)(nil)
	_ storage.ThreadStorage  = (*Storage)(nil)
	_ storage.ContentStorage = (*Storage)(nil)
	_ storage.NoticeStorage  = (*Storage)(nil)
	_ storage.ContentTx      = (*contentTx)(nil)
)

type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	return NewFromDSN(ctx, sharedpg.DSN(cfg))
}

func NewFromDSN(ctx context.Context, dsn string) (*Storage, error) {
	log := logger.Component("pg")
	log.Info("connecting to db")
	db, err := sharedpg.Connect(ctx, dsn, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	log.Info("successfully connected to db")
	return &Storage{db: db}, nil
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// nullable turns an optional id into a query argument.
func nullable(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}
