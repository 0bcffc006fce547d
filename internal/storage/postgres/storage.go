package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage uses; tests substitute a
// pgxmock pool through it.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type messageRepository struct {
	storage *Storage
}

type balanceRepository struct {
	storage *Storage
}

type catalogRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Messages() repository.MessageRepository {
	return &messageRepository{storage: s}
}

func (s *Storage) Balances() repository.BalanceRepository {
	return &balanceRepository{storage: s}
}

func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS countries (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            code TEXT UNIQUE NOT NULL,
            price BIGINT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS services (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            price BIGINT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS balances (
            user_id BIGINT PRIMARY KEY,
            amount BIGINT NOT NULL DEFAULT 0 CHECK (amount >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id BIGINT NOT NULL,
            phone_number TEXT NOT NULL,
            country_id TEXT NOT NULL REFERENCES countries(id),
            service_id TEXT NOT NULL REFERENCES services(id),
            price BIGINT NOT NULL,
            status TEXT NOT NULL,
            refunded BOOLEAN NOT NULL DEFAULT FALSE,
            external_id TEXT,
            provider TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            deadline TIMESTAMPTZ NOT NULL,
            completed_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS messages (
            id TEXT PRIMARY KEY,
            order_id TEXT NOT NULL REFERENCES orders(id),
            text TEXT NOT NULL,
            code TEXT,
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            order_id TEXT NOT NULL,
            amount BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_active ON orders(status) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_orders_active_phone ON orders(phone_number) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_messages_order ON messages(order_id, received_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON ledger_entries(user_id, created_at DESC)`,
		// Catalog seed. Orders reference countries and services by id, so a
		// fresh database must start with a usable catalog; reruns keep
		// operator edits because existing rows are left alone.
		`INSERT INTO countries (id, name, code, price, available) VALUES
            ('ru', 'Russia', '7', 15, TRUE),
            ('ua', 'Ukraine', '380', 22, TRUE),
            ('kz', 'Kazakhstan', '77', 18, TRUE),
            ('us', 'United States', '1', 45, FALSE)
        ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO services (id, name, price, available) VALUES
            ('tg', 'Telegram', 15, TRUE),
            ('wa', 'WhatsApp', 18, TRUE),
            ('ds', 'Discord', 20, TRUE)
        ON CONFLICT (id) DO NOTHING`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, user_id, phone_number, country_id, service_id, price,
                      status, refunded, external_id, provider, created_at, deadline, completed_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.PhoneNumber, &o.CountryID, &o.ServiceID,
		&o.Price, &o.Status, &o.Refunded, &o.ExternalID, &o.Provider, &o.CreatedAt, &o.Deadline, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.PhoneNumber, &o.CountryID, &o.ServiceID,
			&o.Price, &o.Status, &o.Refunded, &o.ExternalID, &o.Provider, &o.CreatedAt, &o.Deadline, &o.CompletedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders
                   (id, user_id, phone_number, country_id, service_id, price, status, external_id, provider, created_at, deadline)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.storage.pool.Exec(ctx, query,
		order.ID, order.UserID, order.PhoneNumber, order.CountryID, order.ServiceID,
		order.Price, order.Status, order.ExternalID, order.Provider, order.CreatedAt, order.Deadline)
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderRepository) ListActive(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status='active'`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderRepository) FindActiveByExternalID(ctx context.Context, providerName, externalID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE external_id=$1 AND status='active' AND (provider=$2 OR provider='')`
	rows, err := r.storage.pool.Query(ctx, query, externalID, providerName)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderRepository) FindActiveByPhone(ctx context.Context, providerName, phoneNumber string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE phone_number=$1 AND status='active' AND (provider=$2 OR provider='')`
	rows, err := r.storage.pool.Query(ctx, query, phoneNumber, providerName)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

// Complete transitions the order active->completed and stores the message in
// one transaction. The WHERE status='active' clause is the compare-and-swap
// that guarantees a single terminal transition per order.
func (r *orderRepository) Complete(ctx context.Context, orderID string, message *model.Message) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		updateQuery := `UPDATE orders SET status='completed', completed_at=NOW()
                        WHERE id=$1 AND status='active'
                        RETURNING ` + orderColumns
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, updateQuery, orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.terminalConflict(ctx, tx, orderID)
			}
			return err
		}

		const insertMessage = `INSERT INTO messages (id, order_id, text, code, received_at)
                               VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, insertMessage,
			message.ID, orderID, message.Text, message.Code, message.ReceivedAt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Expire transitions the order active->expired and credits the price back to
// the owner in the same transaction, so the refund marker is never observable
// without the refund itself. completed_at stays NULL: it records a delivered
// SMS, which an expired order never got.
func (r *orderRepository) Expire(ctx context.Context, orderID string) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		updateQuery := `UPDATE orders SET status='expired', refunded=TRUE
                        WHERE id=$1 AND status='active'
                        RETURNING ` + orderColumns
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, updateQuery, orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.terminalConflict(ctx, tx, orderID)
			}
			return err
		}
		return r.storage.creditTx(ctx, tx, order.UserID, order.Price, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// terminalConflict distinguishes a missing order from one already past its
// terminal transition after a failed compare-and-swap.
func (r *orderRepository) terminalConflict(ctx context.Context, tx pgx.Tx, orderID string) error {
	const query = `SELECT status FROM orders WHERE id=$1`
	var status model.OrderStatus
	if err := tx.QueryRow(ctx, query, orderID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return domainErrors.ErrOrderNotActive
}

// --- MessageRepository implementation ---

func (r *messageRepository) ListByOrder(ctx context.Context, orderID string) ([]model.Message, error) {
	const query = `SELECT id, order_id, text, code, received_at
                   FROM messages WHERE order_id=$1 ORDER BY received_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.OrderID, &m.Text, &m.Code, &m.ReceivedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- BalanceRepository implementation ---

func (s *Storage) creditTx(ctx context.Context, tx pgx.Tx, userID int64, amount int64, orderID string) error {
	const updateBalance = `INSERT INTO balances (user_id, amount)
                           VALUES ($1, $2)
                           ON CONFLICT (user_id) DO UPDATE SET amount = balances.amount + EXCLUDED.amount`
	if _, err := tx.Exec(ctx, updateBalance, userID, amount); err != nil {
		return err
	}
	const insertEntry = `INSERT INTO ledger_entries (user_id, order_id, amount) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, insertEntry, userID, orderID, amount); err != nil {
		return err
	}
	return nil
}

func (r *balanceRepository) Amount(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT amount FROM balances WHERE user_id=$1`
	var amount int64
	err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return amount, nil
}

// TryDebit locks the balance row so concurrent debits for the same user are
// serialized and check-then-act stays atomic.
func (r *balanceRepository) TryDebit(ctx context.Context, userID int64, amount int64, orderID string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const balanceQuery = `SELECT amount FROM balances WHERE user_id=$1 FOR UPDATE`
		var current int64
		err := tx.QueryRow(ctx, balanceQuery, userID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				current = 0
			} else {
				return err
			}
		}
		if current < amount {
			return domainErrors.ErrInsufficientBalance
		}

		const updateBalance = `UPDATE balances SET amount = amount - $2 WHERE user_id=$1`
		if _, err := tx.Exec(ctx, updateBalance, userID, amount); err != nil {
			return err
		}

		const insertEntry = `INSERT INTO ledger_entries (user_id, order_id, amount) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, insertEntry, userID, orderID, -amount); err != nil {
			return err
		}
		return nil
	})
}

func (r *balanceRepository) Credit(ctx context.Context, userID int64, amount int64, orderID string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return r.storage.creditTx(ctx, tx, userID, amount, orderID)
	})
}

func (r *balanceRepository) Entries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	const query = `SELECT id, user_id, order_id, amount, created_at
                   FROM ledger_entries WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.OrderID, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- CatalogRepository implementation ---

func (r *catalogRepository) Country(ctx context.Context, countryID string) (*model.Country, error) {
	const query = `SELECT id, name, code, price, available FROM countries WHERE id=$1`
	var c model.Country
	err := r.storage.pool.QueryRow(ctx, query, countryID).Scan(&c.ID, &c.Name, &c.Code, &c.Price, &c.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepository) Service(ctx context.Context, serviceID string) (*model.Service, error) {
	const query = `SELECT id, name, price, available FROM services WHERE id=$1`
	var s model.Service
	err := r.storage.pool.QueryRow(ctx, query, serviceID).Scan(&s.ID, &s.Name, &s.Price, &s.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *catalogRepository) Countries(ctx context.Context) ([]model.Country, error) {
	const query = `SELECT id, name, code, price, available FROM countries ORDER BY name`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Price, &c.Available); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *catalogRepository) Services(ctx context.Context) ([]model.Service, error) {
	const query = `SELECT id, name, price, available FROM services ORDER BY name`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Available); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
