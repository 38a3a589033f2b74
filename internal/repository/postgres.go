// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mmeshcher/retail-orders-system/internal/model"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrProductNotFound возвращается, если товар с указанным идентификатором не существует.
var (
	ErrProductNotFound = errors.New("product not found")
	// ErrStaffNotFound возвращается, если сотрудник с указанным идентификатором не существует.
	ErrStaffNotFound = errors.New("staff member not found")
	// ErrOrderNotFound возвращается, если заказ с указанным идентификатором не существует.
	ErrOrderNotFound = errors.New("order not found")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// IsConstraintViolation сообщает, является ли ошибка нарушением ограничения
// схемы (CHECK, внешний ключ, NOT NULL, формат даты).
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.CheckViolation,
		pgerrcode.ForeignKeyViolation,
		pgerrcode.UniqueViolation,
		pgerrcode.NotNullViolation,
		pgerrcode.InvalidDatetimeFormat,
		pgerrcode.DatetimeFieldOverflow:
		return true
	}
	return false
}

// IsConnectionError сообщает, вызвана ли ошибка потерей соединения с БД.
func IsConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ConnectionException,
			pgerrcode.ConnectionDoesNotExist,
			pgerrcode.ConnectionFailure,
			pgerrcode.AdminShutdown:
			return true
		}
	}
	// pgx не всегда доводит сетевые сбои до кода SQLSTATE
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "conn closed")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateProduct добавляет товар в каталог и возвращает его идентификатор.
func (r *PostgresRepository) CreateProduct(ctx context.Context, description string, priceCents int64, stock int) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product (description, price_cents, stock) VALUES ($1, $2, $3) RETURNING id`,
		description, priceCents, stock,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

// CreateStaff добавляет сотрудника и возвращает его идентификатор.
func (r *PostgresRepository) CreateStaff(ctx context.Context, firstName, lastName string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO staff (first_name, last_name) VALUES ($1, $2) RETURNING id`,
		firstName, lastName,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create staff: %w", err)
	}
	return id, nil
}

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, description, price_cents, stock FROM product WHERE id = $1`,
		id,
	)

	var p model.Product
	err := row.Scan(&p.ID, &p.Description, &p.PriceCents, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// GetStaff возвращает сотрудника по идентификатору.
func (r *PostgresRepository) GetStaff(ctx context.Context, id int64) (*model.Staff, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name FROM staff WHERE id = $1`,
		id,
	)

	var s model.Staff
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}

	return &s, nil
}

// ListProducts возвращает все товары каталога в порядке идентификаторов.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, description, price_cents, stock FROM product ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Description, &p.PriceCents, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// ListStaff возвращает всех сотрудников в порядке идентификаторов.
func (r *PostgresRepository) ListStaff(ctx context.Context) ([]model.Staff, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name FROM staff ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select staff: %w", err)
	}
	defer rows.Close()

	var staff []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return staff, nil
}

// NextOrderID выделяет следующий идентификатор заказа из последовательности.
// Выделенное значение не возвращается в последовательность, даже если вставка
// заказа затем не удалась.
func (r *PostgresRepository) NextOrderID(ctx context.Context) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('orders_id_seq')`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next order id: %w", err)
	}
	return id, nil
}

// InsertOrder вставляет запись заказа с уже выделенным идентификатором.
func (r *PostgresRepository) InsertOrder(ctx context.Context, o model.Order) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, order_type, completed, order_date) VALUES ($1, $2, $3, $4)`,
		o.ID, string(o.Type), o.Completed, o.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// AssignStaff связывает заказ с оформившим его сотрудником.
func (r *PostgresRepository) AssignStaff(ctx context.Context, orderID, staffID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO staff_order_assignment (order_id, staff_id) VALUES ($1, $2)`,
		orderID, staffID,
	)
	if err != nil {
		return fmt.Errorf("assign staff: %w", err)
	}
	return nil
}

// InsertOrderLine вставляет строку заказа.
func (r *PostgresRepository) InsertOrderLine(ctx context.Context, line model.OrderLine) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO order_line (order_id, product_id, quantity) VALUES ($1, $2, $3)`,
		line.OrderID, line.ProductID, line.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// AdjustStock изменяет остаток товара на delta (отрицательное значение —
// списание) и возвращает новый остаток. Ограничение схемы не даёт остатку
// уйти в минус.
func (r *PostgresRepository) AdjustStock(ctx context.Context, productID int64, delta int) (int, error) {
	var stock int
	err := r.pool.QueryRow(ctx,
		`UPDATE product SET stock = stock + $2 WHERE id = $1 RETURNING stock`,
		productID, delta,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	return stock, nil
}

// InsertCollectionDetail вставляет детали самовывоза для заказа.
func (r *PostgresRepository) InsertCollectionDetail(ctx context.Context, orderID int64, firstName, lastName string, collectionDate time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO collection_detail (order_id, first_name, last_name, collection_date) VALUES ($1, $2, $3, $4)`,
		orderID, firstName, lastName, collectionDate,
	)
	if err != nil {
		return fmt.Errorf("insert collection detail: %w", err)
	}
	return nil
}

// InsertDeliveryDetail вставляет детали доставки для заказа.
func (r *PostgresRepository) InsertDeliveryDetail(ctx context.Context, orderID int64, firstName, lastName string, addr model.Address, deliveryDate time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO delivery_detail (order_id, first_name, last_name, house, street, city, delivery_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		orderID, firstName, lastName, addr.House, addr.Street, addr.City, deliveryDate,
	)
	if err != nil {
		return fmt.Errorf("insert delivery detail: %w", err)
	}
	return nil
}

// MarkOrderCompleted помечает заказ выданным или доставленным.
func (r *PostgresRepository) MarkOrderCompleted(ctx context.Context, orderID int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET completed = TRUE WHERE id = $1`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("mark order completed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ExpiredCollectionOrders возвращает идентификаторы незавершённых заказов
// самовывоза, дата выдачи которых не раньше указанной границы.
func (r *PostgresRepository) ExpiredCollectionOrders(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id
		 FROM orders o
		 JOIN collection_detail cd ON cd.order_id = o.id
		 WHERE o.completed = FALSE AND cd.collection_date >= $1
		 ORDER BY o.id`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("select expired collection orders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}

// CancelCollectionOrder отменяет заказ самовывоза одной транзакцией: удаляет
// строки заказа, назначение сотрудника, детали самовывоза и сам заказ, а
// зарезервированные количества возвращает на склад.
func (r *PostgresRepository) CancelCollectionOrder(ctx context.Context, orderID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM order_line WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("select order lines: %w", err)
	}

	type restock struct {
		productID int64
		quantity  int
	}
	var restocks []restock
	for rows.Next() {
		var rs restock
		if err := rows.Scan(&rs.productID, &rs.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scan order line: %w", err)
		}
		restocks = append(restocks, rs)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if _, err := tx.Exec(ctx, `DELETE FROM order_line WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}

	for _, rs := range restocks {
		if _, err := tx.Exec(ctx,
			`UPDATE product SET stock = stock + $2 WHERE id = $1`,
			rs.productID, rs.quantity,
		); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM staff_order_assignment WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete staff assignment: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM collection_detail WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete collection detail: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
