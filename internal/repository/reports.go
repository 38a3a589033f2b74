package repository

import (
	"context"
	"fmt"
)

// ProductRevenue описывает товар и его суммарную выручку в копейках.
type ProductRevenue struct {
	ProductID    int64
	Description  string
	RevenueCents int64
}

// StaffRevenue описывает сотрудника и суммарную выручку его заказов в копейках.
type StaffRevenue struct {
	StaffID      int64
	FirstName    string
	LastName     string
	RevenueCents int64
}

// StaffProductQuantity описывает количество единиц товара, проданных сотрудником.
type StaffProductQuantity struct {
	StaffID   int64
	ProductID int64
	Quantity  int
}

// ProductRevenues возвращает выручку по каждому товару каталога за всё время,
// по убыванию выручки. Товары без продаж присутствуют с нулевой выручкой.
func (r *PostgresRepository) ProductRevenues(ctx context.Context) ([]ProductRevenue, error) {
	return r.productRevenues(ctx,
		`SELECT p.id, p.description, COALESCE(SUM(ol.quantity * p.price_cents), 0) AS revenue
		 FROM product p
		 LEFT JOIN order_line ol ON ol.product_id = p.id
		 GROUP BY p.id, p.description
		 ORDER BY revenue DESC, p.id`,
	)
}

// ProductRevenuesForYear возвращает выручку по каждому товару за указанный
// календарный год, по убыванию выручки.
func (r *PostgresRepository) ProductRevenuesForYear(ctx context.Context, year int) ([]ProductRevenue, error) {
	return r.productRevenues(ctx,
		`SELECT p.id, p.description,
		        COALESCE(SUM(ol.quantity * p.price_cents) FILTER (WHERE EXTRACT(YEAR FROM o.order_date) = $1), 0) AS revenue
		 FROM product p
		 LEFT JOIN order_line ol ON ol.product_id = p.id
		 LEFT JOIN orders o ON o.id = ol.order_id
		 GROUP BY p.id, p.description
		 ORDER BY revenue DESC, p.id`,
		year,
	)
}

func (r *PostgresRepository) productRevenues(ctx context.Context, query string, args ...any) ([]ProductRevenue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select product revenues: %w", err)
	}
	defer rows.Close()

	var res []ProductRevenue
	for rows.Next() {
		var pr ProductRevenue
		if err := rows.Scan(&pr.ProductID, &pr.Description, &pr.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan product revenue: %w", err)
		}
		res = append(res, pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// StaffRevenues возвращает пожизненную выручку каждого сотрудника, по
// убыванию. Сотрудники без продаж присутствуют с нулём.
func (r *PostgresRepository) StaffRevenues(ctx context.Context) ([]StaffRevenue, error) {
	return r.staffRevenues(ctx,
		`SELECT s.id, s.first_name, s.last_name, COALESCE(SUM(ol.quantity * p.price_cents), 0) AS revenue
		 FROM staff s
		 LEFT JOIN staff_order_assignment soa ON soa.staff_id = s.id
		 LEFT JOIN order_line ol ON ol.order_id = soa.order_id
		 LEFT JOIN product p ON p.id = ol.product_id
		 GROUP BY s.id, s.first_name, s.last_name
		 ORDER BY revenue DESC, s.id`,
	)
}

// StaffRevenuesForYear возвращает выручку каждого сотрудника за указанный
// календарный год, по убыванию.
func (r *PostgresRepository) StaffRevenuesForYear(ctx context.Context, year int) ([]StaffRevenue, error) {
	return r.staffRevenues(ctx,
		`SELECT s.id, s.first_name, s.last_name,
		        COALESCE(SUM(ol.quantity * p.price_cents) FILTER (WHERE EXTRACT(YEAR FROM o.order_date) = $1), 0) AS revenue
		 FROM staff s
		 LEFT JOIN staff_order_assignment soa ON soa.staff_id = s.id
		 LEFT JOIN order_line ol ON ol.order_id = soa.order_id
		 LEFT JOIN orders o ON o.id = ol.order_id
		 LEFT JOIN product p ON p.id = ol.product_id
		 GROUP BY s.id, s.first_name, s.last_name
		 ORDER BY revenue DESC, s.id`,
		year,
	)
}

func (r *PostgresRepository) staffRevenues(ctx context.Context, query string, args ...any) ([]StaffRevenue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select staff revenues: %w", err)
	}
	defer rows.Close()

	var res []StaffRevenue
	for rows.Next() {
		var sr StaffRevenue
		if err := rows.Scan(&sr.StaffID, &sr.FirstName, &sr.LastName, &sr.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan staff revenue: %w", err)
		}
		res = append(res, sr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// StaffProductQuantities возвращает количества единиц каждого товара,
// проданных каждым сотрудником, за всё время. Пары без продаж опускаются.
func (r *PostgresRepository) StaffProductQuantities(ctx context.Context) ([]StaffProductQuantity, error) {
	return r.staffProductQuantities(ctx,
		`SELECT soa.staff_id, ol.product_id, SUM(ol.quantity)
		 FROM staff_order_assignment soa
		 JOIN order_line ol ON ol.order_id = soa.order_id
		 GROUP BY soa.staff_id, ol.product_id`,
	)
}

// StaffProductQuantitiesForYear возвращает количества единиц каждого товара,
// проданных каждым сотрудником за указанный календарный год.
func (r *PostgresRepository) StaffProductQuantitiesForYear(ctx context.Context, year int) ([]StaffProductQuantity, error) {
	return r.staffProductQuantities(ctx,
		`SELECT soa.staff_id, ol.product_id, SUM(ol.quantity)
		 FROM staff_order_assignment soa
		 JOIN order_line ol ON ol.order_id = soa.order_id
		 JOIN orders o ON o.id = ol.order_id
		 WHERE EXTRACT(YEAR FROM o.order_date) = $1
		 GROUP BY soa.staff_id, ol.product_id`,
		year,
	)
}

func (r *PostgresRepository) staffProductQuantities(ctx context.Context, query string, args ...any) ([]StaffProductQuantity, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select staff product quantities: %w", err)
	}
	defer rows.Close()

	var res []StaffProductQuantity
	for rows.Next() {
		var q StaffProductQuantity
		if err := rows.Scan(&q.StaffID, &q.ProductID, &q.Quantity); err != nil {
			return nil, fmt.Errorf("scan staff product quantity: %w", err)
		}
		res = append(res, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
