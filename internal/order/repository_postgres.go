package order

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

// Schema creates the orders and order_items tables when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	id SERIAL PRIMARY KEY,
	customer_name TEXT,
	customer_phone TEXT,
	subtotal NUMERIC(14,2) NOT NULL DEFAULT 0,
	discount NUMERIC(14,2) NOT NULL DEFAULT 0,
	taxable NUMERIC(14,2) NOT NULL DEFAULT 0,
	vat NUMERIC(14,2) NOT NULL DEFAULT 0,
	total NUMERIC(14,2) NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	idempotency_key TEXT UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS order_items (
	id SERIAL PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	service_id INT NOT NULL,
	name TEXT NOT NULL,
	unit_price NUMERIC(12,2) NOT NULL,
	qty INT NOT NULL,
	line_total NUMERIC(14,2) NOT NULL
)`

const (
	orderColumns = `id, customer_name, customer_phone, subtotal, discount, taxable, vat, total, status, created_at`

	insertOrderQuery = `
		INSERT INTO orders (customer_name, customer_phone, subtotal, discount, taxable, vat, total, status, idempotency_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9, ''),$10)
		RETURNING id
	`
	insertItemQuery = `
		INSERT INTO order_items (order_id, service_id, name, unit_price, qty, line_total)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`
	listOrdersQuery     = `SELECT ` + orderColumns + ` FROM orders ORDER BY id DESC`
	getOrderByIDQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getOrderByKeyQuery  = `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`
	listItemsByOrderIDs = `
		SELECT order_id, id, service_id, name, unit_price, qty, line_total
		FROM order_items
		WHERE order_id = ANY($1::int[])
		ORDER BY order_id, id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *PostgresRepository) Create(ord Order, key string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRow(insertOrderQuery,
		ord.CustomerName, ord.CustomerPhone, ord.Subtotal, ord.Discount, ord.Taxable, ord.VAT, ord.Total,
		ord.Status, key, ord.CreatedAt).Scan(&ord.ID)
	if err != nil {
		return Order{}, err
	}

	items := make([]Item, len(ord.Items))
	for i, it := range ord.Items {
		if err := tx.QueryRow(insertItemQuery, ord.ID, it.ItemID, it.Name, it.UnitPrice, it.Quantity, it.LineTotal).Scan(&it.ID); err != nil {
			return Order{}, err
		}
		items[i] = it
	}
	ord.Items = items

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	return r.getOne(getOrderByIDQuery, id)
}

func (r *PostgresRepository) GetByKey(key string) (Order, error) {
	return r.getOne(getOrderByKeyQuery, key)
}

func (r *PostgresRepository) getOne(q string, arg any) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	orders := []Order{ord}
	if err := r.attachItems(orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) List() ([]Order, error) {
	rows, err := r.db.Query(listOrdersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of all given orders with a single query.
func (r *PostgresRepository) attachItems(orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int, len(orders))
	index := make(map[int]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []Item{}
	}

	rows, err := r.db.Query(listItemsByOrderIDs, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int
		var it Item
		if err := rows.Scan(&orderID, &it.ID, &it.ItemID, &it.Name, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var name, phone sql.NullString
	err := row.Scan(&ord.ID, &name, &phone, &ord.Subtotal, &ord.Discount, &ord.Taxable, &ord.VAT, &ord.Total, &ord.Status, &ord.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	if name.Valid {
		ord.CustomerName = &name.String
	}
	if phone.Valid {
		ord.CustomerPhone = &phone.String
	}
	return ord, nil
}
