package catalog

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

// Schema creates the services table when missing.
const Schema = `CREATE TABLE IF NOT EXISTS services (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'General',
	base_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	unit TEXT NOT NULL DEFAULT 'piece',
	is_active BOOLEAN NOT NULL DEFAULT TRUE
)`

const (
	listServicesQuery = `
		SELECT id, name, category, base_price, unit, is_active
		FROM services
		ORDER BY id
	`
	getServiceByIDQuery = `
		SELECT id, name, category, base_price, unit, is_active
		FROM services
		WHERE id = $1
	`
	getServicesByIDsQuery = `
		SELECT id, name, category, base_price, unit, is_active
		FROM services
		WHERE id = ANY($1::int[])
		ORDER BY array_position($1::int[], id)
	`
	insertServiceQuery = `
		INSERT INTO services (name, category, base_price, unit, is_active)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	updateServiceQuery = `
		UPDATE services
		SET name = $1,
			category = $2,
			base_price = $3,
			unit = $4,
			is_active = $5
		WHERE id = $6
	`
	deleteServiceQuery = `DELETE FROM services WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.BasePrice, &it.Unit, &it.IsActive)
	return it, err
}

func (r *PostgresRepository) List() ([]Item, error) {
	return r.query(listServicesQuery)
}

func (r *PostgresRepository) GetByID(id int) (Item, error) {
	it, err := scanItem(r.db.QueryRow(getServiceByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *PostgresRepository) GetByIDs(ids []int) ([]Item, error) {
	if len(ids) == 0 {
		return []Item{}, nil
	}
	return r.query(getServicesByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) query(q string, args ...any) ([]Item, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(it Item) (Item, error) {
	err := r.db.QueryRow(insertServiceQuery, it.Name, it.Category, it.BasePrice, it.Unit, it.IsActive).Scan(&it.ID)
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

func (r *PostgresRepository) Update(id int, it Item) (Item, error) {
	res, err := r.db.Exec(updateServiceQuery, it.Name, it.Category, it.BasePrice, it.Unit, it.IsActive, id)
	if err != nil {
		return Item{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Item{}, ErrNotFound
	}
	it.ID = id
	return it, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteServiceQuery, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
