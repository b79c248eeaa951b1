package order

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var orderCols = []string{"id", "customer_name", "customer_phone", "subtotal", "discount", "taxable", "vat", "total", "status", "created_at"}
var itemCols = []string{"order_id", "id", "service_id", "name", "unit_price", "qty", "line_total"}

func TestPostgresCreate_Transaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), StatusPending, "abc", created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(11, 1, "Wash & Fold", sqlmock.AnyArg(), 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectCommit()

	ord, err := repo.Create(Order{
		Subtotal:  decimal.NewFromInt(1000),
		Taxable:   decimal.NewFromInt(1000),
		VAT:       decimal.NewFromInt(160),
		Total:     decimal.NewFromInt(1160),
		Status:    StatusPending,
		CreatedAt: created,
		Items:     []Item{{ItemID: 1, Name: "Wash & Fold", UnitPrice: decimal.NewFromInt(500), Quantity: 2, LineTotal: decimal.NewFromInt(1000)}},
	}, "abc")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ord.ID != 11 || ord.Items[0].ID != 21 {
		t.Fatalf("unexpected ids %d / %d", ord.ID, ord.Items[0].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_RollsBackOnItemFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO order_items").WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	_, err = repo.Create(Order{Status: StatusPending, Items: []Item{{ItemID: 1, Name: "x", Quantity: 1}}}, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresList_AttachesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM orders ORDER BY id DESC").WillReturnRows(sqlmock.NewRows(orderCols).
		AddRow(2, "Amina", nil, "300", "0", "300", "48", "348", "pending", now).
		AddRow(1, nil, "0700", "500", "0", "500", "80", "580", "pending", now))
	mock.ExpectQuery("FROM order_items").WithArgs(pq.Array([]int{2, 1})).WillReturnRows(sqlmock.NewRows(itemCols).
		AddRow(1, 10, 5, "Duvet", "500", 1, "500").
		AddRow(2, 11, 6, "Shirt", "100", 3, "300"))

	orders, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].CustomerName == nil || *orders[0].CustomerName != "Amina" || orders[0].CustomerPhone != nil {
		t.Fatalf("unexpected customer fields on first order %+v", orders[0])
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].Name != "Shirt" {
		t.Fatalf("items attached to wrong order: %+v", orders[0].Items)
	}
	if len(orders[1].Items) != 1 || !orders[1].Total.Equal(decimal.NewFromInt(580)) {
		t.Fatalf("unexpected second order %+v", orders[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByKey_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("WHERE idempotency_key").WithArgs("missing").WillReturnRows(sqlmock.NewRows(orderCols))
	if _, err := repo.GetByKey("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
