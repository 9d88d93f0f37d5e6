package storage

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
)

func TestCartSetQuantity(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisCartAdapter(client)
	ctx := context.Background()

	mock.ExpectHSet("cart:7", "42", 3).SetVal(1)

	if err := adapter.SetQuantity(ctx, 7, 42, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCartSetQuantity_NonPositiveRemoves(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisCartAdapter(client)
	ctx := context.Background()

	mock.ExpectHDel("cart:7", "42").SetVal(1)
	mock.ExpectHDel("cart:7", "42").SetVal(0)

	if err := adapter.SetQuantity(ctx, 7, 42, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := adapter.SetQuantity(ctx, 7, 42, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCartRemove_MissingEntryIsNoop(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisCartAdapter(client)

	mock.ExpectHDel("cart:7", "42").SetVal(0)

	if err := adapter.Remove(context.Background(), 7, 42); err != nil {
		t.Fatalf("expected no-op success, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCartGetAll(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisCartAdapter(client)

	mock.ExpectHGetAll("cart:7").SetVal(map[string]string{"42": "3", "99": "1"})

	cart, err := adapter.GetAll(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(cart))
	}
	if cart[42] != 3 || cart[99] != 1 {
		t.Errorf("unexpected cart: %v", cart)
	}
}

func TestCartGetAll_EmptyForUnknownUser(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisCartAdapter(client)

	mock.ExpectHGetAll("cart:404").SetVal(map[string]string{})

	cart, err := adapter.GetAll(context.Background(), 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart == nil || len(cart) != 0 {
		t.Errorf("expected empty non-nil cart, got %v", cart)
	}
}

func TestCartGetAll_CorruptField(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisCartAdapter(client)

	mock.ExpectHGetAll("cart:7").SetVal(map[string]string{"not-a-number": "3"})

	if _, err := adapter.GetAll(context.Background(), 7); err == nil {
		t.Error("expected error for corrupt field")
	}
}

func TestCartClear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	adapter := NewRedisCartAdapter(client)

	mock.ExpectDel("cart:7").SetVal(1)

	if err := adapter.Clear(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
