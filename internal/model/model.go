// Package model содержит доменные сущности системы учёта розничных заказов.
package model

import "time"

// Product представляет товар каталога с текущим складским остатком.
type Product struct {
	ID          int64
	Description string
	PriceCents  int64
	Stock       int
}

// Staff представляет сотрудника, оформляющего заказы.
type Staff struct {
	ID        int64
	FirstName string
	LastName  string
}

// OrderType описывает тип заказа.
type OrderType string

const (
	OrderTypeInStore    OrderType = "INSTORE"
	OrderTypeCollection OrderType = "COLLECTION"
	OrderTypeDelivery   OrderType = "DELIVERY"
)

// Valid сообщает, принадлежит ли значение закрытому множеству типов заказа.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeInStore, OrderTypeCollection, OrderTypeDelivery:
		return true
	}
	return false
}

// Order описывает заказ: идентификатор, тип, признак завершённости и дату оформления.
type Order struct {
	ID        int64
	Type      OrderType
	Completed bool
	PlacedAt  time.Time
}

// OrderLine связывает товар и количество с заказом.
type OrderLine struct {
	OrderID   int64
	ProductID int64
	Quantity  int
}

// Address представляет адрес доставки.
type Address struct {
	House  string
	Street string
	City   string
}
