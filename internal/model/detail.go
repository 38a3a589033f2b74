package model

import "time"

// DetailKind указывает, какой вариант деталей несёт значение OrderDetail.
type DetailKind int

const (
	DetailNone DetailKind = iota
	DetailCollection
	DetailDelivery
)

// OrderDetail — детали заказа, зависящие от его типа. Значение создаётся
// один раз при оформлении и далее не меняется: либо пустое (продажа в
// магазине), либо данные самовывоза, либо данные доставки.
type OrderDetail struct {
	kind      DetailKind
	firstName string
	lastName  string
	address   Address
	date      time.Time
}

// OrderDetailNone возвращает пустой вариант деталей для заказа в магазине.
func OrderDetailNone() OrderDetail {
	return OrderDetail{kind: DetailNone}
}

// NewCollectionDetail возвращает детали самовывоза: имя клиента и дату выдачи.
func NewCollectionDetail(firstName, lastName string, date time.Time) OrderDetail {
	return OrderDetail{
		kind:      DetailCollection,
		firstName: firstName,
		lastName:  lastName,
		date:      date,
	}
}

// NewDeliveryDetail возвращает детали доставки: имя клиента, адрес и дату доставки.
func NewDeliveryDetail(firstName, lastName string, addr Address, date time.Time) OrderDetail {
	return OrderDetail{
		kind:      DetailDelivery,
		firstName: firstName,
		lastName:  lastName,
		address:   addr,
		date:      date,
	}
}

// Kind возвращает вариант деталей.
func (d OrderDetail) Kind() DetailKind { return d.kind }

// CustomerName возвращает имя и фамилию клиента.
func (d OrderDetail) CustomerName() (first, last string) {
	return d.firstName, d.lastName
}

// Date возвращает дату выдачи или доставки.
func (d OrderDetail) Date() time.Time { return d.date }

// DeliveryAddress возвращает адрес доставки; осмыслен только для DetailDelivery.
func (d OrderDetail) DeliveryAddress() Address { return d.address }
