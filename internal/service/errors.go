package service

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/retail-orders-system/internal/repository"
)

// ErrInvalidStaff возвращается, если указанный сотрудник не существует.
var (
	ErrInvalidStaff = errors.New("invalid staff id")
	// ErrInvalidDate возвращается, если дата не разбирается как календарная дата формы DD-Mon-YY.
	ErrInvalidDate = errors.New("invalid date")
	// ErrUnknownProduct возвращается, если товар из строки заказа не существует.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrInvalidRequest возвращается при некорректной форме запроса: пустой
	// список строк, неположительное количество, повтор товара, неизвестный тип заказа.
	ErrInvalidRequest = errors.New("invalid order request")
	// ErrInvalidDetail возвращается, если детали заказа не соответствуют его
	// типу или содержат пустые обязательные поля.
	ErrInvalidDetail = errors.New("invalid order detail")
	// ErrConnectionLost возвращается, когда операция прервана потерей
	// соединения с хранилищем.
	ErrConnectionLost = errors.New("store connection lost")
)

// InsufficientStockError возвращается, когда запрошенное количество превышает
// текущий остаток товара.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// PersistenceError возвращается, когда хранилище отвергло запись после начала
// фазы записи. Committed отражает, какая часть заказа успела зафиксироваться:
// уже записанные строки не откатываются.
type PersistenceError struct {
	// Stage называет шаг, на котором операция остановилась.
	Stage string
	// OrderID — выделенный идентификатор заказа; значение потреблено из
	// последовательности и не переиспользуется даже при неудаче.
	OrderID int64
	// CommittedLines — число строк заказа, записанных до остановки.
	CommittedLines int
	Err            error
}

func (e *PersistenceError) Error() string {
	if e.OrderID != 0 {
		return fmt.Sprintf("order %d: store rejected %s (lines committed: %d): %v",
			e.OrderID, e.Stage, e.CommittedLines, e.Err)
	}
	return fmt.Sprintf("store rejected %s: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// persistence оборачивает ошибку хранилища в PersistenceError, помечая потерю
// соединения сентинелом ErrConnectionLost.
func persistence(stage string, orderID int64, committedLines int, err error) *PersistenceError {
	if repository.IsConnectionError(err) {
		err = fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	return &PersistenceError{
		Stage:          stage,
		OrderID:        orderID,
		CommittedLines: committedLines,
		Err:            err,
	}
}
