// Package service реализует оформление заказов: проверку входных данных,
// резервирование остатков и согласованную запись заказа по таблицам
// хранилища.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/retail-orders-system/internal/model"
	"github.com/mmeshcher/retail-orders-system/internal/repository"
	"github.com/mmeshcher/retail-orders-system/internal/validation"
)

// collectionGraceDays — срок в днях, после которого невостребованный заказ
// самовывоза отменяется, а его остатки возвращаются на склад.
const collectionGraceDays = 8

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetStaff(ctx context.Context, id int64) (*model.Staff, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, description string, priceCents int64, stock int) (int64, error)
	CreateStaff(ctx context.Context, firstName, lastName string) (int64, error)
	NextOrderID(ctx context.Context) (int64, error)
	InsertOrder(ctx context.Context, o model.Order) error
	AssignStaff(ctx context.Context, orderID, staffID int64) error
	InsertOrderLine(ctx context.Context, line model.OrderLine) error
	AdjustStock(ctx context.Context, productID int64, delta int) (int, error)
	InsertCollectionDetail(ctx context.Context, orderID int64, firstName, lastName string, collectionDate time.Time) error
	InsertDeliveryDetail(ctx context.Context, orderID int64, firstName, lastName string, addr model.Address, deliveryDate time.Time) error
	MarkOrderCompleted(ctx context.Context, orderID int64) error
	ExpiredCollectionOrders(ctx context.Context, cutoff time.Time) ([]int64, error)
	CancelCollectionOrder(ctx context.Context, orderID int64) error
}

// Service реализует операции оформления и обслуживания заказов.
type Service struct {
	repo      Repository
	logger    *zap.Logger
	datePivot int
}

// NewService создаёт сервис поверх указанного репозитория. datePivot задаёт
// границу интерпретации двузначного года в датах.
func NewService(repo Repository, logger *zap.Logger, datePivot int) *Service {
	return &Service{
		repo:      repo,
		logger:    logger,
		datePivot: datePivot,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// LineRequest — одна строка оформляемого заказа.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// OrderRequest — запрос на оформление заказа. Detail обязан соответствовать
// типу: пустой вариант для продажи в магазине, вариант самовывоза или
// доставки для соответствующего типа.
type OrderRequest struct {
	Lines     []LineRequest
	OrderDate string
	StaffID   int64
	Type      model.OrderType
	Detail    model.OrderDetail
}

// OrderResult — результат успешного оформления: идентификатор заказа и
// остатки затронутых товаров после списания.
type OrderResult struct {
	OrderID int64
	Stock   map[int64]int
}

// PlaceOrder оформляет заказ. Проверки идут до первой записи: сотрудник,
// дата, затем остатки по всем строкам сразу — многострочный заказ либо
// обеспечен остатком целиком, либо отклоняется без единой записи. После
// выделения идентификатора записи идут по шагам без общей транзакции;
// отвергнутая запись останавливает оформление, уже записанные строки
// остаются (см. PersistenceError).
func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if err := validateRequestShape(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetStaff(ctx, req.StaffID); err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidStaff, req.StaffID)
		}
		return nil, persistence("staff lookup", 0, 0, err)
	}

	orderDate, err := validation.ParseDate(req.OrderDate, s.datePivot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	// Все чтения остатков выполняются до первой записи.
	for _, line := range req.Lines {
		p, err := s.repo.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownProduct, line.ProductID)
			}
			return nil, persistence("product lookup", 0, 0, err)
		}
		if p.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: p.Stock,
			}
		}
	}

	orderID, err := s.repo.NextOrderID(ctx)
	if err != nil {
		return nil, persistence("order id allocation", 0, 0, err)
	}

	order := model.Order{
		ID:        orderID,
		Type:      req.Type,
		Completed: req.Type == model.OrderTypeInStore,
		PlacedAt:  orderDate,
	}

	if err := s.repo.InsertOrder(ctx, order); err != nil {
		return nil, persistence("order insert", orderID, 0, err)
	}

	if err := s.repo.AssignStaff(ctx, orderID, req.StaffID); err != nil {
		return nil, persistence("staff assignment", orderID, 0, err)
	}

	stock := make(map[int64]int, len(req.Lines))
	for i, line := range req.Lines {
		if err := s.repo.InsertOrderLine(ctx, model.OrderLine{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}); err != nil {
			return nil, persistence(fmt.Sprintf("line insert for product %d", line.ProductID), orderID, i, err)
		}

		remaining, err := s.repo.AdjustStock(ctx, line.ProductID, -line.Quantity)
		if err != nil {
			return nil, persistence(fmt.Sprintf("stock decrement for product %d", line.ProductID), orderID, i, err)
		}
		stock[line.ProductID] = remaining
	}

	if err := s.insertDetail(ctx, orderID, req); err != nil {
		// Заказ и его строки уже записаны; заказ остаётся без строки деталей.
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", orderID),
		zap.String("order_type", string(req.Type)),
		zap.Int64("staff_id", req.StaffID),
		zap.Int("lines", len(req.Lines)),
	)

	return &OrderResult{OrderID: orderID, Stock: stock}, nil
}

func validateRequestShape(req OrderRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown order type %q", ErrInvalidRequest, string(req.Type))
	}
	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: order has no lines", ErrInvalidRequest)
	}

	seen := make(map[int64]bool, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity %d for product %d", ErrInvalidRequest, line.Quantity, line.ProductID)
		}
		if seen[line.ProductID] {
			return fmt.Errorf("%w: duplicate product %d", ErrInvalidRequest, line.ProductID)
		}
		seen[line.ProductID] = true
	}

	switch req.Type {
	case model.OrderTypeInStore:
		if req.Detail.Kind() != model.DetailNone {
			return fmt.Errorf("%w: in-store order must not carry detail", ErrInvalidDetail)
		}
	case model.OrderTypeCollection:
		if req.Detail.Kind() != model.DetailCollection {
			return fmt.Errorf("%w: collection order requires collection detail", ErrInvalidDetail)
		}
	case model.OrderTypeDelivery:
		if req.Detail.Kind() != model.DetailDelivery {
			return fmt.Errorf("%w: delivery order requires delivery detail", ErrInvalidDetail)
		}
	}

	if req.Detail.Kind() != model.DetailNone {
		first, last := req.Detail.CustomerName()
		if !validation.ValidName(first, last) {
			return fmt.Errorf("%w: customer name must be non-empty", ErrInvalidDetail)
		}
		if req.Detail.Date().IsZero() {
			return fmt.Errorf("%w: detail date must be set", ErrInvalidDetail)
		}
	}
	if req.Detail.Kind() == model.DetailDelivery {
		if !validation.ValidAddress(req.Detail.DeliveryAddress()) {
			return fmt.Errorf("%w: delivery address must be non-empty", ErrInvalidDetail)
		}
	}

	return nil
}

func (s *Service) insertDetail(ctx context.Context, orderID int64, req OrderRequest) error {
	first, last := req.Detail.CustomerName()

	switch req.Detail.Kind() {
	case model.DetailCollection:
		if err := s.repo.InsertCollectionDetail(ctx, orderID, first, last, req.Detail.Date()); err != nil {
			return persistence("collection detail insert", orderID, len(req.Lines), err)
		}
	case model.DetailDelivery:
		if err := s.repo.InsertDeliveryDetail(ctx, orderID, first, last, req.Detail.DeliveryAddress(), req.Detail.Date()); err != nil {
			return persistence("delivery detail insert", orderID, len(req.Lines), err)
		}
	}

	return nil
}

// SweepExpiredCollections отменяет невостребованные заказы самовывоза, дата
// выдачи которых отстоит от referenceDate на срок готовности и дальше, и
// возвращает их идентификаторы. Каждый заказ отменяется отдельной
// транзакцией; повторный запуск с той же датой не находит подходящих заказов
// и возвращает пустой результат.
func (s *Service) SweepExpiredCollections(ctx context.Context, referenceDate string) ([]int64, error) {
	ref, err := validation.ParseDate(referenceDate, s.datePivot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	cutoff := ref.AddDate(0, 0, collectionGraceDays)

	ids, err := s.repo.ExpiredCollectionOrders(ctx, cutoff)
	if err != nil {
		return nil, persistence("expired order lookup", 0, 0, err)
	}

	var cancelled []int64
	for _, id := range ids {
		if err := s.repo.CancelCollectionOrder(ctx, id); err != nil {
			return cancelled, persistence("order cancellation", id, 0, err)
		}
		cancelled = append(cancelled, id)

		s.logger.Info("expired collection order cancelled", zap.Int64("order_id", id))
	}

	return cancelled, nil
}

// CompleteOrder помечает заказ самовывоза или доставки выполненным.
func (s *Service) CompleteOrder(ctx context.Context, orderID int64) error {
	if err := s.repo.MarkOrderCompleted(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return err
		}
		return persistence("order completion", orderID, 0, err)
	}
	return nil
}

// Restock увеличивает остаток товара на qty и возвращает новый остаток.
func (s *Service) Restock(ctx context.Context, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: restock quantity %d", ErrInvalidRequest, qty)
	}

	stock, err := s.repo.AdjustStock(ctx, productID, qty)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
		}
		return 0, persistence("stock increment", 0, 0, err)
	}

	return stock, nil
}

// AddProduct добавляет товар в каталог.
func (s *Service) AddProduct(ctx context.Context, description string, priceCents int64, stock int) (int64, error) {
	if description == "" || priceCents <= 0 || stock < 0 {
		return 0, fmt.Errorf("%w: product requires description, positive price and non-negative stock", ErrInvalidRequest)
	}

	id, err := s.repo.CreateProduct(ctx, description, priceCents, stock)
	if err != nil {
		return 0, persistence("product insert", 0, 0, err)
	}
	return id, nil
}

// AddStaff добавляет сотрудника.
func (s *Service) AddStaff(ctx context.Context, firstName, lastName string) (int64, error) {
	if !validation.ValidName(firstName, lastName) {
		return 0, fmt.Errorf("%w: staff name must be non-empty", ErrInvalidRequest)
	}

	id, err := s.repo.CreateStaff(ctx, firstName, lastName)
	if err != nil {
		return 0, persistence("staff insert", 0, 0, err)
	}
	return id, nil
}
