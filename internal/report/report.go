// Package report реализует отчёты по продажам: выручку по товарам, итоги
// сотрудников, матрицу вклада в продажи ходовых товаров и годовую премию.
// Отчёты только читают хранилище и ничего не изменяют.
package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/retail-orders-system/internal/model"
	"github.com/mmeshcher/retail-orders-system/internal/repository"
)

// Пороги отчётов в копейках. Сравнения строгие.
const (
	// topSellerThresholdCents — выручка, выше которой товар считается ходовым.
	topSellerThresholdCents = 20_000_00
	// topPerformerThresholdCents — пожизненная выручка, выше которой сотрудник
	// попадает в список лучших.
	topPerformerThresholdCents = 50_000_00
	// rewardThresholdCents — годовая выручка сотрудника, необходимая для премии.
	rewardThresholdCents = 30_000_00
)

// Repository описывает агрегирующие чтения, используемые отчётами.
type Repository interface {
	ProductRevenues(ctx context.Context) ([]repository.ProductRevenue, error)
	ProductRevenuesForYear(ctx context.Context, year int) ([]repository.ProductRevenue, error)
	StaffRevenues(ctx context.Context) ([]repository.StaffRevenue, error)
	StaffRevenuesForYear(ctx context.Context, year int) ([]repository.StaffRevenue, error)
	StaffProductQuantities(ctx context.Context) ([]repository.StaffProductQuantity, error)
	StaffProductQuantitiesForYear(ctx context.Context, year int) ([]repository.StaffProductQuantity, error)
}

// Engine вычисляет отчёты поверх репозитория.
type Engine struct {
	repo Repository
}

// NewEngine создаёт отчётный движок.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// ProductValue — товар и его суммарная выручка.
type ProductValue struct {
	ProductID   int64
	Description string
	Revenue     decimal.Decimal
}

// StaffValue — сотрудник и выручка его заказов.
type StaffValue struct {
	Staff   model.Staff
	Revenue decimal.Decimal
}

// StaffLifetimeReport — пожизненные итоги сотрудников: полный список и срез
// лучших, чья выручка строго выше порога.
type StaffLifetimeReport struct {
	All           []StaffValue
	TopPerformers []StaffValue
}

// Matrix — плотная матрица сотрудники × ходовые товары; в ячейке количество
// единиц товара, проданных сотрудником (ноль, если продаж не было).
type Matrix struct {
	Staff    []model.Staff
	Products []ProductValue
	// Cells[i][j] — количество Products[j], проданное Staff[i].
	Cells [][]int
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ProductValue возвращает выручку каждого товара за всё время по убыванию.
// Товары без продаж присутствуют с нулевой выручкой.
func (e *Engine) ProductValue(ctx context.Context) ([]ProductValue, error) {
	revenues, err := e.repo.ProductRevenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("product revenues: %w", err)
	}

	res := make([]ProductValue, 0, len(revenues))
	for _, pr := range revenues {
		res = append(res, ProductValue{
			ProductID:   pr.ProductID,
			Description: pr.Description,
			Revenue:     centsToDecimal(pr.RevenueCents),
		})
	}

	return res, nil
}

// StaffLifetimeValue возвращает пожизненные итоги всех сотрудников и срез
// лучших. В полном списке присутствует каждый сотрудник, в том числе с нулём;
// в срез лучших попадают только те, чья выручка строго выше порога.
func (e *Engine) StaffLifetimeValue(ctx context.Context) (*StaffLifetimeReport, error) {
	revenues, err := e.repo.StaffRevenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("staff revenues: %w", err)
	}

	rep := &StaffLifetimeReport{}
	for _, sr := range revenues {
		sv := StaffValue{
			Staff: model.Staff{
				ID:        sr.StaffID,
				FirstName: sr.FirstName,
				LastName:  sr.LastName,
			},
			Revenue: centsToDecimal(sr.RevenueCents),
		}
		rep.All = append(rep.All, sv)
		if sr.RevenueCents > topPerformerThresholdCents {
			rep.TopPerformers = append(rep.TopPerformers, sv)
		}
	}

	return rep, nil
}

// StaffProductMatrix возвращает плотную матрицу: строка на каждого
// сотрудника, столбец на каждый ходовой товар (выручка строго выше порога за
// всё время), в ячейках — проданные количества с нулевым заполнением.
func (e *Engine) StaffProductMatrix(ctx context.Context) (*Matrix, error) {
	staffRevenues, err := e.repo.StaffRevenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("staff revenues: %w", err)
	}

	productRevenues, err := e.repo.ProductRevenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("product revenues: %w", err)
	}

	quantities, err := e.repo.StaffProductQuantities(ctx)
	if err != nil {
		return nil, fmt.Errorf("staff product quantities: %w", err)
	}

	m := &Matrix{}

	staffIdx := make(map[int64]int)
	for _, sr := range staffRevenues {
		staffIdx[sr.StaffID] = len(m.Staff)
		m.Staff = append(m.Staff, model.Staff{
			ID:        sr.StaffID,
			FirstName: sr.FirstName,
			LastName:  sr.LastName,
		})
	}

	productIdx := make(map[int64]int)
	for _, pr := range productRevenues {
		if pr.RevenueCents <= topSellerThresholdCents {
			continue
		}
		productIdx[pr.ProductID] = len(m.Products)
		m.Products = append(m.Products, ProductValue{
			ProductID:   pr.ProductID,
			Description: pr.Description,
			Revenue:     centsToDecimal(pr.RevenueCents),
		})
	}

	m.Cells = make([][]int, len(m.Staff))
	for i := range m.Cells {
		m.Cells[i] = make([]int, len(m.Products))
	}

	for _, q := range quantities {
		i, okStaff := staffIdx[q.StaffID]
		j, okProduct := productIdx[q.ProductID]
		if okStaff && okProduct {
			m.Cells[i][j] = q.Quantity
		}
	}

	return m, nil
}

// RewardEligibility возвращает сотрудников, претендующих на годовую премию:
// годовая выручка строго выше порога и продана хотя бы одна единица каждого
// товара, ставшего ходовым в этом году. Разность множеств {ходовые товары
// года} \ {товары, проданные сотрудником за год} должна быть пустой.
func (e *Engine) RewardEligibility(ctx context.Context, year int) ([]StaffValue, error) {
	productRevenues, err := e.repo.ProductRevenuesForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("product revenues for %d: %w", year, err)
	}

	topSellers := make(map[int64]bool)
	for _, pr := range productRevenues {
		if pr.RevenueCents > topSellerThresholdCents {
			topSellers[pr.ProductID] = true
		}
	}

	staffRevenues, err := e.repo.StaffRevenuesForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("staff revenues for %d: %w", year, err)
	}

	quantities, err := e.repo.StaffProductQuantitiesForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("staff product quantities for %d: %w", year, err)
	}

	soldByStaff := make(map[int64]map[int64]bool)
	for _, q := range quantities {
		if q.Quantity <= 0 {
			continue
		}
		if soldByStaff[q.StaffID] == nil {
			soldByStaff[q.StaffID] = make(map[int64]bool)
		}
		soldByStaff[q.StaffID][q.ProductID] = true
	}

	var eligible []StaffValue
	for _, sr := range staffRevenues {
		if sr.RevenueCents <= rewardThresholdCents {
			continue
		}

		sold := soldByStaff[sr.StaffID]
		coversAll := true
		for productID := range topSellers {
			if !sold[productID] {
				coversAll = false
				break
			}
		}
		if !coversAll {
			continue
		}

		eligible = append(eligible, StaffValue{
			Staff: model.Staff{
				ID:        sr.StaffID,
				FirstName: sr.FirstName,
				LastName:  sr.LastName,
			},
			Revenue: centsToDecimal(sr.RevenueCents),
		})
	}

	return eligible, nil
}
