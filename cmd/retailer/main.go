// Package main — неинтерактивная точка входа системы учёта заказов: собирает
// конфигурацию, открывает хранилище и выполняет одну операцию за запуск.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/retail-orders-system/internal/config"
	"github.com/mmeshcher/retail-orders-system/internal/report"
	"github.com/mmeshcher/retail-orders-system/internal/repository"
	"github.com/mmeshcher/retail-orders-system/internal/service"
)

const usage = `usage: retailer [-d dsn] [-p pivot] <command>

commands:
  products                 list the catalogue with prices and stock
  restock <product> <qty>  add qty units to a product's stock
  complete <order>         mark a collection/delivery order completed
  sweep <DD-Mon-YY>        cancel stale uncollected collection orders
  report products          revenue per product, descending
  report staff             lifetime staff revenue and top performers
  report matrix            staff x top-selling product quantities
  report rewards <year>    staff eligible for the annual reward
`

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	// флаги уже разобраны внутри config.Parse
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	svc := service.NewService(repo, logger, cfg.DatePivotYear)
	engine := report.NewEngine(repo)

	ctx := context.Background()

	if err := dispatch(ctx, args, repo, svc, engine); err != nil {
		sugar.Fatalw("command failed", "command", args[0], "error", err.Error())
	}
}

func dispatch(ctx context.Context, args []string, repo *repository.PostgresRepository, svc *service.Service, engine *report.Engine) error {
	switch args[0] {
	case "products":
		return listProducts(ctx, repo)

	case "restock":
		if len(args) != 3 {
			return fmt.Errorf("restock expects <product> <qty>")
		}
		productID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad product id %q", args[1])
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad quantity %q", args[2])
		}
		stock, err := svc.Restock(ctx, productID, qty)
		if err != nil {
			return err
		}
		fmt.Printf("product %d stock is now %d\n", productID, stock)
		return nil

	case "complete":
		if len(args) != 2 {
			return fmt.Errorf("complete expects <order>")
		}
		orderID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad order id %q", args[1])
		}
		if err := svc.CompleteOrder(ctx, orderID); err != nil {
			return err
		}
		fmt.Printf("order %d completed\n", orderID)
		return nil

	case "sweep":
		if len(args) != 2 {
			return fmt.Errorf("sweep expects <DD-Mon-YY>")
		}
		cancelled, err := svc.SweepExpiredCollections(ctx, args[1])
		if err != nil {
			return err
		}
		if len(cancelled) == 0 {
			fmt.Println("no expired collection orders")
			return nil
		}
		for _, id := range cancelled {
			fmt.Printf("cancelled order %d\n", id)
		}
		return nil

	case "report":
		if len(args) < 2 {
			return fmt.Errorf("report expects a subcommand")
		}
		return dispatchReport(ctx, args[1:], engine)
	}

	return fmt.Errorf("unknown command %q", args[0])
}

func dispatchReport(ctx context.Context, args []string, engine *report.Engine) error {
	switch args[0] {
	case "products":
		values, err := engine.ProductValue(ctx)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Printf("%d\t%s\t%s\n", v.ProductID, v.Description, v.Revenue.StringFixed(2))
		}
		return nil

	case "staff":
		rep, err := engine.StaffLifetimeValue(ctx)
		if err != nil {
			return err
		}
		for _, sv := range rep.All {
			fmt.Printf("%d\t%s %s\t%s\n", sv.Staff.ID, sv.Staff.FirstName, sv.Staff.LastName, sv.Revenue.StringFixed(2))
		}
		fmt.Println("top performers:")
		for _, sv := range rep.TopPerformers {
			fmt.Printf("%d\t%s %s\t%s\n", sv.Staff.ID, sv.Staff.FirstName, sv.Staff.LastName, sv.Revenue.StringFixed(2))
		}
		return nil

	case "matrix":
		m, err := engine.StaffProductMatrix(ctx)
		if err != nil {
			return err
		}
		fmt.Print("staff")
		for _, p := range m.Products {
			fmt.Printf("\t%s", p.Description)
		}
		fmt.Println()
		for i, s := range m.Staff {
			fmt.Printf("%s %s", s.FirstName, s.LastName)
			for j := range m.Products {
				fmt.Printf("\t%d", m.Cells[i][j])
			}
			fmt.Println()
		}
		return nil

	case "rewards":
		if len(args) != 2 {
			return fmt.Errorf("report rewards expects <year>")
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad year %q", args[1])
		}
		eligible, err := engine.RewardEligibility(ctx, year)
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			fmt.Printf("no staff eligible for %d\n", year)
			return nil
		}
		for _, sv := range eligible {
			fmt.Printf("%d\t%s %s\t%s\n", sv.Staff.ID, sv.Staff.FirstName, sv.Staff.LastName, sv.Revenue.StringFixed(2))
		}
		return nil
	}

	return fmt.Errorf("unknown report %q", args[0])
}

func listProducts(ctx context.Context, repo *repository.PostgresRepository) error {
	products, err := repo.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		price := decimal.New(p.PriceCents, -2)
		fmt.Printf("%d\t%s\t%s\t%d\n", p.ID, p.Description, price.StringFixed(2), p.Stock)
	}
	return nil
}
