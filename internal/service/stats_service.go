package service

import (
	"context"
	"math"
	"sort"

	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

const topProductsLimit = 10

type StatsServiceInterface interface {
	GetOrderStats(ctx context.Context, caller models.Caller) (*models.OrderStats, error)
}

// StatsService computes the company dashboard aggregates in memory
// over the order history. Cancelled orders never count toward sales.
type StatsService struct {
	orderRepo repositories.OrderRepositoryInterface
	logger    *logger.Logger
}

func NewStatsService(orderRepo repositories.OrderRepositoryInterface, logger *logger.Logger) *StatsService {
	return &StatsService{
		orderRepo: orderRepo,
		logger:    logger.WithComponent("stats_service"),
	}
}

// GetOrderStats aggregates order counts, revenue and product sales for
// the caller's company. Empty history yields zeroed stats, never an
// error.
func (s *StatsService) GetOrderStats(ctx context.Context, caller models.Caller) (*models.OrderStats, error) {
	s.logger.Info("Computing order stats", "company_id", caller.CompanyID)

	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByCompany(ctx, caller.CompanyID)
	if err != nil {
		s.logger.Error("Failed to list orders for stats", "error", err, "company_id", caller.CompanyID)
		return nil, err
	}

	stats := &models.OrderStats{
		TopProducts: []models.ProductSales{},
		SalesByDay:  []models.DailySales{},
	}

	salesByProduct := make(map[string]*models.ProductSales)
	salesByDay := make(map[string]float64)
	var revenue float64

	for _, order := range orders {
		if order.Status == models.StatusCancelled {
			continue
		}

		stats.TotalOrders++
		revenue += order.TotalAmount

		day := order.CreatedAt.UTC().Format("2006-01-02")
		salesByDay[day] += order.TotalAmount

		for _, item := range order.Items {
			ps, ok := salesByProduct[item.ProductID]
			if !ok {
				ps = &models.ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
				salesByProduct[item.ProductID] = ps
			}
			ps.TotalQty += item.Quantity
			ps.Revenue = round2(ps.Revenue + item.LineTotal())
		}
	}

	if stats.TotalOrders > 0 {
		stats.AvgOrderAmount = round2(revenue / float64(stats.TotalOrders))
	}

	ranked := make([]models.ProductSales, 0, len(salesByProduct))
	for _, ps := range salesByProduct {
		ranked = append(ranked, *ps)
	}
	// Ties break toward the lexicographically lowest product id so the
	// ranking is stable across runs.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalQty != ranked[j].TotalQty {
			return ranked[i].TotalQty > ranked[j].TotalQty
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > 0 {
		top := ranked[0]
		stats.MostPopularProduct = &top
	}
	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	stats.TopProducts = ranked

	days := make([]string, 0, len(salesByDay))
	for day := range salesByDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		stats.SalesByDay = append(stats.SalesByDay, models.DailySales{
			Date:  day,
			Total: round2(salesByDay[day]),
		})
	}

	s.logger.Info("Computed order stats",
		"company_id", caller.CompanyID, "total_orders", stats.TotalOrders)
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
