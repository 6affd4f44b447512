package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/utils"
)

// Analytics ranges.
const (
	RangeWeekly  = "weekly"
	RangeMonthly = "monthly"
	RangeYearly  = "yearly"
)

// RevenueScope values: which orders count toward revenue series.
const (
	ScopeDelivered = "delivered"
	ScopeAll       = "all"
)

var (
	weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	weekLabels    = []string{"Week 1", "Week 2", "Week 3", "Week 4"}
	monthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

type RevenuePoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

type OrderCountPoint struct {
	Label  string `json:"label"`
	Orders int    `json:"orders"`
}

type GrowthPoint struct {
	Label    string  `json:"label"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

type ItemStat struct {
	ItemID   uint    `json:"itemId"`
	Name     string  `json:"itemName"`
	Category string  `json:"itemCategory"`
	Image    string  `json:"itemImage"`
	Orders   int     `json:"orders"`
	Revenue  float64 `json:"revenue"`
}

type SellingItemsReport struct {
	Top5    []ItemStat `json:"top5"`
	Lowest5 []ItemStat `json:"lowest5"`
}

// AnalyticsService derives every revenue/growth view on demand from raw order
// scans; nothing is materialized. FeeRate is the platform's share of each line
// item and is applied at read time only.
type AnalyticsService struct {
	DB           *gorm.DB
	FeeRate      float64
	RevenueScope string

	// nowFn is swapped in tests to pin the bucket windows.
	nowFn func() time.Time
}

func NewAnalyticsService(db *gorm.DB, feeRate float64, revenueScope string) *AnalyticsService {
	return &AnalyticsService{
		DB:           db,
		FeeRate:      feeRate,
		RevenueScope: revenueScope,
		nowFn:        time.Now,
	}
}

func (as *AnalyticsService) now() time.Time {
	if as.nowFn != nil {
		return as.nowFn()
	}
	return time.Now()
}

// restaurantShare is the factor applied to a line total to attribute revenue
// to the restaurant; the remainder is the platform's fee.
func (as *AnalyticsService) restaurantShare() float64 {
	return 1 - as.FeeRate
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfISOWeek returns the preceding Monday at midnight.
func startOfISOWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return startOfDay(t).AddDate(0, 0, -(weekday - 1))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

func weekdayIndex(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return weekday - 1
}

// weekOfMonthIndex buckets a day-of-month into one of four weeks; days 29-31
// fold into week 4.
func weekOfMonthIndex(t time.Time) int {
	week := (t.Day() + 6) / 7
	if week > 4 {
		week = 4
	}
	return week - 1
}

func validRange(rng string) bool {
	return rng == RangeWeekly || rng == RangeMonthly || rng == RangeYearly
}

// seriesWindow returns the half-open scan window and a bucket-index function
// for a restaurant series range.
func (as *AnalyticsService) seriesWindow(rng string) (time.Time, time.Time, []string, func(time.Time) int) {
	now := as.now()
	switch rng {
	case RangeWeekly:
		start := startOfISOWeek(now)
		return start, start.AddDate(0, 0, 7), weekdayLabels, weekdayIndex
	case RangeMonthly:
		start := startOfDay(now.AddDate(0, 0, -30))
		index := func(t time.Time) int {
			i := int(t.Sub(start).Hours() / (24 * 7))
			if i > 3 {
				i = 3
			}
			if i < 0 {
				i = 0
			}
			return i
		}
		return start, now, weekLabels, index
	default: // yearly
		start := startOfYear(now)
		index := func(t time.Time) int {
			return int(t.Month()) - 1
		}
		return start, start.AddDate(1, 0, 0), monthLabels, index
	}
}

func (as *AnalyticsService) ordersInWindow(ctx context.Context, start, end time.Time, revenueScoped, withItems bool) ([]models.Order, error) {
	q := as.DB.WithContext(ctx).Where("created_at >= ? AND created_at < ?", start, end)
	if revenueScoped && as.RevenueScope == ScopeDelivered {
		q = q.Where("status = ?", models.OrderDelivered)
	}
	if withItems {
		q = q.Preload("OrderItems")
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// RestaurantRevenueSeries buckets the restaurant's attributed revenue
// (line totals at the restaurant share) over the selected range.
func (as *AnalyticsService) RestaurantRevenueSeries(ctx context.Context, restaurantID uint, rng string) ([]RevenuePoint, error) {
	if !validRange(rng) {
		return nil, utils.ValidationError("invalid analytics range %q", rng)
	}
	start, end, labels, bucketIndex := as.seriesWindow(rng)

	orders, err := as.ordersInWindow(ctx, start, end, true, true)
	if err != nil {
		return nil, err
	}

	revenue := make([]float64, len(labels))
	share := as.restaurantShare()
	for _, order := range orders {
		for _, item := range order.OrderItems {
			if item.RestaurantID == restaurantID {
				revenue[bucketIndex(order.CreatedAt)] += item.Price * share
			}
		}
	}

	points := make([]RevenuePoint, len(labels))
	for i, label := range labels {
		points[i] = RevenuePoint{Label: label, Revenue: utils.RoundToCents(revenue[i])}
	}
	return points, nil
}

// RestaurantOrderGrowth counts, per bucket, the orders containing at least one
// of the restaurant's items. All statuses count, matching the growth charts.
func (as *AnalyticsService) RestaurantOrderGrowth(ctx context.Context, restaurantID uint, rng string) ([]OrderCountPoint, error) {
	if !validRange(rng) {
		return nil, utils.ValidationError("invalid analytics range %q", rng)
	}
	start, end, labels, bucketIndex := as.seriesWindow(rng)

	orders, err := as.ordersInWindow(ctx, start, end, false, false)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(labels))
	for _, order := range orders {
		if order.RestaurantID == restaurantID {
			counts[bucketIndex(order.CreatedAt)]++
		}
	}

	points := make([]OrderCountPoint, len(labels))
	for i, label := range labels {
		points[i] = OrderCountPoint{Label: label, Orders: counts[i]}
	}
	return points, nil
}

// SellingItems aggregates the restaurant's line items across all orders:
// "orders" sums quantities, "revenue" sums line totals. Top/bottom five by
// order count.
func (as *AnalyticsService) SellingItems(ctx context.Context, restaurantID uint) (*SellingItemsReport, error) {
	var items []models.OrderItem
	if err := as.DB.WithContext(ctx).
		Preload("MenuItem").
		Where("restaurant_id = ?", restaurantID).
		Find(&items).Error; err != nil {
		return nil, err
	}

	statsByItem := make(map[uint]*ItemStat)
	for _, item := range items {
		stat, ok := statsByItem[item.MenuItemID]
		if !ok {
			stat = &ItemStat{
				ItemID:   item.MenuItemID,
				Name:     item.MenuItem.Name,
				Category: item.MenuItem.Category,
				Image:    item.MenuItem.Image,
			}
			statsByItem[item.MenuItemID] = stat
		}
		stat.Orders += item.Quantity
		stat.Revenue += item.Price
	}

	all := make([]ItemStat, 0, len(statsByItem))
	for _, stat := range statsByItem {
		stat.Revenue = utils.RoundToCents(stat.Revenue)
		all = append(all, *stat)
	}

	report := &SellingItemsReport{}
	report.Top5 = topN(all, 5, func(a, b ItemStat) bool {
		if a.Orders != b.Orders {
			return a.Orders > b.Orders
		}
		return a.ItemID < b.ItemID
	})
	report.Lowest5 = topN(all, 5, func(a, b ItemStat) bool {
		if a.Orders != b.Orders {
			return a.Orders < b.Orders
		}
		return a.ItemID < b.ItemID
	})
	return report, nil
}

func topN(items []ItemStat, n int, less func(a, b ItemStat) bool) []ItemStat {
	sorted := make([]ItemStat, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type CustomerSplit struct {
	NewCustomers                int     `json:"newCustomers"`
	ReturningCustomers          int     `json:"returningCustomers"`
	NewCustomerPercentage       float64 `json:"newCustomerPercentage"`
	ReturningCustomerPercentage float64 `json:"returningCustomerPercentage"`
}

type AdminSummary struct {
	TotalCustomers           int64 `json:"totalCustomers"`
	TotalRestaurants         int64 `json:"totalRestaurants"`
	TotalPendingRestaurants  int64 `json:"totalPendingRestaurants"`
	CustomerSplit
	AdminRevenueCurrent  float64 `json:"adminRevenueCurrent"`
	AdminRevenuePrevious float64 `json:"adminRevenuePrevious"`
}

type RestaurantStat struct {
	RestaurantID uint                     `json:"restaurantId"`
	Name         string                   `json:"name"`
	Status       models.OperationalStatus `json:"status"`
	TotalOrders  int                      `json:"totalOrders"`
	TotalRevenue float64                  `json:"totalRevenue"`
}

type AdminAnalyticsReport struct {
	Summary        AdminSummary                 `json:"summary"`
	OrderGrowth    []OrderCountPoint            `json:"orderGrowth"`
	RevenueGrowth  []GrowthPoint                `json:"revenueGrowth"`
	TopRestaurants []RestaurantStat             `json:"topRestaurants"`
	TodayOrders    map[models.OrderStatus]int64 `json:"todayOrders"`
}

// periodWindows returns the current and previous period bounds for a range.
func (as *AnalyticsService) periodWindows(rng string) (curStart, curEnd, prevStart, prevEnd time.Time) {
	now := as.now()
	switch rng {
	case RangeWeekly:
		curStart = startOfISOWeek(now)
		curEnd = curStart.AddDate(0, 0, 7)
		prevStart = curStart.AddDate(0, 0, -7)
		prevEnd = curStart
	case RangeMonthly:
		curStart = startOfMonth(now)
		curEnd = curStart.AddDate(0, 1, 0)
		prevStart = curStart.AddDate(0, -1, 0)
		prevEnd = curStart
	default: // yearly
		curStart = startOfYear(now)
		curEnd = curStart.AddDate(1, 0, 0)
		prevStart = curStart.AddDate(-1, 0, 0)
		prevEnd = curStart
	}
	return
}

// CustomerSplitForPeriod classifies each customer active in
// [periodStart, periodEnd) as returning (some order exists strictly before
// periodStart) or new. Percentages are of active customers, 0 when none.
func (as *AnalyticsService) CustomerSplitForPeriod(ctx context.Context, periodStart, periodEnd time.Time) (*CustomerSplit, error) {
	var customerIDs []uint
	if err := as.DB.WithContext(ctx).Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", periodStart, periodEnd).
		Distinct().Pluck("customer_id", &customerIDs).Error; err != nil {
		return nil, err
	}

	split := &CustomerSplit{}
	for _, customerID := range customerIDs {
		var earlier int64
		if err := as.DB.WithContext(ctx).Model(&models.Order{}).
			Where("customer_id = ? AND created_at < ?", customerID, periodStart).
			Count(&earlier).Error; err != nil {
			return nil, err
		}
		if earlier > 0 {
			split.ReturningCustomers++
		} else {
			split.NewCustomers++
		}
	}

	active := split.NewCustomers + split.ReturningCustomers
	if active > 0 {
		split.NewCustomerPercentage = utils.RoundPercentage(float64(split.NewCustomers) / float64(active) * 100)
		split.ReturningCustomerPercentage = utils.RoundPercentage(float64(split.ReturningCustomers) / float64(active) * 100)
	}
	return split, nil
}

func (as *AnalyticsService) AdminAnalytics(ctx context.Context, rng string) (*AdminAnalyticsReport, error) {
	if !validRange(rng) {
		return nil, utils.ValidationError("invalid analytics range %q", rng)
	}
	curStart, curEnd, prevStart, prevEnd := as.periodWindows(rng)

	report := &AdminAnalyticsReport{}

	db := as.DB.WithContext(ctx)
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).
		Count(&report.Summary.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Restaurant{}).Count(&report.Summary.TotalRestaurants).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Restaurant{}).
		Where("verification_status = ?", models.VerificationPending).
		Count(&report.Summary.TotalPendingRestaurants).Error; err != nil {
		return nil, err
	}

	var currentOrders, previousOrders []models.Order
	if err := db.Where("created_at >= ? AND created_at < ?", curStart, curEnd).
		Find(&currentOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Where("created_at >= ? AND created_at < ?", prevStart, prevEnd).
		Find(&previousOrders).Error; err != nil {
		return nil, err
	}

	split, err := as.CustomerSplitForPeriod(ctx, curStart, curEnd)
	if err != nil {
		return nil, err
	}
	report.Summary.CustomerSplit = *split

	for _, o := range currentOrders {
		report.Summary.AdminRevenueCurrent += o.TotalPrice * as.FeeRate
	}
	for _, o := range previousOrders {
		report.Summary.AdminRevenuePrevious += o.TotalPrice * as.FeeRate
	}
	report.Summary.AdminRevenueCurrent = utils.RoundToCents(report.Summary.AdminRevenueCurrent)
	report.Summary.AdminRevenuePrevious = utils.RoundToCents(report.Summary.AdminRevenuePrevious)

	labels, bucketIndex := growthBuckets(rng)

	orderCounts := make([]int, len(labels))
	currentRevenue := make([]float64, len(labels))
	previousRevenue := make([]float64, len(labels))
	for _, o := range currentOrders {
		i := bucketIndex(o.CreatedAt)
		orderCounts[i]++
		currentRevenue[i] += o.TotalPrice * as.FeeRate
	}
	for _, o := range previousOrders {
		previousRevenue[bucketIndex(o.CreatedAt)] += o.TotalPrice * as.FeeRate
	}

	for i, label := range labels {
		report.OrderGrowth = append(report.OrderGrowth, OrderCountPoint{Label: label, Orders: orderCounts[i]})
		report.RevenueGrowth = append(report.RevenueGrowth, GrowthPoint{
			Label:    label,
			Current:  utils.RoundToCents(currentRevenue[i]),
			Previous: utils.RoundToCents(previousRevenue[i]),
		})
	}

	topRestaurants, err := as.topRestaurantsByRevenue(ctx, curStart, curEnd, 5)
	if err != nil {
		return nil, err
	}
	report.TopRestaurants = topRestaurants

	todayOrders, err := as.todayStatusCounts(ctx, 0)
	if err != nil {
		return nil, err
	}
	report.TodayOrders = todayOrders

	return report, nil
}

func growthBuckets(rng string) ([]string, func(time.Time) int) {
	switch rng {
	case RangeWeekly:
		return weekdayLabels, weekdayIndex
	case RangeMonthly:
		return weekLabels, weekOfMonthIndex
	default:
		return monthLabels, func(t time.Time) int { return int(t.Month()) - 1 }
	}
}

func (as *AnalyticsService) topRestaurantsByRevenue(ctx context.Context, start, end time.Time, n int) ([]RestaurantStat, error) {
	var restaurants []models.Restaurant
	if err := as.DB.WithContext(ctx).Find(&restaurants).Error; err != nil {
		return nil, err
	}

	orders, err := as.ordersInWindow(ctx, start, end, true, true)
	if err != nil {
		return nil, err
	}

	share := as.restaurantShare()
	stats := make([]RestaurantStat, 0, len(restaurants))
	for _, rest := range restaurants {
		stat := RestaurantStat{RestaurantID: rest.ID, Name: rest.Name, Status: rest.OperationalStatus}
		for _, order := range orders {
			if order.RestaurantID != rest.ID {
				continue
			}
			stat.TotalOrders++
			for _, item := range order.OrderItems {
				stat.TotalRevenue += item.Price * share
			}
		}
		stat.TotalRevenue = utils.RoundToCents(stat.TotalRevenue)
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalRevenue != stats[j].TotalRevenue {
			return stats[i].TotalRevenue > stats[j].TotalRevenue
		}
		return stats[i].RestaurantID < stats[j].RestaurantID
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats, nil
}

// todayStatusCounts counts today's orders per status; restaurantID 0 means
// platform-wide.
func (as *AnalyticsService) todayStatusCounts(ctx context.Context, restaurantID uint) (map[models.OrderStatus]int64, error) {
	dayStart := startOfDay(as.now())
	dayEnd := dayStart.AddDate(0, 0, 1)

	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		q := as.DB.WithContext(ctx).Model(&models.Order{}).
			Where("status = ? AND created_at >= ? AND created_at < ?", status, dayStart, dayEnd)
		if restaurantID != 0 {
			q = q.Where("restaurant_id = ?", restaurantID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}

// TodayOrderStats is the per-restaurant variant of the daily status breakdown.
func (as *AnalyticsService) TodayOrderStats(ctx context.Context, restaurantID uint) (map[models.OrderStatus]int64, error) {
	return as.todayStatusCounts(ctx, restaurantID)
}

type DashboardStats struct {
	TodayOrders int64   `json:"todayOrders"`
	TodaySales  float64 `json:"todaySales"`
	AvgOrder    float64 `json:"avgOrder"`
	Customers   int64   `json:"customers"`
}

// RestaurantDashboardStats summarizes today's business for one restaurant.
func (as *AnalyticsService) RestaurantDashboardStats(ctx context.Context, restaurantID uint) (*DashboardStats, error) {
	dayStart := startOfDay(as.now())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var orders []models.Order
	if err := as.DB.WithContext(ctx).
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, dayStart, dayEnd).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	stats := &DashboardStats{TodayOrders: int64(len(orders))}
	customers := make(map[uint]struct{})
	for _, o := range orders {
		stats.TodaySales += o.TotalPrice
		customers[o.CustomerID] = struct{}{}
	}
	stats.TodaySales = utils.RoundToCents(stats.TodaySales)
	stats.Customers = int64(len(customers))
	if stats.TodayOrders > 0 {
		stats.AvgOrder = utils.RoundToCents(stats.TodaySales / float64(stats.TodayOrders))
	}
	return stats, nil
}

type AllTimeStats struct {
	TotalOrders    int64                          `json:"totalOrders"`
	TotalSales     float64                        `json:"totalSales"`
	AvgRevenue     float64                        `json:"avgRevenue"`
	TotalCustomers int64                          `json:"totalCustomers"`
	StatusCounts   map[models.OrderStatus]int64   `json:"statusCounts"`
	PaymentStats   map[models.PaymentStatus]int64 `json:"paymentStats"`
}

// RestaurantAllTimeStats is the all-time analytics view for one restaurant.
func (as *AnalyticsService) RestaurantAllTimeStats(ctx context.Context, restaurantID uint) (*AllTimeStats, error) {
	var orders []models.Order
	if err := as.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	stats := &AllTimeStats{
		TotalOrders:  int64(len(orders)),
		StatusCounts: make(map[models.OrderStatus]int64),
		PaymentStats: make(map[models.PaymentStatus]int64),
	}
	for _, status := range models.OrderStatuses {
		stats.StatusCounts[status] = 0
	}
	for _, ps := range []models.PaymentStatus{models.PaymentPending, models.PaymentPaid, models.PaymentFailed} {
		stats.PaymentStats[ps] = 0
	}

	customers := make(map[uint]struct{})
	for _, o := range orders {
		stats.TotalSales += o.TotalPrice
		stats.StatusCounts[o.Status]++
		stats.PaymentStats[o.PaymentStatus]++
		customers[o.CustomerID] = struct{}{}
	}
	stats.TotalSales = utils.RoundToCents(stats.TotalSales)
	stats.TotalCustomers = int64(len(customers))
	if stats.TotalOrders > 0 {
		stats.AvgRevenue = utils.RoundToCents(stats.TotalSales / float64(stats.TotalOrders))
	}
	return stats, nil
}

type CustomerProfileStats struct {
	TotalOrders          int64                        `json:"totalOrders"`
	TotalSpent           float64                      `json:"totalSpent"`
	LastOrderAt          *time.Time                   `json:"lastOrderAt,omitempty"`
	StatusCounts         map[models.OrderStatus]int64 `json:"statusCounts"`
	FavoriteRestaurantID uint                         `json:"favoriteRestaurantId,omitempty"`
	FavoriteRestaurant   string                       `json:"favoriteRestaurant,omitempty"`
	FavoriteItemID       uint                         `json:"favoriteItemId,omitempty"`
	FavoriteItem         string                       `json:"favoriteItem,omitempty"`
}

// CustomerProfileStats summarizes one customer's order record for the admin
// profile view. Spend counts paid orders only; favorites are the restaurant
// with the most orders and the item with the highest total quantity.
func (as *AnalyticsService) CustomerProfileStats(ctx context.Context, customerID uint) (*CustomerProfileStats, error) {
	var orders []models.Order
	if err := as.DB.WithContext(ctx).
		Preload("OrderItems").
		Preload("OrderItems.MenuItem").
		Where("customer_id = ?", customerID).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	stats := &CustomerProfileStats{
		TotalOrders:  int64(len(orders)),
		StatusCounts: make(map[models.OrderStatus]int64, len(models.OrderStatuses)),
	}
	for _, status := range models.OrderStatuses {
		stats.StatusCounts[status] = 0
	}

	restaurantOrders := make(map[uint]int)
	itemQuantities := make(map[uint]int)
	itemNames := make(map[uint]string)
	for _, order := range orders {
		stats.StatusCounts[order.Status]++
		if order.PaymentStatus == models.PaymentPaid {
			stats.TotalSpent += order.TotalPrice
		}
		if stats.LastOrderAt == nil || order.CreatedAt.After(*stats.LastOrderAt) {
			t := order.CreatedAt
			stats.LastOrderAt = &t
		}
		restaurantOrders[order.RestaurantID]++
		for _, item := range order.OrderItems {
			itemQuantities[item.MenuItemID] += item.Quantity
			itemNames[item.MenuItemID] = item.MenuItem.Name
		}
	}
	stats.TotalSpent = utils.RoundToCents(stats.TotalSpent)

	for restaurantID, count := range restaurantOrders {
		if count > restaurantOrders[stats.FavoriteRestaurantID] ||
			(count == restaurantOrders[stats.FavoriteRestaurantID] && restaurantID < stats.FavoriteRestaurantID) {
			stats.FavoriteRestaurantID = restaurantID
		}
	}
	if stats.FavoriteRestaurantID != 0 {
		var restaurant models.Restaurant
		if err := as.DB.WithContext(ctx).First(&restaurant, stats.FavoriteRestaurantID).Error; err == nil {
			stats.FavoriteRestaurant = restaurant.Name
		}
	}

	for itemID, qty := range itemQuantities {
		if qty > itemQuantities[stats.FavoriteItemID] ||
			(qty == itemQuantities[stats.FavoriteItemID] && itemID < stats.FavoriteItemID) {
			stats.FavoriteItemID = itemID
		}
	}
	stats.FavoriteItem = itemNames[stats.FavoriteItemID]

	return stats, nil
}

type AdminDashboard struct {
	TotalCustomers    int64   `json:"totalCustomers"`
	TotalRestaurants  int64   `json:"totalRestaurants"`
	TotalOrders       int64   `json:"totalOrders"`
	PendingComplaints int64   `json:"pendingComplaints"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

func (as *AnalyticsService) AdminDashboardStats(ctx context.Context) (*AdminDashboard, error) {
	db := as.DB.WithContext(ctx)
	dash := &AdminDashboard{}

	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).
		Count(&dash.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Restaurant{}).Count(&dash.TotalRestaurants).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Where("status = ?", models.OrderConfirmed).
		Count(&dash.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Complaint{}).Where("status = ?", models.ComplaintPending).
		Count(&dash.PendingComplaints).Error; err != nil {
		return nil, err
	}

	var totals []float64
	if err := db.Model(&models.Order{}).Pluck("total_price", &totals).Error; err != nil {
		return nil, err
	}
	for _, t := range totals {
		dash.TotalRevenue += t
	}
	dash.TotalRevenue = utils.RoundToCents(dash.TotalRevenue)
	return dash, nil
}
