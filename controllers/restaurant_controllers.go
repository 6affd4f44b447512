package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/middlewares"
	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/services"
	"github.com/feastly/foodmarket-app/utils"
)

type RestaurantController struct {
	DB        *gorm.DB
	Analytics *services.AnalyticsService
	Images    services.ImageStore
}

func NewRestaurantController(db *gorm.DB, analytics *services.AnalyticsService, images services.ImageStore) *RestaurantController {
	return &RestaurantController{DB: db, Analytics: analytics, Images: images}
}

// ownedRestaurant loads the caller's restaurant and enforces ownership.
func (rc *RestaurantController) ownedRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	ownerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return nil, false
	}
	var restaurant models.Restaurant
	if err := rc.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("no restaurant registered for this account"))
		return nil, false
	}
	return &restaurant, true
}

func (rc *RestaurantController) Register(c *gin.Context) {
	ownerID, ok := middlewares.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var existing models.Restaurant
	if err := rc.DB.Where("owner_id = ?", ownerID).First(&existing).Error; err == nil {
		utils.RespondAppError(c, utils.ValidationError("a restaurant is already registered for this account"))
		return
	}

	name := c.PostForm("name")
	phone := c.PostForm("phone")
	address := c.PostForm("address")
	if name == "" || phone == "" || address == "" {
		utils.RespondAppError(c, utils.ValidationError("name, phone and address are required"))
		return
	}

	restaurant := models.Restaurant{
		OwnerID:            ownerID,
		Name:               name,
		Phone:              phone,
		Address:            address,
		Cuisine:            c.PostForm("cuisine"),
		Description:        c.PostForm("description"),
		OpeningHours:       c.PostForm("openingHours"),
		DeliveryTime:       c.PostForm("deliveryTime"),
		VerificationStatus: models.VerificationPending,
		OperationalStatus:  models.OperationalActive,
		DeliveryAvailable:  true,
	}

	if url, err := rc.uploadFormImage(c, "logo", "restaurant/logos"); err != nil {
		utils.RespondAppError(c, err)
		return
	} else if url != "" {
		restaurant.Logo = url
	}
	if url, err := rc.uploadFormImage(c, "license", "restaurant/licenses"); err != nil {
		utils.RespondAppError(c, err)
		return
	} else if url != "" {
		restaurant.License = url
	}

	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", ownerID).
			Update("is_onboarded", true).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant registered: %s (owner=%d)", restaurant.Name, ownerID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant registered, pending verification", restaurant)
}

func (rc *RestaurantController) UpdateDetails(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}

	if v := c.PostForm("name"); v != "" {
		restaurant.Name = v
	}
	if v := c.PostForm("phone"); v != "" {
		restaurant.Phone = v
	}
	if v := c.PostForm("address"); v != "" {
		restaurant.Address = v
	}
	if v := c.PostForm("cuisine"); v != "" {
		restaurant.Cuisine = v
	}
	if v := c.PostForm("description"); v != "" {
		restaurant.Description = v
	}
	if v := c.PostForm("openingHours"); v != "" {
		restaurant.OpeningHours = v
	}
	if v := c.PostForm("deliveryTime"); v != "" {
		restaurant.DeliveryTime = v
	}
	if v := c.PostForm("deliveryAvailable"); v != "" {
		restaurant.DeliveryAvailable = v == "true"
	}
	if url, err := rc.uploadFormImage(c, "logo", "restaurant/logos"); err != nil {
		utils.RespondAppError(c, err)
		return
	} else if url != "" {
		restaurant.Logo = url
	}

	if err := rc.DB.Save(restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated successfully", restaurant)
}

func (rc *RestaurantController) MyRestaurant(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}
	if err := rc.DB.Preload("Menu").First(restaurant, restaurant.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant fetched", restaurant)
}

// approvedRestaurant enforces that menu management only happens once the
// platform has verified the restaurant.
func (rc *RestaurantController) approvedRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return nil, false
	}
	if restaurant.VerificationStatus != models.VerificationApproved {
		utils.RespondAppError(c, utils.AuthorizationError("restaurant is not approved yet"))
		return nil, false
	}
	return restaurant, true
}

func (rc *RestaurantController) AddMenuItem(c *gin.Context) {
	restaurant, ok := rc.approvedRestaurant(c)
	if !ok {
		return
	}

	name := c.PostForm("name")
	category := c.PostForm("category")
	priceRaw := c.PostForm("price")
	price, err := strconv.ParseFloat(priceRaw, 64)
	if name == "" || category == "" || err != nil || price <= 0 {
		utils.RespondAppError(c, utils.ValidationError("name, category and a positive price are required"))
		return
	}

	item := models.MenuItem{
		RestaurantID: restaurant.ID,
		Name:         name,
		Price:        utils.RoundToCents(price),
		Category:     category,
	}
	if url, err := rc.uploadFormImage(c, "image", "restaurant/menu-items"); err != nil {
		utils.RespondAppError(c, err)
		return
	} else if url != "" {
		item.Image = url
	}

	if err := rc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item added successfully", item)
}

func (rc *RestaurantController) UpdateMenuItem(c *gin.Context) {
	restaurant, ok := rc.approvedRestaurant(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid menu item id"))
		return
	}

	var item models.MenuItem
	if err := rc.DB.Where("id = ? AND restaurant_id = ?", itemID, restaurant.ID).
		First(&item).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("menu item not found"))
		return
	}

	if v := c.PostForm("name"); v != "" {
		item.Name = v
	}
	if v := c.PostForm("category"); v != "" {
		item.Category = v
	}
	if v := c.PostForm("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price <= 0 {
			utils.RespondAppError(c, utils.ValidationError("price must be a positive number"))
			return
		}
		item.Price = utils.RoundToCents(price)
	}
	if url, err := rc.uploadFormImage(c, "image", "restaurant/menu-items"); err != nil {
		utils.RespondAppError(c, err)
		return
	} else if url != "" {
		item.Image = url
	}

	if err := rc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated successfully", item)
}

func (rc *RestaurantController) DeleteMenuItem(c *gin.Context) {
	restaurant, ok := rc.approvedRestaurant(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid menu item id"))
		return
	}

	result := rc.DB.Where("id = ? AND restaurant_id = ?", itemID, restaurant.ID).
		Delete(&models.MenuItem{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondAppError(c, utils.NotFoundError("menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", nil)
}

func (rc *RestaurantController) GetMenuItems(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}
	var items []models.MenuItem
	if err := rc.DB.Where("restaurant_id = ?", restaurant.ID).Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items fetched", items)
}

// restaurantFrontInfo is the public card shown on the customer storefront.
type restaurantFrontInfo struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Logo         string   `json:"logo"`
	Cuisines     []string `json:"cuisines"`
	Description  string   `json:"description"`
	OpeningHours string   `json:"openingHours"`
	DeliveryTime string   `json:"deliveryTime"`
	Address      string   `json:"address"`
}

func frontInfo(r models.Restaurant) restaurantFrontInfo {
	return restaurantFrontInfo{
		ID:           r.ID,
		Name:         r.Name,
		Logo:         r.Logo,
		Cuisines:     r.Cuisines(),
		Description:  r.Description,
		OpeningHours: r.OpeningHours,
		DeliveryTime: r.DeliveryTime,
		Address:      r.Address,
	}
}

// ListApproved is the public, paginated storefront listing. Only approved and
// operationally active restaurants appear.
func (rc *RestaurantController) ListApproved(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if limit < 1 || limit > 50 {
		limit = 12
	}

	query := rc.DB.Model(&models.Restaurant{}).
		Where("verification_status = ? AND operational_status <> ?",
			models.VerificationApproved, models.OperationalBlocked)
	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("cuisine LIKE ?", "%"+cuisine+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var restaurants []models.Restaurant
	if err := query.Order("name asc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cards := make([]restaurantFrontInfo, 0, len(restaurants))
	for _, r := range restaurants {
		cards = append(cards, frontInfo(r))
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurants fetched", gin.H{
		"restaurants": cards,
		"page":        page,
		"limit":       limit,
		"total":       total,
	})
}

// GetDetail is the public restaurant page: front info plus the menu grouped
// under its category list.
func (rc *RestaurantController) GetDetail(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("restaurant_id"), 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.ValidationError("invalid restaurant id"))
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.Preload("Menu").
		Where("id = ? AND verification_status = ?", restaurantID, models.VerificationApproved).
		First(&restaurant).Error; err != nil {
		utils.RespondAppError(c, utils.NotFoundError("restaurant not found"))
		return
	}

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, item := range restaurant.Menu {
		if _, ok := seen[item.Category]; !ok {
			seen[item.Category] = struct{}{}
			categories = append(categories, item.Category)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant fetched", gin.H{
		"restaurant": frontInfo(restaurant),
		"menu":       restaurant.Menu,
		"categories": categories,
	})
}

// ListCuisines returns the distinct cuisine tags across approved restaurants.
func (rc *RestaurantController) ListCuisines(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := rc.DB.Where("verification_status = ?", models.VerificationApproved).
		Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	seen := make(map[string]struct{})
	cuisines := make([]string, 0)
	for _, r := range restaurants {
		for _, cuisine := range r.Cuisines() {
			if _, ok := seen[cuisine]; !ok {
				seen[cuisine] = struct{}{}
				cuisines = append(cuisines, cuisine)
			}
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Cuisines fetched", cuisines)
}

// RevenueSeries returns the owner's bucketed revenue for ?range=weekly|monthly|yearly.
func (rc *RestaurantController) RevenueSeries(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}
	rng := c.DefaultQuery("range", services.RangeWeekly)

	points, err := rc.Analytics.RestaurantRevenueSeries(c.Request.Context(), restaurant.ID, rng)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue fetched", gin.H{
		"range":   rng,
		"revenue": points,
	})
}

// AnalyticsReport combines order growth, selling items and all-time stats for
// the owner dashboard.
func (rc *RestaurantController) AnalyticsReport(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}
	rng := c.DefaultQuery("range", services.RangeWeekly)
	ctx := c.Request.Context()

	growth, err := rc.Analytics.RestaurantOrderGrowth(ctx, restaurant.ID, rng)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	sellingItems, err := rc.Analytics.SellingItems(ctx, restaurant.ID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	allTime, err := rc.Analytics.RestaurantAllTimeStats(ctx, restaurant.ID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Analytics fetched", gin.H{
		"range":        rng,
		"orderGrowth":  growth,
		"sellingItems": sellingItems,
		"allTimeStats": allTime,
	})
}

func (rc *RestaurantController) TodayOrderStats(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}
	stats, err := rc.Analytics.TodayOrderStats(c.Request.Context(), restaurant.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Today order stats fetched", stats)
}

func (rc *RestaurantController) DashboardStats(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}
	stats, err := rc.Analytics.RestaurantDashboardStats(c.Request.Context(), restaurant.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats fetched", stats)
}

func (rc *RestaurantController) uploadFormImage(c *gin.Context, field, folder string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return rc.Images.StoreImage(c.Request.Context(), data, folder)
}
