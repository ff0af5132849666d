package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"drivebid/models"
)

type vehicleRequest struct {
	Make          string                `json:"make" binding:"required"`
	Model         string                `json:"model" binding:"required"`
	Year          int32                 `json:"year" binding:"required"`
	Price         decimal.Decimal       `json:"price" binding:"required"`
	Mileage       *int32                `json:"mileage"`
	ExteriorColor *string               `json:"exteriorColor"`
	InteriorColor *string               `json:"interiorColor"`
	Engine        *string               `json:"engine"`
	Transmission  *string               `json:"transmission"`
	FuelType      *string               `json:"fuelType"`
	ImageURLs     *[]string             `json:"imageUrls"`
	Features      *[]string             `json:"features"`
	Description   *string               `json:"description"`
	Status        *models.VehicleStatus `json:"status"`
	IsFeatured    *bool                 `json:"isFeatured"`
}

type vehicleResponse struct {
	ID            uuid.UUID            `json:"id"`
	Make          string               `json:"make"`
	Model         string               `json:"model"`
	Year          int32                `json:"year"`
	Price         decimal.Decimal      `json:"price"`
	Mileage       *int32               `json:"mileage,omitempty"`
	ExteriorColor *string              `json:"exteriorColor,omitempty"`
	InteriorColor *string              `json:"interiorColor,omitempty"`
	Engine        *string              `json:"engine,omitempty"`
	Transmission  *string              `json:"transmission,omitempty"`
	FuelType      *string              `json:"fuelType,omitempty"`
	ImageURLs     []string             `json:"imageUrls"`
	Features      []string             `json:"features"`
	Description   *string              `json:"description,omitempty"`
	Status        models.VehicleStatus `json:"status"`
	IsFeatured    bool                 `json:"isFeatured"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func toVehicleResponse(vehicle *models.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:            vehicle.ID,
		Make:          vehicle.Make,
		Model:         vehicle.VehicleModel,
		Year:          vehicle.Year,
		Price:         vehicle.Price,
		Mileage:       vehicle.Mileage,
		ExteriorColor: vehicle.ExteriorColor,
		InteriorColor: vehicle.InteriorColor,
		Engine:        vehicle.Engine,
		Transmission:  vehicle.Transmission,
		FuelType:      vehicle.FuelType,
		ImageURLs:     vehicle.ImageURLs,
		Features:      vehicle.Features,
		Description:   vehicle.Description,
		Status:        vehicle.Status,
		IsFeatured:    vehicle.IsFeatured,
		CreatedAt:     vehicle.CreatedAt,
	}
}

// sanitizeVehicle 清理所有會回顯給其他使用者的自由文字欄位
func (impl *ServerImpl) sanitizeVehicle(request *vehicleRequest) {
	if request.Description != nil {
		request.Description = lo.ToPtr(impl.htmlChecker.Sanitize(*request.Description))
	}
	if request.Features != nil {
		*request.Features = lo.Map(*request.Features, func(feature string, _ int) string {
			return impl.htmlChecker.Sanitize(feature)
		})
	}
}

// List vehicles
// (GET /vehicles)
func (impl *ServerImpl) GetVehicles(c *gin.Context) {
	const op = "GetVehicles"
	// 建立查詢
	query := impl.db.Model(&models.Vehicle{})
	//  - make
	if vehicleMake := c.Query("make"); vehicleMake != "" {
		query = query.Where("make LIKE ?", "%"+vehicleMake+"%")
	}
	//  - model
	if vehicleModel := c.Query("model"); vehicleModel != "" {
		query = query.Where("model LIKE ?", "%"+vehicleModel+"%")
	}
	//  - year
	if yearFrom := c.Query("yearFrom"); yearFrom != "" {
		if year, err := strconv.Atoi(yearFrom); err == nil {
			query = query.Where("year >= ?", year)
		}
	}
	if yearTo := c.Query("yearTo"); yearTo != "" {
		if year, err := strconv.Atoi(yearTo); err == nil {
			query = query.Where("year <= ?", year)
		}
	}
	//  - price
	if priceFrom := c.Query("priceFrom"); priceFrom != "" {
		if price, err := decimal.NewFromString(priceFrom); err == nil {
			query = query.Where("price >= ?", price)
		}
	}
	if priceTo := c.Query("priceTo"); priceTo != "" {
		if price, err := decimal.NewFromString(priceTo); err == nil {
			query = query.Where("price <= ?", price)
		}
	}
	//  - status
	if status := models.VehicleStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle status."})
			return
		}
		query = query.Where("status = ?", status)
	}
	//  - sort
	sortKey, desc := "created_at", true
	switch c.Query("sort") {
	case "", "newest":
	case "priceAsc":
		sortKey, desc = "price", false
	case "priceDesc":
		sortKey, desc = "price", true
	case "yearDesc":
		sortKey, desc = "year", true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort key."})
		return
	}
	query = query.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: sortKey}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: false},
	}})
	// 查詢車輛
	var vehicles []models.Vehicle
	if result := query.Find(&vehicles); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(vehicles),
		"vehicles": lo.Map(vehicles, func(vehicle models.Vehicle, _ int) vehicleResponse {
			return toVehicleResponse(&vehicle)
		}),
	})
}

// List featured vehicles
// (GET /vehicles/featured)
func (impl *ServerImpl) GetFeaturedVehicles(c *gin.Context) {
	const op = "GetFeaturedVehicles"
	var vehicles []models.Vehicle
	result := impl.db.
		Where("is_featured = ? AND status = ?", true, models.VehicleAvailable).
		Order("created_at DESC").
		Find(&vehicles)
	if result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(vehicles),
		"vehicles": lo.Map(vehicles, func(vehicle models.Vehicle, _ int) vehicleResponse {
			return toVehicleResponse(&vehicle)
		}),
	})
}

// Get vehicle details
// (GET /vehicles/:vehicleID)
func (impl *ServerImpl) GetVehicle(c *gin.Context) {
	const op = "GetVehicle"
	vehicleID, err := uuid.Parse(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id."})
		return
	}
	var vehicle models.Vehicle
	if result := impl.db.First(&vehicle, "id = ?", vehicleID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(&vehicle))
}

// Add a vehicle
// (POST /vehicles)
func (impl *ServerImpl) PostVehicle(c *gin.Context) {
	const op = "PostVehicle"
	var request vehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle payload."})
		return
	}
	if request.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative."})
		return
	}
	if request.Status != nil && !request.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle status."})
		return
	}
	impl.sanitizeVehicle(&request)
	// 處理預設值
	if request.ImageURLs == nil {
		request.ImageURLs = lo.ToPtr([]string{})
	}
	if request.Features == nil {
		request.Features = lo.ToPtr([]string{})
	}
	if request.Status == nil {
		request.Status = lo.ToPtr(models.VehicleAvailable)
	}
	vehicle := models.Vehicle{
		ID:            uuid.New(),
		Make:          request.Make,
		VehicleModel:  request.Model,
		Year:          request.Year,
		Price:         request.Price,
		Mileage:       request.Mileage,
		ExteriorColor: request.ExteriorColor,
		InteriorColor: request.InteriorColor,
		Engine:        request.Engine,
		Transmission:  request.Transmission,
		FuelType:      request.FuelType,
		ImageURLs:     *request.ImageURLs,
		Features:      *request.Features,
		Description:   request.Description,
		Status:        *request.Status,
		IsFeatured:    request.IsFeatured != nil && *request.IsFeatured,
	}
	if result := impl.db.Create(&vehicle); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.Header("Location", "/vehicles/"+vehicle.ID.String())
	c.JSON(http.StatusCreated, toVehicleResponse(&vehicle))
}

// Update a vehicle
// (PUT /vehicles/:vehicleID)
func (impl *ServerImpl) PutVehicle(c *gin.Context) {
	const op = "PutVehicle"
	vehicleID, err := uuid.Parse(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id."})
		return
	}
	var request vehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle payload."})
		return
	}
	if request.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative."})
		return
	}
	if request.Status != nil && !request.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle status."})
		return
	}
	impl.sanitizeVehicle(&request)
	var vehicle models.Vehicle
	if result := impl.db.First(&vehicle, "id = ?", vehicleID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	vehicle.Make = request.Make
	vehicle.VehicleModel = request.Model
	vehicle.Year = request.Year
	vehicle.Price = request.Price
	vehicle.Mileage = request.Mileage
	vehicle.ExteriorColor = request.ExteriorColor
	vehicle.InteriorColor = request.InteriorColor
	vehicle.Engine = request.Engine
	vehicle.Transmission = request.Transmission
	vehicle.FuelType = request.FuelType
	vehicle.Description = request.Description
	if request.ImageURLs != nil {
		vehicle.ImageURLs = *request.ImageURLs
	}
	if request.Features != nil {
		vehicle.Features = *request.Features
	}
	if request.Status != nil {
		vehicle.Status = *request.Status
	}
	if request.IsFeatured != nil {
		vehicle.IsFeatured = *request.IsFeatured
	}
	if result := impl.db.Save(&vehicle); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(&vehicle))
}

// Remove a vehicle
// (DELETE /vehicles/:vehicleID)
func (impl *ServerImpl) DeleteVehicle(c *gin.Context) {
	const op = "DeleteVehicle"
	vehicleID, err := uuid.Parse(c.Param("vehicleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle id."})
		return
	}
	// 已經掛上拍賣的車輛不允許刪除
	var auctionCount int64
	if result := impl.db.Model(&models.Auction{}).Where("vehicle_id = ?", vehicleID).Count(&auctionCount); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if auctionCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Vehicle has auctions and cannot be deleted."})
		return
	}
	result := impl.db.Delete(&models.Vehicle{}, "id = ?", vehicleID)
	if result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found."})
		return
	}
	c.Status(http.StatusNoContent)
}
