package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
	"github.com/vladislavdragonenkov/foodorder/internal/service/idempotency"
)

// CatalogService — операции каталога, которые обслуживает API.
type CatalogService interface {
	ListDishes(ctx context.Context) ([]domain.Dish, error)
	ListDishTypes(ctx context.Context) ([]domain.DishType, error)
	ListDishBases(ctx context.Context) ([]domain.DishBase, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	StructureByDish(ctx context.Context, dishID int64) ([]domain.Structure, error)
	CreateDish(ctx context.Context, fields domain.DishFields) (int64, error)
	UpdateDish(ctx context.Context, id int64, fields domain.DishFields) (int64, error)
	DeleteDish(ctx context.Context, id int64) (int64, error)
}

// OrderService — операции заказов, которые обслуживает API.
type OrderService interface {
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (int64, error)
	OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	CartByOrder(ctx context.Context, orderID int64) ([]domain.CartItem, error)
	ListPaytypes(ctx context.Context) ([]domain.Paytype, error)
}

// Deps — зависимости HTTP API.
type Deps struct {
	Catalog     CatalogService
	Orders      OrderService
	Idempotency *idempotency.Guard
	Metrics     *metrics.HTTPMetrics
	Logger      *log.Entry
	CORSOrigins []string
}

// NewRouter собирает gin engine с middleware и маршрутами API.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}

	r := gin.New()
	r.Use(requestID(), recovery(logger), accessLog(logger, deps.Metrics), corsMiddleware(deps.CORSOrigins))
	r.NoRoute(notFound)

	catalog := &catalogHandler{svc: deps.Catalog, logger: logger}
	orders := &orderHandler{svc: deps.Orders, guard: deps.Idempotency, logger: logger}

	api := r.Group("/api")
	{
		api.GET("/users", catalog.listUsers)
		api.GET("/types", catalog.listDishTypes)
		api.GET("/bases", catalog.listDishBases)
		api.GET("/prods", catalog.listProducts)
		api.GET("/paytypes", orders.listPaytypes)

		api.GET("/dishes", catalog.listDishes)
		api.POST("/dishes", catalog.createDish)
		api.PUT("/dishes/:id", catalog.updateDish)
		api.DELETE("/dishes/:id", catalog.deleteDish)
		api.GET("/dishes/:id/structure", catalog.structureByDish)

		api.POST("/orders", orders.placeOrder)
		api.GET("/orders/:id/cart", orders.cartByOrder)
		api.GET("/users/:id/orders", orders.ordersByUser)
	}

	return r
}
