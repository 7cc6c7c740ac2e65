package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/stockbook/inventory-api/docs"
	v1 "github.com/stockbook/inventory-api/internal/api/handler/v1"
	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/api/middleware"
	"github.com/stockbook/inventory-api/internal/config"
	"github.com/stockbook/inventory-api/internal/pkg/cache"
	"github.com/stockbook/inventory-api/internal/pkg/metrics"
	"github.com/stockbook/inventory-api/internal/pkg/storage"
	"github.com/stockbook/inventory-api/internal/repository"
	"github.com/stockbook/inventory-api/internal/repository/dao"
	"github.com/stockbook/inventory-api/internal/service"
)

const (
	basePath    = "/api"
	cachePrefix = "inventory:"

	shutdownTimeout = 10 * time.Second
)

// Deps are the shared resources the handlers are built from. Redis and
// Enqueuer are nil when Redis is disabled.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Disk     storage.Disk
	Enqueuer service.LowStockEnqueuer
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Feed   *v1.InventoryFeed
}

type handlers struct {
	health    *v1.HealthHandler
	auth      *v1.AuthHandler
	user      *v1.UserHandler
	supplier  *v1.SupplierHandler
	product   *v1.ProductHandler
	bill      *v1.BillHandler
	inventory *v1.InventoryHandler
	file      *v1.FileHandler
}

func NewServer(conf *config.AppConfig, deps Deps) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		Feed:   v1.NewInventoryFeed(conf.API.AllowedCORSDomains),
	}

	s.MountMiddlewares()

	var (
		store    cache.Store = cache.Noop{}
		denylist service.TokenDenylist
	)
	if deps.Redis != nil {
		store = cache.NewRedis(deps.Redis, cachePrefix)
		denylist = cache.NewDenylist(deps.Redis)
	}

	tx := dao.NewTransactor(deps.DB)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(deps.DB))
	supplierRepo := repository.NewSupplierRepository(dao.NewSupplierDAO(deps.DB))
	productRepo := repository.NewProductRepository(dao.NewProductDAO(deps.DB))
	billRepo := repository.NewBillRepository(dao.NewBillDAO(deps.DB))
	inventoryRepo := repository.NewInventoryRepository(dao.NewInventoryDAO(deps.DB))

	ledger := service.NewStockLedger(productRepo, inventoryRepo, store)
	ledger.SetPublisher(s.Feed)

	attachmentSvc := service.NewAttachmentService(deps.Disk, service.AttachmentConfig{
		AllowedExtensions: conf.Storage.AllowedExtensions,
		MaxSize:           conf.Storage.MaxUploadSize,
		PublicPrefix:      conf.Storage.BaseURL,
	})
	authSvc := service.NewAuthService(tx, userRepo, denylist, []byte(conf.API.JWTSigningKey), conf.API.JWTTTL)
	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(tx, productRepo, inventoryRepo, ledger, store)
	billingSvc := service.NewBillingService(tx, billRepo, ledger, deps.Enqueuer, service.BillingConfig{
		NumberPrefix:      conf.Billing.NumberPrefix,
		LowStockThreshold: conf.Inventory.LowStockThreshold,
	})
	inventorySvc := service.NewInventoryService(tx, inventoryRepo, supplierRepo, ledger, deps.Enqueuer, conf.Inventory.LowStockThreshold)

	auth := middleware.NewAuthenticator(authSvc, userSvc)
	s.MountHandlers(auth, handlers{
		health:    v1.NewHealthHandler(deps.DB, deps.Redis),
		auth:      v1.NewAuthHandler(authSvc, userSvc),
		user:      v1.NewUserHandler(userSvc),
		supplier:  v1.NewSupplierHandler(service.NewSupplierService(supplierRepo, attachmentSvc)),
		product:   v1.NewProductHandler(productSvc),
		bill:      v1.NewBillHandler(billingSvc),
		inventory: v1.NewInventoryHandler(inventorySvc),
		file:      v1.NewFileHandler(attachmentSvc),
	})

	return s
}

// Run starts the websocket hub and serves HTTP on addr until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.Feed.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("srv.ListenAndServe -> %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}

	return nil
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(metrics.Middleware())
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.SecureHeaders(s.Config.API.Environment == "production"))
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(auth *middleware.Authenticator, h handlers) {
	limit := middleware.RateLimit(s.Config.API.RateLimitPerMinute, time.Minute)

	public := s.Router.Group(basePath)
	{
		public.GET("/health", h.health.HandleHealthcheck)
		public.POST("/register", limit, h.auth.HandleRegister)
		public.POST("/login", limit, h.auth.HandleLogin)
	}

	api := s.Router.Group(basePath, auth.VerifyJWT())
	{
		api.POST("/logout", h.auth.HandleLogout)
		api.GET("/me", h.auth.HandleMe)

		api.GET("/suppliers", h.supplier.HandleListSuppliers)
		api.POST("/suppliers", h.supplier.HandleCreateSupplier)
		api.GET("/suppliers-with-items", h.supplier.HandleListSuppliersWithItems)
		api.POST("/suppliers/bulk-delete", h.supplier.HandleBulkDeleteSuppliers)
		api.GET("/suppliers/:supplierID", h.supplier.HandleGetSupplier)
		api.PUT("/suppliers/:supplierID", h.supplier.HandleUpdateSupplier)
		api.DELETE("/suppliers/:supplierID", h.supplier.HandleDeleteSupplier)
		api.GET("/suppliers/:supplierID/items", h.supplier.HandleListItems)
		api.POST("/suppliers/:supplierID/items", h.supplier.HandleCreateItem)
		api.GET("/items/:itemID", h.supplier.HandleGetItem)
		api.PUT("/items/:itemID", h.supplier.HandleUpdateItem)
		api.DELETE("/items/:itemID", h.supplier.HandleDeleteItem)

		api.GET("/products", h.product.HandleListProducts)
		api.POST("/products", h.product.HandleCreateProduct)
		api.POST("/products/bulk", h.product.HandleBulkCreateProducts)
		api.GET("/products/statistics", h.product.HandleProductStatistics)
		api.GET("/products/:productID", h.product.HandleGetProduct)
		api.PUT("/products/:productID", h.product.HandleUpdateProduct)
		api.DELETE("/products/:productID", h.product.HandleDeleteProduct)
		api.GET("/products/:productID/stock-card", h.product.HandleStockCard)

		api.GET("/bills", h.bill.HandleListBills)
		api.POST("/bills", h.bill.HandleCreateBill)
		api.GET("/bills/statistics", h.bill.HandleBillStatistics)
		api.GET("/bills/pending-items", h.bill.HandleBillsWithPendingItems)
		api.GET("/bills/search-products", h.product.HandleSearchProducts)
		api.GET("/bills/products/barcode/:barcode", h.product.HandleProductByBarcode)
		api.GET("/bills/number/:number", h.bill.HandleGetBillByNumber)
		api.GET("/bills/:billID", h.bill.HandleGetBill)
		api.PUT("/bills/:billID/payment", h.bill.HandleUpdatePayment)
		api.POST("/bills/:billID/cancel", h.bill.HandleCancelBill)
		api.POST("/bills/:billID/complete-all", h.bill.HandleCompleteAll)
		api.GET("/bills/:billID/items/pending", h.bill.HandlePendingItems)
		api.POST("/bills/:billID/items/:itemID/complete", h.bill.HandleCompleteItem)
		api.POST("/bills/:billID/items/:itemID/void", h.bill.HandleVoidItem)

		api.GET("/inventory", h.inventory.HandleListRecords)
		api.POST("/inventory", h.inventory.HandleCreateRecord)
		api.GET("/inventory/:recordID", h.inventory.HandleGetRecord)
		api.GET("/ws/inventory", s.Feed.HandleWebSocket)

		api.POST("/upload", h.file.HandleUpload)
		api.POST("/delete-file", h.file.HandleDeleteFile)
	}

	users := s.Router.Group(basePath+"/users", auth.VerifyJWT(), auth.RequireAdmin())
	{
		users.GET("", h.user.HandleListUsers)
		users.POST("", h.user.HandleCreateUser)
		users.GET("/:userID", h.user.HandleGetUser)
		users.PUT("/:userID", h.user.HandleUpdateUser)
		users.DELETE("/:userID", h.user.HandleDeleteUser)
	}

	s.Router.GET("/uploads/:filename", h.file.HandleServeFile)
	s.Router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.Router.NoRoute(func(ctx *gin.Context) {
		response.RenderErr(ctx, response.ErrNotFound("route", "path", ctx.Request.URL.Path))
	})

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Inventory API"
	docs.SwaggerInfo.Description = "Inventory, supplier and billing backend."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
