package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shop-backend/config"
	"shop-backend/controllers"
	"shop-backend/middleware"
	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/services"
)

func SetupRoutes(router *gin.Engine) {
	userRepo := repositories.NewUserRepository(config.DB)
	productRepo := repositories.NewProductRepository(config.DB)
	cartRepo := repositories.NewCartRepository(config.DB)
	orderRepo := repositories.NewOrderRepository(config.DB)
	cartCache := repositories.NewRedisCartCache(config.RedisClient)

	var mailer services.CheckoutMailer
	if emailService, err := models.NewEmailService(); err == nil {
		mailer = emailService
	} else {
		log.Printf("Email service disabled: %v", err)
	}

	cartService := services.NewCartService(
		cartCache, cartRepo, productRepo, orderRepo,
		userRepo, mailer, config.AppConfig.CartGuestTTL,
	)

	authCtrl := controllers.NewAuthController(userRepo)
	productCtrl := controllers.NewProductController(productRepo, config.RedisClient)
	cartCtrl := controllers.NewCartController(cartService)
	orderCtrl := controllers.NewOrderController(orderRepo)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/register", authCtrl.Register)
	router.POST("/auth/login", authCtrl.Login)

	router.GET("/products", productCtrl.GetAllProducts)
	router.GET("/products/:id", productCtrl.GetProductByID)

	router.POST("/cart/add", cartCtrl.AddItem)
	router.GET("/cart/:userId", cartCtrl.GetCart)
	router.PUT("/cart/update", cartCtrl.UpdateQuantity)
	router.DELETE("/cart/remove/:userId/:productId", cartCtrl.RemoveItem)
	router.POST("/cart/checkout", cartCtrl.Checkout)
	router.POST("/cart/guest", cartCtrl.CreateGuestSession)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/auth/me", authCtrl.GetProfile)
		auth.POST("/orders", orderCtrl.CreateOrder)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/products", productCtrl.CreateProduct)
		admin.PUT("/products/:id", productCtrl.UpdateProduct)
		admin.DELETE("/products/:id", productCtrl.DeleteProduct)
	}
}
