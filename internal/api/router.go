package api

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parking_management/internal/api/handler"
	"parking_management/internal/api/middleware"
	"parking_management/internal/domain"
	"parking_management/internal/service"
)

type Services struct {
	Auth        *service.AuthService
	User        *service.UserService
	Vehicle     *service.VehicleService
	Tariff      *service.TariffService
	ParkingLot  *service.ParkingLotService
	Spot        *service.SpotService
	Reservation *service.ReservationService
	Session     *service.ParkingSessionService
}

func SetupRouter(svc Services, wsManager *handler.WebSocketManager, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.RequestID())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	authMw := middleware.NewAuthMiddleware(svc.Auth)

	// Live spot-status feed; read-only, no auth required.
	wsHandler := handler.NewWebSocketHandler(wsManager, logger)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(svc.Auth)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	staff := []string{domain.RoleAdmin, domain.RoleOperator}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		userH := handler.NewUserHandler(svc.User)
		vehicleH := handler.NewVehicleHandler(svc.Vehicle)
		userRoutes := v1.Group("/users")
		{
			userRoutes.POST("", authMw.AuthorizeRole(domain.RoleAdmin), userH.Create)
			userRoutes.GET("", authMw.AuthorizeRole(staff...), userH.GetAll)
			userRoutes.GET("/me", userH.GetSelf)
			userRoutes.GET("/:id", userH.GetByID)
			userRoutes.PUT("/:id", userH.Update)
			userRoutes.PUT("/:id/status", authMw.AuthorizeRole(domain.RoleAdmin), userH.ChangeStatus)
			userRoutes.PUT("/:id/role", authMw.AuthorizeRole(domain.RoleAdmin), authHandler.ChangeRole)
			userRoutes.DELETE("/:id", authMw.AuthorizeRole(domain.RoleAdmin), userH.Delete)
			userRoutes.GET("/:id/vehicles", vehicleH.GetByUserID)
		}

		reservationH := handler.NewReservationHandler(svc.Reservation)
		sessionH := handler.NewParkingSessionHandler(svc.Session)
		vehicleRoutes := v1.Group("/vehicles")
		{
			vehicleRoutes.POST("", vehicleH.Create)
			vehicleRoutes.GET("", authMw.AuthorizeRole(staff...), vehicleH.GetAll)
			vehicleRoutes.GET("/:id", vehicleH.GetByID)
			vehicleRoutes.PUT("/:id", vehicleH.Update)
			vehicleRoutes.DELETE("/:id", vehicleH.Delete)
			vehicleRoutes.GET("/:id/reservations", reservationH.GetByVehicleID)
			vehicleRoutes.GET("/:id/parking-sessions", sessionH.GetByVehicleID)
		}

		tariffH := handler.NewTariffHandler(svc.Tariff)
		tariffRoutes := v1.Group("/tariffs")
		{
			tariffRoutes.POST("", authMw.AuthorizeRole(domain.RoleAdmin), tariffH.Create)
			tariffRoutes.GET("", tariffH.GetAll)
			tariffRoutes.GET("/:id", tariffH.GetByID)
			tariffRoutes.PUT("/:id", authMw.AuthorizeRole(domain.RoleAdmin), tariffH.Update)
			tariffRoutes.PUT("/:id/status", authMw.AuthorizeRole(domain.RoleAdmin), tariffH.ChangeStatus)
			tariffRoutes.DELETE("/:id", authMw.AuthorizeRole(domain.RoleAdmin), tariffH.Delete)
		}

		lotH := handler.NewParkingLotHandler(svc.ParkingLot)
		spotH := handler.NewSpotHandler(svc.Spot)
		lotRoutes := v1.Group("/parking-lots")
		{
			lotRoutes.POST("", authMw.AuthorizeRole(domain.RoleAdmin), lotH.Create)
			lotRoutes.GET("", lotH.GetAll)
			lotRoutes.GET("/:id", lotH.GetByID)
			lotRoutes.PUT("/:id", authMw.AuthorizeRole(domain.RoleAdmin), lotH.Update)
			lotRoutes.PUT("/:id/status", authMw.AuthorizeRole(staff...), lotH.ChangeStatus)
			lotRoutes.DELETE("/:id", authMw.AuthorizeRole(domain.RoleAdmin), lotH.Delete)
			lotRoutes.GET("/:id/spots", spotH.GetByParkingLotID)
		}

		spotRoutes := v1.Group("/spots")
		{
			spotRoutes.POST("", authMw.AuthorizeRole(staff...), spotH.Create)
			spotRoutes.GET("", spotH.GetAll)
			spotRoutes.GET("/:id", spotH.GetByID)
			spotRoutes.PUT("/:id", authMw.AuthorizeRole(staff...), spotH.Update)
			spotRoutes.PUT("/:id/status", authMw.AuthorizeRole(staff...), spotH.ChangeStatus)
			spotRoutes.DELETE("/:id", authMw.AuthorizeRole(domain.RoleAdmin), spotH.Delete)
			spotRoutes.GET("/:id/reservations", authMw.AuthorizeRole(staff...), reservationH.GetBySpotID)
			spotRoutes.GET("/:id/parking-sessions", authMw.AuthorizeRole(staff...), sessionH.GetBySpotID)
		}

		reservationRoutes := v1.Group("/reservations")
		{
			reservationRoutes.POST("", reservationH.Create)
			reservationRoutes.GET("", authMw.AuthorizeRole(staff...), reservationH.GetAll)
			reservationRoutes.GET("/:id", reservationH.GetByID)
			reservationRoutes.PUT("/:id", reservationH.Update)
			reservationRoutes.POST("/:id/cancel", reservationH.Cancel)
			reservationRoutes.PUT("/:id/status", authMw.AuthorizeRole(domain.RoleAdmin), reservationH.ChangeStatus)
			reservationRoutes.DELETE("/:id", reservationH.Delete)
		}

		sessionRoutes := v1.Group("/parking-sessions")
		{
			sessionRoutes.POST("", sessionH.Create)
			sessionRoutes.GET("", authMw.AuthorizeRole(staff...), sessionH.GetAll)
			sessionRoutes.GET("/:id", sessionH.GetByID)
			sessionRoutes.POST("/:id/finish", sessionH.Finish)
			sessionRoutes.DELETE("/:id", sessionH.Delete)
		}
	}
	return r
}
