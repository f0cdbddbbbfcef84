package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oscardel13/calorie-tracker/controllers"
	"github.com/oscardel13/calorie-tracker/middlewares"
	"github.com/oscardel13/calorie-tracker/repository"
	"github.com/oscardel13/calorie-tracker/services"
)

// Deps is what the router needs to build its controllers.
type Deps struct {
	Store    repository.Store
	Hub      *services.RealtimeHub
	Uploader services.Uploader
	Auth     *services.AuthService
	Secret   []byte
	Log      *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(log), gin.Recovery())

	authCtl := controllers.NewAuthController(d.Auth)
	weekCtl := controllers.NewWeekController(services.NewTrackerService(d.Store, d.Hub, log))
	foodCtl := controllers.NewFoodController(services.NewFoodService(d.Store, d.Hub, log))
	backupCtl := controllers.NewBackupController(services.NewBackupService(d.Store, d.Uploader, d.Hub, log))
	rtCtl := controllers.NewRealtimeController(d.Hub)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authCtl.Signup)
		auth.POST("/login", authCtl.Login)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware(d.Secret))

	weeks := api.Group("/weeks")
	{
		weeks.GET("", weekCtl.ListWeeks)
		weeks.POST("", weekCtl.CreateWeek)
		weeks.GET("/repeat", weekCtl.RepeatWeek)
		weeks.GET("/latest", weekCtl.LatestWeek)
		weeks.PUT("/latest", weekCtl.EditLatestWeek)
		weeks.POST("/latest/allowance", weekCtl.PreviewAllowance)

		day := weeks.Group("/latest/days/:date")
		day.POST("/items", weekCtl.AddItem)
		day.PUT("/items", weekCtl.ReplaceItems)
		day.DELETE("/items/:index", weekCtl.RemoveItem)
		day.POST("/plan", weekCtl.PlanDay)
	}

	foods := api.Group("/foods")
	{
		foods.GET("", foodCtl.ListFoods)
		foods.POST("", foodCtl.AddFood)
		foods.PUT("/:id", foodCtl.UpdateFood)
		foods.DELETE("/:id", foodCtl.RemoveFood)
	}

	backup := api.Group("/backup")
	{
		backup.GET("/export", backupCtl.Export)
		backup.POST("/import", backupCtl.Import)
		backup.POST("/s3", backupCtl.UploadToS3)
	}

	api.GET("/ws", rtCtl.UpdatesWS)

	return r
}
