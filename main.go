package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"rocket-food-delivery/config"
	"rocket-food-delivery/middleware"
	"rocket-food-delivery/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("rocket-api", pflag.ContinueOnError)
	flags.String("port", "", "port to listen on (default 8080, env PORT)")
	flags.String("database", "", "sqlite database path")
	flags.Bool("require-token", false, "reject requests without a session token")
	flags.String("log-level", "", "debug, info, warn or error")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	// Set Gin mode
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	if err := config.InitDB(cfg.Database); err != nil {
		return err
	}

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()
	r.Use(middleware.RequestID(logger))

	// CORS middleware for the app running on a device or simulator
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Rocket Food Delivery API",
			"version": "1.0.0",
		})
	})

	routes.SetupRoutes(r)

	logger.Info("server running", "addr", "http://localhost:"+cfg.Port, "require_token", cfg.RequireToken)
	return r.Run(":" + cfg.Port)
}
