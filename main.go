package main

import (
	"fmt"
	"log"

	"backend/configs"
	"backend/middlewares"
	"backend/routes"
	"backend/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()

	// DB
	configs.ConnectionDB(cfg)
	db := configs.DB()

	// migrate
	configs.SetupDatabase()

	if err := configs.SeedStaff(); err != nil {
		log.Fatalf("seed staff failed: %v", err)
	}
	if err := configs.SeedLookups(); err != nil {
		log.Fatalf("seed lookups failed: %v", err)
	}

	// Realtime hub ต้อง start ก่อนเปิดรับ request ไม่งั้น Publish จะ ErrNotRunning
	hub := ws.NewOrderHub()
	go hub.Run()

	// HTTP
	r := gin.Default()

	// ✅ Enable CORS
	r.Use(middlewares.CORSMiddleware())

	// ✅ Register API routes
	routes.RegisterRoutes(r, db, cfg, hub)

	// ✅ Start server
	port := cfg.Port
	addr := fmt.Sprintf(":%s", port)
	log.Println("🚀 Server running at", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
