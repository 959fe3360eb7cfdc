package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gabrielvendedoryamaha-creator/Gest-o-de-Vendas/api"
	"github.com/gabrielvendedoryamaha-creator/Gest-o-de-Vendas/internal/config"
	"github.com/gabrielvendedoryamaha-creator/Gest-o-de-Vendas/internal/sales"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	local, err := sales.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal("init local store", zap.Error(err))
	}

	var store sales.Store = local
	if cfg.Backend == config.BackendSupabase {
		remote := sales.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, local, logger)
		defer remote.Close()
		store = remote
	}
	logger.Info("store ready", zap.String("backend", cfg.Backend))

	session := sales.NewSession(store, logger)

	r := gin.Default()
	api.InitRoutes(r, session, logger)

	if err := r.Run(cfg.Addr); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}
