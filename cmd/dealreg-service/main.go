package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/channelone/dealreg-conflict-service/internal/app/setup"
	httpdelivery "github.com/channelone/dealreg-conflict-service/internal/delivery/http"
	"github.com/channelone/dealreg-conflict-service/internal/delivery/http/handlers"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	deps, err := setup.InitializeDependencies()
	if err != nil {
		log.Fatalf("failed to initialize dependencies: %v", err)
	}
	defer deps.ConflictPublisher.Close()

	useCases := setup.InitializeUseCases(deps)

	dealHandler := handlers.NewDealHandler(useCases.DealUsecase, useCases.ResolutionUsecase)
	conflictHandler := handlers.NewConflictHandler(useCases.ResolutionUsecase)
	router := httpdelivery.NewRouter(dealHandler, conflictHandler)

	addr := fmt.Sprintf("%s:%s", deps.Config.HTTPServer.Host, deps.Config.HTTPServer.Port)
	log.Printf("dealreg conflict service started on %s\n", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
