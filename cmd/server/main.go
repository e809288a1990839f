// cmd/server/main.go
package main

import (
	"log"

	"github.com/clinicflow/roteiros/internal/app"
	"github.com/clinicflow/roteiros/internal/di"
	"github.com/clinicflow/roteiros/internal/utils"

	_ "github.com/clinicflow/roteiros/internal/llm/providers/openai"
)

func main() {
	log.Println("starting roteiros server...")

	if err := app.Initialize(); err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	logger := utils.GetLogger()
	cfg := app.GetApp().GetConfig()
	logger.Info("server ready", map[string]interface{}{
		"port":     cfg.Port,
		"data_dir": cfg.DataDir,
		"provider": cfg.LLMProvider,
		"services": di.GetContainer().GetNames(),
	})

	if err := app.Run(); err != nil {
		logger.Fatal("server stopped with error", map[string]interface{}{"error": err})
	}
	logger.Info("server stopped", nil)
}
