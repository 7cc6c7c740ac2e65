package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/stockbook/inventory-api/cmd/app"
)

// @title           Inventory API
// @version         1.0
// @description     Inventory, supplier and billing backend.
//
// @contact.name   API Support
// @contact.email  support@stockbook.example
//
// @BasePath  /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
