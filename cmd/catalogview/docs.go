package main

// @title Catalog View Service API
// @version 1.0
// @description This is the Catalog View Service API with full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/stoktakip/catalog-view

// @license.name MIT
// @license.url https://github.com/stoktakip/catalog-view/blob/main/LICENSE

// @host localhost:8086
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Catalog
// @tag.description Catalog view endpoints

// @tag.name Export
// @tag.description Export endpoints

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
