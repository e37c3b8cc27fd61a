package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"portfolio/internal/database"
)

// HealthResult is the health check payload
type HealthResult struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// HealthService implements the health service
type HealthService struct {
	db      *gorm.DB
	service string
}

// NewHealthService creates a new health service
func NewHealthService(db *gorm.DB, service string) *HealthService {
	return &HealthService{db: db, service: service}
}

// Check implements the health check method
func (s *HealthService) Check(ctx context.Context) *HealthResult {
	result := &HealthResult{
		Status:    "ok",
		Service:   s.service,
		Database:  "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := database.HealthCheck(s.db.WithContext(ctx)); err != nil {
		result.Status = "degraded"
		result.Database = "unavailable"
	}
	return result
}
