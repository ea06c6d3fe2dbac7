package services

import (
	"context"
	"errors"
	"rxvision_server/database"
	"runtime"
	"time"

	"github.com/MonkyMars/gecho"
)

var uptimeStart time.Time

func init() {
	uptimeStart = time.Now()
}

// ErrNoDatabase is reported by the database check when the service runs on in-memory stores
var ErrNoDatabase = errors.New("no database configured")

type serverHealthStatus struct {
	Uptime       float64   `json:"uptime"`        // in seconds
	CurrentTime  time.Time `json:"current_time"`  // server current time
	ServiceAlive bool      `json:"service_alive"` // always true if service is running
	RamStats     *RamStats `json:"ram_stats"`
}

type RamStats struct {
	TotalMB     uint64 `json:"total_mb"`
	UsedMB      uint64 `json:"used_mb"`
	FreeMB      uint64 `json:"free_mb"`
	UsedPercent uint64 `json:"used_percent"`
}

type databaseHealthStatus struct {
	Connected      bool      `json:"connected"`
	Driver         string    `json:"driver"`
	OpenConns      int       `json:"open_conns"`
	InUse          int       `json:"in_use"`
	LastChecked    time.Time `json:"last_checked"`
	ResponseTimeMs int64     `json:"response_time_ms"`
}

type cacheHealthStatus struct {
	Connected      bool           `json:"connected"`
	Stats          map[string]any `json:"stats"`
	LastChecked    time.Time      `json:"last_checked"`
	ResponseTimeMs int64          `json:"response_time_ms"`
}

type HealthService struct {
	logger       *gecho.Logger
	db           *database.DB
	driver       string
	cacheService *CacheService
}

// NewHealthService accepts a nil db when the stores are in memory
func NewHealthService(logger *gecho.Logger, db *database.DB, driver string, cacheService *CacheService) *HealthService {
	return &HealthService{
		logger:       logger,
		db:           db,
		driver:       driver,
		cacheService: cacheService,
	}
}

func getRamStats() *RamStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	totalMB := m.Sys / 1024 / 1024
	usedMB := m.Alloc / 1024 / 1024
	freeMB := totalMB - usedMB
	usedPercent := uint64(0)
	if totalMB > 0 {
		usedPercent = (usedMB * 100) / totalMB
	}

	return &RamStats{
		TotalMB:     totalMB,
		UsedMB:      usedMB,
		FreeMB:      freeMB,
		UsedPercent: usedPercent,
	}
}

func (hs *HealthService) GetServerHealthStatus() serverHealthStatus {
	return serverHealthStatus{
		Uptime:       time.Since(uptimeStart).Seconds(),
		CurrentTime:  time.Now(),
		ServiceAlive: true,
		RamStats:     getRamStats(),
	}
}

func (hs *HealthService) GetDatabaseHealthStatus(ctx context.Context) (databaseHealthStatus, error) {
	status := databaseHealthStatus{Driver: hs.driver, LastChecked: time.Now()}
	if hs.db == nil {
		return status, ErrNoDatabase
	}

	start := time.Now()
	err := hs.db.Health(ctx)
	status.ResponseTimeMs = time.Since(start).Milliseconds()
	status.Connected = err == nil

	stats := hs.db.GetStats()
	status.OpenConns = stats.OpenConnections
	status.InUse = stats.InUse

	if err != nil {
		hs.logger.Error("Database health check failed", gecho.Field("error", err))
	}
	return status, err
}

func (hs *HealthService) GetCacheHealthStatus(ctx context.Context) (cacheHealthStatus, error) {
	start := time.Now()
	err := hs.cacheService.Ping(ctx)

	status := cacheHealthStatus{
		Connected:      err == nil,
		Stats:          hs.cacheService.GetConnectionStats(),
		LastChecked:    time.Now(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		hs.logger.Error("Cache health check failed", gecho.Field("error", err))
	}
	return status, err
}
