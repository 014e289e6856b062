package container

import (
	"database/sql"

	"github.com/clodobox/EventGear/internal/allocations"
	"github.com/clodobox/EventGear/internal/config"
	"github.com/clodobox/EventGear/internal/equipment"
	"github.com/clodobox/EventGear/internal/projects"
	"github.com/clodobox/EventGear/internal/repository"

	"github.com/redis/go-redis/v9"
)

type Container struct {
	Repository        *repository.Repository
	EquipmentHandler  *equipment.Handler
	ProjectHandler    *projects.Handler
	AllocationHandler *allocations.Handler
}

// NewAppContainer wires repositories, services and handlers. The redis
// client is optional; without it availability reads always recompute.
func NewAppContainer(db *sql.DB, rdb *redis.Client, cfg *config.Config) *Container {
	repo := repository.NewRepository(db)

	ledgerRepo := allocations.NewLedgerRepository(repo, cfg.LockTimeout.Milliseconds())
	equipmentRepo := equipment.NewRepository(repo)
	projectRepo := projects.NewRepository(repo)

	var cache *allocations.AvailabilityCache
	if rdb != nil {
		cache = allocations.NewAvailabilityCache(rdb, cfg.CacheTTL)
	}

	allocationService := allocations.NewService(repo, ledgerRepo, equipmentRepo, projectRepo, cache)

	var invalidator equipment.AvailabilityInvalidator
	if cache != nil {
		invalidator = cache
	}
	equipmentService := equipment.NewService(repo, equipmentRepo, ledgerRepo, invalidator)
	projectService := projects.NewService(projectRepo)

	return &Container{
		Repository:        repo,
		EquipmentHandler:  equipment.NewHandler(equipmentService),
		ProjectHandler:    projects.NewHandler(projectService, allocationService),
		AllocationHandler: allocations.NewHandler(allocationService),
	}
}
