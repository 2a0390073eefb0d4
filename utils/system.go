package utils

import (
	"strconv"

	"MetroScraper/internal/logger"

	"github.com/shirou/gopsutil/v3/cpu"
)

const (
	fallbackWorkers = 2
	maxWorkers      = 16
)

// GetOptimalWorkerCount determines the number of detail-page workers from config and system resources.
// A positive integer is used as is; "auto" (or anything invalid) uses half of the logical cores, capped to 1..16.
func GetOptimalWorkerCount(configValue string, log logger.Logger) int {
	if manualWorkers, err := strconv.Atoi(configValue); err == nil && manualWorkers > 0 {
		log.Infof("Using manually configured number of workers: %d", manualWorkers)
		return manualWorkers
	}

	if configValue != "auto" {
		log.Warnf("Invalid workers value '%s'. Defaulting to 'auto' mode.", configValue)
	}

	// Logical cores: detail pages are mostly waiting on the network.
	cpuCores, err := cpu.Counts(true)
	if err != nil {
		log.Warnf("Could not detect CPU cores. Falling back to default: %d workers.", fallbackWorkers)
		return fallbackWorkers
	}

	optimalCount := clampWorkers(cpuCores / 2)
	log.Infof("System has %d logical cores. Automatically setting number of workers to: %d", cpuCores, optimalCount)
	return optimalCount
}

func clampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}
