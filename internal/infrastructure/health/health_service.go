package health

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"time"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// HealthService checks whether the host has what a tuning run needs
type HealthService struct {
	clock      interfaces.Clock
	osDetector interfaces.OSDetector
	logger     *logrus.Logger
	lookPath   func(file string) (string, error)
	isRoot     func() bool
	backups    interfaces.BackupService
}

// HealthStatus represents health check status
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// ToolStatus is the lookup result for one external tool
type ToolStatus struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Found    bool   `json:"found"`
	Required bool   `json:"required"`
}

// HealthResponse is the health check response struct
type HealthResponse struct {
	Status     HealthStatus `json:"status"`
	Timestamp  string       `json:"timestamp"`
	OS         string       `json:"os,omitempty"`
	Root       bool         `json:"root"`
	Tools      []ToolStatus `json:"tools"`
	LastBackup string       `json:"last_backup,omitempty"` // 수동 복구의 출발점
	Problems   []string     `json:"problems,omitempty"`
}

// sysctl and ip are needed for every run; ethtool and tc only for NIC and pacing directives
var checkedTools = []struct {
	name     string
	required bool
}{
	{constants.SysctlTool, true},
	{constants.IPTool, true},
	{constants.EthtoolTool, false},
	{constants.TCTool, false},
}

// NewHealthService creates a new HealthService
func NewHealthService(clock interfaces.Clock, osDetector interfaces.OSDetector, logger *logrus.Logger) *HealthService {
	return &HealthService{
		clock:      clock,
		osDetector: osDetector,
		logger:     logger,
		lookPath:   exec.LookPath,
		isRoot:     func() bool { return os.Geteuid() == 0 },
	}
}

// WithLookPath replaces the tool lookup function
func (h *HealthService) WithLookPath(lookPath func(file string) (string, error)) *HealthService {
	h.lookPath = lookPath
	return h
}

// WithRootCheck replaces the privilege check
func (h *HealthService) WithRootCheck(isRoot func() bool) *HealthService {
	h.isRoot = isRoot
	return h
}

// WithBackups enables reporting of the latest sysctl file backup
func (h *HealthService) WithBackups(backups interfaces.BackupService) *HealthService {
	h.backups = backups
	return h
}

// Check inspects the host and builds the health check response
func (h *HealthService) Check(ctx context.Context) HealthResponse {
	response := HealthResponse{
		Timestamp: h.clock.Now().Format(time.RFC3339),
		Root:      h.isRoot(),
		Tools:     make([]ToolStatus, 0, len(checkedTools)),
	}

	if osInfo, err := h.osDetector.DetectOS(); err != nil {
		response.Problems = append(response.Problems, "os detection failed: "+err.Error())
	} else {
		response.OS = osInfo.String()
	}

	for _, tool := range checkedTools {
		status := ToolStatus{Name: tool.name, Required: tool.required}
		if path, err := h.lookPath(tool.name); err == nil {
			status.Path = path
			status.Found = true
		} else {
			response.Problems = append(response.Problems, tool.name+" not found in PATH")
		}
		response.Tools = append(response.Tools, status)
	}

	if h.backups != nil && h.backups.HasBackup(ctx, constants.SysctlBackupName) {
		if path, err := h.backups.LatestBackup(ctx, constants.SysctlBackupName); err == nil {
			response.LastBackup = path
		}
	}

	response.Status = h.determineOverallStatus(response)

	h.logger.WithFields(logrus.Fields{
		"status":   response.Status,
		"os":       response.OS,
		"root":     response.Root,
		"problems": len(response.Problems),
	}).Debug("Health check completed")

	return response
}

// determineOverallStatus determines the overall health status
func (h *HealthService) determineOverallStatus(response HealthResponse) HealthStatus {
	// A missing required tool makes every run fail
	for _, tool := range response.Tools {
		if tool.Required && !tool.Found {
			return StatusUnhealthy
		}
	}

	if len(response.Problems) > 0 {
		return StatusDegraded
	}

	return StatusHealthy
}

// WriteJSON writes the response as indented JSON
func WriteJSON(w io.Writer, response HealthResponse) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
