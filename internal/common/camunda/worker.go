// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"volunteer-engine/internal/common/config"
	"volunteer-engine/internal/common/logger"
)

// Manager opens one job worker per enabled task type and closes them together.
type Manager struct {
	client   zbc.Client
	defaults config.CamundaConfig
	logger   logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewManager(client zbc.Client, defaults config.CamundaConfig, log logger.Logger) *Manager {
	return &Manager{
		client:   client,
		defaults: defaults,
		logger:   log,
		workers:  make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless it is disabled or already running. It
// reports whether a worker was opened.
func (m *Manager) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		m.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workers[taskType]; ok {
		m.logger.Warn("worker already started", map[string]interface{}{"taskType": taskType})
		return false
	}

	maxJobs, timeout := m.settings(wcfg)
	m.workers[taskType] = m.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(maxJobs).
		Timeout(timeout).
		Open()

	m.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobs,
		"timeout_ms":    timeout.Milliseconds(),
	})
	return true
}

// settings falls back to the broker-level defaults for unset worker values.
func (m *Manager) settings(wcfg config.WorkerConfig) (int, time.Duration) {
	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = m.defaults.MaxJobsActive
	}
	if maxJobs <= 0 {
		maxJobs = 5
	}
	timeout := wcfg.Timeout
	if timeout <= 0 {
		timeout = m.defaults.Timeout
	}
	if timeout <= 0 {
		timeout = 120000
	}
	return maxJobs, config.GetDuration(timeout)
}

func (m *Manager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.workers))
	for t := range m.workers {
		types = append(types, t)
	}
	return types
}

// Close stops every worker. AwaitClose waits for in-flight handlers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for taskType, w := range m.workers {
		w.Close()
		w.AwaitClose()
		m.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
	m.workers = make(map[string]worker.JobWorker)
}
