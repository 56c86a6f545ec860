package handlers

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// StartupStatus tracks initialization progress and readiness
type StartupStatus struct {
	mu      sync.RWMutex
	ready   bool
	current string
	steps   []StartupStep
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StartupReport is the /ready response body
type StartupReport struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// NewStartupStatus creates a tracker for the named steps, none completed
func NewStartupStatus(steps ...string) *StartupStatus {
	s := &StartupStatus{current: "Initializing..."}
	for _, name := range steps {
		s.steps = append(s.steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// CompleteStep marks a step as completed
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.steps {
		if s.steps[i].Name == stepName {
			s.steps[i].Completed = true
			break
		}
	}
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
}

// MarkDraining takes the server out of rotation during shutdown
func (s *StartupStatus) MarkDraining() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	s.current = "Shutting down"
}

func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Report returns a copy of the current status
func (s *StartupStatus) Report() StartupReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := StartupReport{
		Ready:   s.ready,
		Current: s.current,
		Steps:   append([]StartupStep(nil), s.steps...),
	}
	completed := 0
	for _, step := range s.steps {
		if step.Completed {
			completed++
		}
	}
	switch {
	case s.ready:
		report.Progress = 100
	case len(s.steps) > 0:
		report.Progress = completed * 100 / len(s.steps)
	}
	return report
}

// ShowStartupStatus answers 200 once ready and 503 before that or while draining
func (s *StartupStatus) ShowStartupStatus(c echo.Context) error {
	report := s.Report()
	status := http.StatusOK
	if !report.Ready {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, report)
}
