package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/filekit/component"
)

// RouteInfo is an HTTP route shown in the summary.
type RouteInfo struct {
	Method string
	Path   string
}

// Summary prints what a process started with.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
	out             io.Writer
}

// NewSummary creates a summary that prints to stderr.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stderr}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path})
}

// Display prints components with their live health, then routes.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	descs := registry.Descriptions()
	health := registry.HealthAll(ctx)
	if len(descs) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	} else {
		fmt.Fprintf(w, "\nComponents\n")
		for i, d := range descs {
			h := health[i]
			line := fmt.Sprintf("%s %s", healthStatusIcon(h.Status), d.Name)
			if d.Type != "" {
				line += " [" + d.Type + "]"
			}
			if d.Details != "" {
				line += ": " + d.Details
			}
			if d.Port > 0 {
				line += fmt.Sprintf(" (:%d)", d.Port)
			}
			if h.Message != "" {
				line += " - " + h.Message
			}
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(descs)), line)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
