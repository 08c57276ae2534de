// Package validation checks optional integrations at startup. A service named
// in MURMUR_REQUIRE_<SERVICE> must be configured and reachable or the server
// refuses to start; the rest are checked and only warned about.
package validation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/zfogg/murmur/internal/logger"
	"go.uber.org/zap"
)

// Known optional services
const (
	ServiceRedis         = "redis"
	ServiceS3            = "s3"
	ServiceSES           = "ses"
	ServiceElasticsearch = "elasticsearch"
)

var knownServices = []string{ServiceRedis, ServiceS3, ServiceSES, ServiceElasticsearch}

const checkTimeout = 10 * time.Second

// Check probes one service
type Check func(ctx context.Context) error

// ServiceValidator handles validation of optional services
type ServiceValidator struct {
	required map[string]bool
	checks   map[string]Check
}

// NewServiceValidator creates a validator that fails on the given services
func NewServiceValidator(required []string) *ServiceValidator {
	sv := &ServiceValidator{
		required: make(map[string]bool, len(required)),
		checks:   make(map[string]Check),
	}
	for _, name := range required {
		sv.required[name] = true
	}
	return sv
}

// Register adds the probe for a configured service
func (sv *ServiceValidator) Register(name string, check Check) {
	sv.checks[name] = check
}

// ValidateServices runs every registered check. It returns an error when a
// required service is unconfigured or its check fails.
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	for name := range sv.required {
		if _, ok := sv.checks[name]; !ok {
			return fmt.Errorf("required service %q is not configured", name)
		}
	}

	names := make([]string, 0, len(sv.checks))
	for name := range sv.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		timeoutCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := sv.checks[name](timeoutCtx)
		cancel()

		if err == nil {
			logger.Log.Info("Service validated", zap.String("service", name))
			continue
		}
		if sv.required[name] {
			return fmt.Errorf("required service %q validation failed: %w", name, err)
		}
		logger.WarnWithFields("Optional service unavailable", err, zap.String("service", name))
	}

	return nil
}

// RequiredFromEnv reads the MURMUR_REQUIRE_* variables
func RequiredFromEnv() []string {
	var required []string
	for _, service := range knownServices {
		if isTruthy(os.Getenv("MURMUR_REQUIRE_" + strings.ToUpper(service))) {
			required = append(required, service)
		}
	}
	return required
}

// isTruthy checks if a string value represents a truthy value
func isTruthy(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
