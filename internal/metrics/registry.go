package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// RegisterMetrics registers metrics for the specified services
func RegisterMetrics(services []string, logger *logrus.Logger) {
	// Always register Go and process metrics
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	for _, service := range services {
		switch service {
		case "http":
			registerHTTPMetrics(logger)
		case "engine":
			registerEngineMetrics(logger)
		case "tracker":
			registerTrackerMetrics(logger)
		default:
			logger.Warnf("Unknown service type for metrics registration: %s", service)
		}
	}
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(collector prometheus.Collector, name string, logger *logrus.Logger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			logger.Debugf("%s already registered", name)
		} else {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}

func registerHTTPMetrics(logger *logrus.Logger) {
	registerIfNotExists(httpRequestsTotal, "http_requests_total", logger)
	registerIfNotExists(httpRequestDuration, "http_request_duration", logger)
	registerIfNotExists(httpErrorsTotal, "http_errors_total", logger)
}

func registerEngineMetrics(logger *logrus.Logger) {
	registerIfNotExists(engineExecutionsTotal, "engine_executions_total", logger)
	registerIfNotExists(engineExecutionDuration, "engine_execution_duration", logger)
	registerIfNotExists(engineValidationFailuresTotal, "engine_validation_failures_total", logger)
	registerIfNotExists(coinSelectionInputs, "coin_selection_inputs", logger)
	registerIfNotExists(coinSelectionFeeSats, "coin_selection_fee_sats", logger)
}

func registerTrackerMetrics(logger *logrus.Logger) {
	registerIfNotExists(trackerConfirmationsTotal, "tracker_confirmations_total", logger)
	registerIfNotExists(trackerConfirmationDuration, "tracker_confirmation_duration", logger)
}
