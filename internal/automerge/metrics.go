package automerge

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/squashbot/squashbot/internal/logfields"
)

const metricNamespace = "squashbot_automerger"

const (
	githubEventsMetricName = "processed_github_events_total"
	actionsMetricName      = "pull_request_actions_total"
)

const (
	repositoryLabel = "repository"
	actionLabel     = "action"
	resultLabel     = "result"
)

type actionLabelVal string

const (
	actionLabelMergeVal  actionLabelVal = "merge"
	actionLabelUpdateVal actionLabelVal = "update"
)

type resultLabelVal string

const (
	resultLabelSuccessVal resultLabelVal = "success"
	resultLabelFailureVal resultLabelVal = "failure"
)

type metricCollector struct {
	logger          *zap.Logger
	processedEvents prometheus.Counter
	actions         *prometheus.CounterVec
}

var metrics = newMetricCollector()

func newMetricCollector() *metricCollector {
	return &metricCollector{
		logger: zap.L().Named(loggerName).Named("metrics"),
		processedEvents: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      githubEventsMetricName,
				Help:      "count of processed github webhook events",
			},
		),
		actions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      actionsMetricName,
				Help:      "count of merge and branch update attempts by result",
			},
			[]string{repositoryLabel, actionLabel, resultLabel},
		),
	}
}

func (m *metricCollector) logGetMetricFailed(metricName string, err error) {
	m.logger.Warn(
		"could not record metric",
		zap.String("metric", metricName),
		logfields.Event("recording_metric_failed"),
		zap.Error(err),
	)
}

func (m *metricCollector) ProcessedEventsInc() {
	m.processedEvents.Inc()
}

func (m *metricCollector) ActionInc(owner, repo string, action actionLabelVal, result resultLabelVal) {
	cnt, err := m.actions.GetMetricWith(prometheus.Labels{
		repositoryLabel: fmt.Sprintf("%s/%s", owner, repo),
		actionLabel:     string(action),
		resultLabel:     string(result),
	})
	if err != nil {
		m.logGetMetricFailed(actionsMetricName, err)
		return
	}

	cnt.Inc()
}
