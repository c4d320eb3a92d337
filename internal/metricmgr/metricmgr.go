package metricmgr

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

type MetricMgr interface {
	// Increment metric
	IncrementMetric(metric Metric, value int32) error
	// Decrement metric
	DecrementMetric(metric Metric, value int32) error
	// Retreive Metric
	GetMetric(metric Metric) (int32, bool)
	// one line summary of the non-zero metrics
	Summary() string
	// set metric
	setMetric(metric Metric, ptr *int32) error
}

type _MetricMgr struct {
	metrics map[Metric]*int32
}

// Init returns a metric mgr with every known metric registered at 0.  Metrics are
// registered once, so the map is read-only afterwards and safe to share.
func Init() MetricMgr {
	metricMgr := NewMetricMgr()
	for _, metric := range allMetrics {
		value := int32(0)
		metricMgr.setMetric(metric, &value)
	}
	return metricMgr
}

func NewMetricMgr() MetricMgr {
	return &_MetricMgr{
		metrics: make(map[Metric]*int32),
	}
}

func (m *_MetricMgr) IncrementMetric(metric Metric, value int32) error {
	ptr, ok := m.metrics[metric]
	if !ok {
		return errors.New("metric " + string(metric) + " not found")
	}
	atomic.AddInt32(ptr, value)
	return nil
}

func (m *_MetricMgr) DecrementMetric(metric Metric, value int32) error {
	ptr, ok := m.metrics[metric]
	if !ok {
		return errors.New("metric " + string(metric) + " not found")
	}
	atomic.AddInt32(ptr, -value)
	return nil
}

func (m *_MetricMgr) GetMetric(metric Metric) (int32, bool) {
	ptr, ok := m.metrics[metric]
	if !ok {
		return int32(0), false
	}
	return atomic.LoadInt32(ptr), true
}

func (m *_MetricMgr) Summary() string {
	var parts []string
	for _, metric := range allMetrics {
		if value, ok := m.GetMetric(metric); ok && value != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", metric, value))
		}
	}
	if len(parts) == 0 {
		return "no activity"
	}
	return strings.Join(parts, " ")
}

func (m *_MetricMgr) setMetric(metric Metric, ptr *int32) error {
	if _, ok := m.metrics[metric]; ok {
		return errors.New("metric " + string(metric) + " already exists")
	}
	m.metrics[metric] = ptr
	return nil
}
