package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField(
		"module", "prometheus",
	)
	MetricLoopInterval = 15 * time.Second
)

// PrometheusMetrics is the central exporter of the tool: it exposes the
// /metrics endpoint and refreshes every registered module periodically.
type PrometheusMetrics struct {
	ctx            context.Context
	ip             string
	port           int
	metricsModules []*MetricsModule
}

func NewPrometheusMetrics(ctx context.Context, ip string, port int) *PrometheusMetrics {
	return &PrometheusMetrics{
		ctx:            ctx,
		ip:             ip,
		port:           port,
		metricsModules: make([]*MetricsModule, 0),
	}
}

func (p *PrometheusMetrics) AddMeticsModule(module *MetricsModule) {
	if module == nil {
		return
	}
	p.metricsModules = append(p.metricsModules, module)
}

func (p *PrometheusMetrics) Start() {
	log.Infof("initializing prometheus export at %s:%d", p.ip, p.port)

	for _, module := range p.metricsModules {
		if err := module.Init(); err != nil {
			log.Errorf("unable to init metrics module %s - %s", module.Name(), err.Error())
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", p.ip, p.port),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("prometheus server error - %s", err.Error())
		}
	}()

	go func() {
		ticker := time.NewTicker(MetricLoopInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, module := range p.metricsModules {
					summary := module.UpdateSummary()
					log.Tracef("%s metrics: %v", module.Name(), summary)
				}
			case <-p.ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
				return
			}
		}
	}()
}
