package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A constant metric with labels for version and runtime environment.",
	},
	[]string{"version", "environment"},
)

func SetBuildInfo(version, environment string) {
	buildInfo.WithLabelValues(version, norm(environment)).Set(1)
}
