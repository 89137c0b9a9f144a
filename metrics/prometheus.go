package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Source yields the value to export at collection time.
type Source func() (any, error)

// Collector exposes the flattened metrics of a value as Prometheus gauges.
//
// Each metric becomes a gauge named by its lineage, outermost context first,
// joined with underscores under namespace. Labels are the properties of the
// lineage, inner contexts overriding outer ones. Within one gauge family the
// label names are the union over all its metrics; a metric lacking one gets
// an empty value. Metrics that end up with identical names and labels are
// summed.
//
// The set of families depends on the value, so the collector is unchecked:
// Describe sends nothing.
type Collector struct {
	exporter  Exporter
	source    Source
	errDesc   *prometheus.Desc
	namespace string
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector exporting the value source yields.
func NewCollector(namespace string, exporter Exporter, source Source) *Collector {
	namespace = sanitize(namespace)
	return &Collector{
		exporter:  exporter,
		source:    source,
		namespace: namespace,
		errDesc: prometheus.NewDesc(
			namespace+"_export_error",
			"The exported value could not be produced.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	v, err := c.source()
	if err != nil {
		Logger().Warn("metrics source failed", zap.String("namespace", c.namespace), zap.Error(err))
		ch <- prometheus.NewInvalidMetric(c.errDesc, err)
		return
	}

	for _, fam := range c.families(Flatten(c.namespace, c.exporter.Export(v))) {
		desc := prometheus.NewDesc(fam.name, "Exported from field "+fam.name+".", fam.labels, nil)
		for _, s := range fam.samples {
			m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, s.value, s.labelValues...)
			if err != nil {
				ch <- prometheus.NewInvalidMetric(desc, err)
				continue
			}
			ch <- m
		}
	}
}

type family struct {
	name    string
	labels  []string
	samples []*sample
}

type sample struct {
	labelValues []string
	value       float64
}

type labeled struct {
	labels map[string]string
	value  float64
}

func (c *Collector) families(ms []Metric) []family {
	byName := make(map[string][]labeled)
	var names []string
	for _, m := range ms {
		name := metricName(m)
		if _, seen := byName[name]; !seen {
			names = append(names, name)
		}
		byName[name] = append(byName[name], labeled{labels: metricLabels(m), value: m.Value})
	}
	sort.Strings(names)

	out := make([]family, 0, len(names))
	for _, name := range names {
		members := byName[name]

		set := make(map[string]bool)
		for _, l := range members {
			for k := range l.labels {
				set[k] = true
			}
		}
		labels := make([]string, 0, len(set))
		for k := range set {
			labels = append(labels, k)
		}
		sort.Strings(labels)

		fam := family{name: name, labels: labels}
		index := make(map[string]*sample)
		for _, l := range members {
			values := make([]string, len(labels))
			for i, k := range labels {
				values[i] = l.labels[k]
			}
			key := strings.Join(values, "\xff")
			if s, ok := index[key]; ok {
				s.value += l.value
				continue
			}
			s := &sample{labelValues: values, value: l.value}
			index[key] = s
			fam.samples = append(fam.samples, s)
		}
		out = append(out, fam)
	}
	return out
}

func metricName(m Metric) string {
	parts := make([]string, 0, len(m.Lineage)+1)
	for i := len(m.Lineage) - 1; i >= 0; i-- {
		parts = append(parts, m.Lineage[i].Name)
	}
	parts = append(parts, m.Name)
	return sanitize(strings.Join(parts, "_"))
}

func metricLabels(m Metric) map[string]string {
	out := make(map[string]string)
	for i := len(m.Lineage) - 1; i >= 0; i-- {
		for k, v := range m.Lineage[i].Properties {
			out[sanitize(k)] = v
		}
	}
	return out
}

// sanitize maps a field path onto the Prometheus name alphabet.
func sanitize(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	for strings.HasPrefix(out, "__") {
		out = out[1:]
	}
	return out
}
