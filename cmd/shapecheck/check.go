package main

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/wippyai/typeshape/codec"
	"github.com/wippyai/typeshape/decode"
	"github.com/wippyai/typeshape/metrics"
	"github.com/wippyai/typeshape/schema"
	"github.com/wippyai/typeshape/wire"
	"github.com/wippyai/typeshape/witschema"
)

// checker holds everything derived once per run.
type checker struct {
	typ       schema.Type
	codec     *codec.Codec
	exporter  metrics.Exporter
	emit      wire.Format
	namespace string
}

type report struct {
	failure *decode.Failure
	value   any
	format  wire.Format
	emitted []byte
	metrics string
}

func loadRegistry(cfg *config) (*schema.Registry, error) {
	if cfg.witPath != "" {
		return witschema.LoadFile(cfg.witPath)
	}
	doc, err := os.ReadFile(cfg.schemaPath)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return schema.LoadYAML(doc)
}

func newChecker(cfg *config) (*checker, error) {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	typ, err := reg.Resolve(cfg.typeExpr)
	if err != nil {
		return nil, err
	}

	format, err := inputFormat(cfg)
	if err != nil {
		return nil, err
	}
	d, err := dialect(cfg.dialect)
	if err != nil {
		return nil, err
	}
	c, err := codec.NewEngine(codec.Options{
		Dialect:    d,
		Format:     format,
		Root:       cfg.root,
		EnableAny:  cfg.enableAny,
		TagField:   cfg.tagField,
		ValueField: cfg.valueField,
	}).Codec(typ)
	if err != nil {
		return nil, err
	}

	chk := &checker{typ: typ, codec: c, namespace: cfg.namespace}
	if cfg.emit != "" {
		if chk.emit, err = wire.ParseFormat(cfg.emit); err != nil {
			return nil, err
		}
	}
	if cfg.metrics {
		if chk.exporter, err = metrics.NewEngine().Derive(typ); err != nil {
			return nil, err
		}
	}
	return chk, nil
}

func (c *checker) label(input string) string {
	if input == "" || input == "-" {
		input = "stdin"
	}
	return fmt.Sprintf("%s as %s", input, c.typ)
}

// check decodes data. A document that does not match the type is reported
// through report.failure; only unreadable input and encode problems are
// returned as errors.
func (c *checker) check(data []byte) (*report, error) {
	v, err := c.codec.Unmarshal(data)
	var failure *decode.Failure
	if stderrors.As(err, &failure) {
		return &report{failure: failure}, nil
	}
	if err != nil {
		return nil, err
	}

	rep := &report{value: v, format: c.emit}
	if c.emit != "" {
		tree, err := c.codec.Encode(v)
		if err != nil {
			return nil, err
		}
		if rep.emitted, err = wire.Marshal(c.emit, tree); err != nil {
			return nil, err
		}
	}
	if c.exporter != nil {
		if rep.metrics, err = c.gather(v); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// gather renders v's metrics in the Prometheus text format.
func (c *checker) gather(v any) (string, error) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(c.namespace, c.exporter, func() (any, error) { return v, nil })
	if err := reg.Register(collector); err != nil {
		return "", err
	}
	families, err := reg.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}
	var b bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
