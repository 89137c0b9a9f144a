package typeshape

import (
	"github.com/wippyai/typeshape/codec"
	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/metrics"
	"github.com/wippyai/typeshape/schema"
)

// Artifacts are the decoder, encoder and exporter derived for one type.
type Artifacts struct {
	Type     schema.Type
	Codec    *codec.Codec
	Exporter metrics.Exporter
}

// Deriver derives every artifact family from one set of engines, so each
// family memoizes across all types derived through it.
type Deriver struct {
	codecs    *codec.Engine
	exporters *derive.Engine[metrics.Exporter]
}

// New creates a deriver. opts configures decoding and encoding; exporters
// take no options.
func New(opts codec.Options) *Deriver {
	return &Deriver{
		codecs:    codec.NewEngine(opts),
		exporters: metrics.NewEngine(),
	}
}

// Derive derives all artifacts for t.
func (d *Deriver) Derive(t schema.Type) (*Artifacts, error) {
	c, err := d.codecs.Codec(t)
	if err != nil {
		return nil, err
	}
	exp, err := d.exporters.Derive(t)
	if err != nil {
		return nil, err
	}
	return &Artifacts{Type: t, Codec: c, Exporter: exp}, nil
}
