// Package metrics derives exporters that turn typed values into tagged
// numeric observations.
//
// An Exporter produces a Tree: numbers become Leaf values, strings,
// booleans, enums and dates become Tag properties, records become Named
// collections and lists, tuples and unions become Unnamed ones. Flatten
// walks the tree into Metric values, each carrying the lineage of records
// it was found in together with the properties those records contributed.
//
// Collector publishes the flattened metrics of a value as Prometheus gauges.
package metrics
