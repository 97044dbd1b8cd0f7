package schema

import "github.com/prometheus/client_golang/prometheus"

// Counters for applied schema changes. None are registered here; an
// embedding service registers the ones it scrapes.

var IndexesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "docket",
	Subsystem: "schema",
	Name:      "indexes_created",
}, []string{"collection"})

var IndexesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "docket",
	Subsystem: "schema",
	Name:      "indexes_dropped",
}, []string{"collection"})

var CollectionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "docket",
	Subsystem: "schema",
	Name:      "collections_created",
}, []string{"database"})

var CollectionsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "docket",
	Subsystem: "schema",
	Name:      "collections_dropped",
}, []string{"database"})

var ShardAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "docket",
	Subsystem: "schema",
	Name:      "shard_collection_attempts",
}, []string{"collection"})
