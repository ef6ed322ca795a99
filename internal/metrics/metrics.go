// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	GranulesUpserted      = expvar.NewInt("granules_upserted_total")
	UpsertsDiscardedStale = expvar.NewInt("upserts_discarded_stale")
	LinkagesCreated       = expvar.NewInt("linkages_created")
	PANReportsGenerated   = expvar.NewInt("pan_reports_generated")
	IngestMessages        = expvar.NewInt("ingest_messages_total")
	IngestErrors          = expvar.NewInt("ingest_errors")
)
