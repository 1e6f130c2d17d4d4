package metrics

import "expvar"

var (
	EventsReceived     = expvar.NewInt("events_received")
	OrderStatusReports = expvar.NewInt("reports_order_status")
	FillReports        = expvar.NewInt("reports_fill")
	ParseErrors        = expvar.NewInt("parse_errors")
	WSReconnects       = expvar.NewInt("ws_reconnects")
	JournalErrors      = expvar.NewInt("journal_errors")
)
