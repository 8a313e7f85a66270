package exporter

import "sync/atomic"

// Stats is a point-in-time snapshot of the exporter's counters.
type Stats struct {
	MessagesReceived  uint64 `json:"messages_received"`
	FilesWritten      uint64 `json:"files_written"`
	ErrorsCount       uint64 `json:"errors_count"`
	FormatConversions uint64 `json:"format_conversions"`
}

type statsCounters struct {
	messagesReceived  atomic.Uint64
	filesWritten      atomic.Uint64
	errorsCount       atomic.Uint64
	formatConversions atomic.Uint64
}

func (c *statsCounters) snapshot() Stats {
	return Stats{
		MessagesReceived:  c.messagesReceived.Load(),
		FilesWritten:      c.filesWritten.Load(),
		ErrorsCount:       c.errorsCount.Load(),
		FormatConversions: c.formatConversions.Load(),
	}
}
