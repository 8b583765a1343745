package ui

import "sync/atomic"

type Stats struct {
	TotalPages atomic.Int64
	TotalBytes atomic.Int64
	TotalFiles atomic.Int64
}
