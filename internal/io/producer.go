package io

import (
	"sync"
)

// ElevationSource feeds raw elevation updates into the paging pipeline.
// Implementations close the channel when all work is submitted and call
// Done on the wait group before returning.
type ElevationSource interface {
	Produce(work chan *ElevationUpdate, wg *sync.WaitGroup)
}
