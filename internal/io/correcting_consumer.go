package io

import (
	"fmt"
	"sync"

	"github.com/alpine-maps/terrain_pager/internal/converters"
	"github.com/alpine-maps/terrain_pager/internal/data"
)

// CorrectingConsumer drains raw elevation updates from a work channel,
// applies the configured elevation correction to every sample and forwards
// the corrected update into the queue the pager drains at its sync point.
type CorrectingConsumer struct {
	corrector converters.ElevationCorrector
	queue     *ElevationQueue
}

func NewCorrectingConsumer(corrector converters.ElevationCorrector, queue *ElevationQueue) *CorrectingConsumer {
	return &CorrectingConsumer{
		corrector: corrector,
		queue:     queue,
	}
}

// Continually consumes elevation updates submitted to the work channel until
// it is closed or an error is raised. In this last case submits the error to
// the error channel before quitting.
func (c *CorrectingConsumer) Consume(workchan chan *ElevationUpdate, errchan chan error, waitGroup *sync.WaitGroup) {
	for {
		work, ok := <-workchan
		if !ok {
			// channel was closed by producer, quit infinite loop
			break
		}

		err := c.doWork(work)
		if err != nil {
			errchan <- err
			// keep receiving so the producer never blocks on a full
			// channel, remaining work is dropped
			for range workchan {
			}
			break
		}
	}

	waitGroup.Done()
}

// Takes an elevation update, corrects every valid sample and submits the
// result to the queue. Updates without a raster pass through untouched, they
// only clear a tile back to the flat state.
func (c *CorrectingConsumer) doWork(update *ElevationUpdate) error {
	if update.Raster == nil || c.corrector == nil {
		if !c.queue.Submit(update) {
			return fmt.Errorf("elevation queue full, dropped update for tile %s", update.Key.String())
		}
		return nil
	}

	extent := update.Key.Extent()
	if !extent.IsValid() {
		return fmt.Errorf("elevation update for tile %s has no valid extent", update.Key.String())
	}

	w := update.Raster.Width()
	h := update.Raster.Height()
	corrected := data.NewElevationRaster(w, h)
	for row := 0; row < h; row++ {
		y := extent.South() + extent.Height()*float64(row)/float64(h-1)
		for col := 0; col < w; col++ {
			sample := update.Raster.At(col, row)
			if sample == data.NoDataValue {
				corrected.Set(col, row, sample)
				continue
			}
			x := extent.West() + extent.Width()*float64(col)/float64(w-1)
			corrected.Set(col, row, float32(c.corrector.CorrectElevation(x, y, float64(sample))))
		}
	}

	out := &ElevationUpdate{
		Key:       update.Key,
		Raster:    corrected,
		ScaleBias: update.ScaleBias,
	}
	if !c.queue.Submit(out) {
		return fmt.Errorf("elevation queue full, dropped update for tile %s", update.Key.String())
	}
	return nil
}
