package pkg

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/alpine-maps/terrain_pager/internal/io"
	"github.com/alpine-maps/terrain_pager/internal/pager"
	"github.com/alpine-maps/terrain_pager/internal/quadtree"
	"github.com/alpine-maps/terrain_pager/internal/tile"
	"github.com/alpine-maps/terrain_pager/pkg/strategy_manager"
)

// VisibleTile is one entry of a selection pass: a tile the camera should
// render this frame together with its distance and geomorphing weights.
type VisibleTile struct {
	Key             quadtree.TileKey
	Range           float64
	VisibilityRange float64
	MorphStart      float64
	MorphEnd        float64
	MorphFactor     float64
}

type IPager interface {
	Evaluate(eye vec3d.T) []VisibleTile
	ApplyUpdates() int
	LoadElevations(source io.ElevationSource) error
	Submit(update *io.ElevationUpdate) bool
	Shutdown()
}

// Pager owns the terrain quadtree and drives tile selection against it. The
// LOD distance table is computed once at construction; selection passes and
// elevation updates may then run from different goroutines, with raster
// swaps confined to ApplyUpdates so a selection pass never observes a tile
// mid-swap.
type Pager struct {
	opts            *pager.PagerOptions
	profile         *quadtree.Profile
	selectionInfo   *quadtree.SelectionInfo
	geometryPool    *tile.GeometryPool
	queue           *io.ElevationQueue
	strategyManager strategy_manager.StrategyManager

	rootsWide uint32
	roots     []*TileNode
}

func NewPager(opts *pager.PagerOptions, strategyManager strategy_manager.StrategyManager) (*Pager, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.Copy()

	profile := opts.Profile()
	selectionInfo := quadtree.NewSelectionInfo(opts.MorphStartRatio)
	selectionInfo.Initialize(opts.FirstLOD, opts.MaxLOD, profile, opts.MinTileRangeFactor)
	if selectionInfo.GetNumLODs() == 0 {
		return nil, errors.New("selection info could not be initialized from the given options")
	}

	wide, high := profile.NumTiles(opts.FirstLOD)
	if wide*high > 1024 {
		return nil, fmt.Errorf("first_lod %d roots the tree with %d tiles, too many", opts.FirstLOD, wide*high)
	}

	p := &Pager{
		opts:            opts,
		profile:         profile,
		selectionInfo:   selectionInfo,
		geometryPool:    tile.NewGeometryPool(),
		queue:           io.NewElevationQueue(1024),
		strategyManager: strategyManager,
		rootsWide:       wide,
	}

	for y := uint32(0); y < high; y++ {
		for x := uint32(0); x < wide; x++ {
			key := quadtree.NewTileKey(opts.FirstLOD, x, y, profile)
			p.roots = append(p.roots, NewTileNode(key, nil, p.geometryPool, opts.TileSize))
		}
	}
	return p, nil
}

func (p *Pager) GetSelectionInfo() *quadtree.SelectionInfo { return p.selectionInfo }
func (p *Pager) GetProfile() *quadtree.Profile             { return p.profile }
func (p *Pager) GetGeometryPool() *tile.GeometryPool       { return p.geometryPool }
func (p *Pager) GetRootNodes() []*TileNode                 { return p.roots }

// Evaluate runs one selection pass for a camera at eye, expressed in the
// world reference the options name. Tiles refine while the camera is closer
// than the next level's visibility range and are otherwise rendered at their
// own level with the morph weights of the distance table.
func (p *Pager) Evaluate(eye vec3d.T) []VisibleTile {
	visible := make([]VisibleTile, 0, len(p.roots)*4)
	for _, root := range p.roots {
		p.evaluateNode(root, eye, &visible)
	}
	return visible
}

func (p *Pager) evaluateNode(n *TileNode, eye vec3d.T, out *[]VisibleTile) {
	lod := n.GetKey().LOD()
	dist, ok := p.distanceTo(n, eye)
	if !ok {
		// no world position, render at the current level and stop refining
		p.emit(n, 0, out)
		return
	}

	if lod > p.selectionInfo.GetFirstLOD() {
		entry := p.selectionInfo.GetLOD(lod)
		if dist >= entry.VisibilityRange {
			// past its own range. In ADD mode the refining ancestor still
			// renders its own surface here; in REPLACE mode it does not, so
			// the tile must stand in for its quadrant.
			if p.opts.RefineMode == pager.RefineModeReplace {
				p.emit(n, dist, out)
			}
			return
		}
	}

	if lod < p.selectionInfo.GetMaxLOD() {
		next := p.selectionInfo.GetLOD(lod + 1)
		if dist < next.VisibilityRange {
			n.InitializeChildren(p.geometryPool, p.opts.TileSize)
			if p.opts.RefineMode == pager.RefineModeAdd {
				p.emit(n, dist, out)
			}
			for _, child := range n.GetChildren() {
				if child != nil {
					p.evaluateNode(child, eye, out)
				}
			}
			return
		}
	}

	p.emit(n, dist, out)
}

func (p *Pager) emit(n *TileNode, dist float64, out *[]VisibleTile) {
	lod := n.GetKey().LOD()
	entry := p.selectionInfo.GetLOD(lod)
	*out = append(*out, VisibleTile{
		Key:             n.GetKey(),
		Range:           dist,
		VisibilityRange: entry.VisibilityRange,
		MorphStart:      entry.MorphStart,
		MorphEnd:        entry.MorphEnd,
		MorphFactor:     p.selectionInfo.MorphFactor(lod, dist),
	})
}

// distanceTo measures from the eye to the surface of the tile's bounding
// sphere in world units, clamped at zero when the eye is inside.
func (p *Pager) distanceTo(n *TileNode, eye vec3d.T) (float64, bool) {
	center, ok := n.WorldCenter(p.strategyManager.GetCoordinateConverterStrategy(), p.opts.Srid)
	if !ok {
		return 0, false
	}
	bound := n.GetGeometry().ComputeBound()
	d := vec3d.Sub(&eye, &center)
	dist := d.Length() - bound.Radius
	if dist < 0 {
		dist = 0
	}
	return dist, true
}

// Submit hands a raw, uncorrected elevation update directly to the queue.
// Most callers go through LoadElevations instead, which also runs the
// correction pipeline.
func (p *Pager) Submit(update *io.ElevationUpdate) bool {
	return p.queue.Submit(update)
}

// ApplyUpdates drains the elevation queue into the live tiles. Updates for
// tiles that selection has not created yet are dropped; their data comes
// back through ancestor inheritance when the tile appears. Returns the
// number of updates applied.
func (p *Pager) ApplyUpdates() int {
	applied := 0
	p.queue.Drain(func(update *io.ElevationUpdate) {
		node := p.findNode(update.Key)
		if node == nil {
			return
		}
		node.SetElevation(update.Raster, update.ScaleBias, true)
		applied++
	})
	return applied
}

func (p *Pager) findNode(key quadtree.TileKey) *TileNode {
	firstLOD := p.selectionInfo.GetFirstLOD()
	if key.LOD() < firstLOD || key.Profile() != p.profile {
		return nil
	}
	shift := key.LOD() - firstLOD
	rx := key.X() >> shift
	ry := key.Y() >> shift
	idx := int(ry*p.rootsWide + rx)
	if idx >= len(p.roots) {
		return nil
	}
	return p.roots[idx].FindDescendant(key)
}

// LoadElevations runs the loading pipeline: the source produces raw updates,
// a consumer goroutine per CPU applies the elevation correction strategy and
// the corrected updates land in the queue for the next ApplyUpdates call.
func (p *Pager) LoadElevations(source io.ElevationSource) error {
	// a consumer goroutine per CPU
	numConsumers := runtime.NumCPU()

	// init channel where to submit work with a buffer 5 times greater than the number of consumers
	workChannel := make(chan *io.ElevationUpdate, numConsumers*5)

	// init channel where consumers can eventually submit errors that prevented them to finish the job
	errorChannel := make(chan error, numConsumers)

	var waitGroup sync.WaitGroup

	// add producer to waitgroup and launch producer goroutine
	waitGroup.Add(1)
	go source.Produce(workChannel, &waitGroup)

	// add consumers to waitgroup and launch them
	corrector := p.strategyManager.GetElevationCorrectionStrategy()
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewCorrectingConsumer(corrector, p.queue)
		go consumer.Consume(workChannel, errorChannel, &waitGroup)
	}

	// wait for producer and consumers to finish
	waitGroup.Wait()

	// close error chan
	close(errorChannel)

	// find if there are errors in the error channel buffer
	withErrors := false
	for err := range errorChannel {
		log.Println(err)
		withErrors = true
	}
	if withErrors {
		return errors.New("errors raised during elevation loading. Check console output for details")
	}

	return nil
}

// Shutdown releases the tree, the shared geometry and the projection
// handles. The pager must not be used afterwards.
func (p *Pager) Shutdown() {
	p.queue.Close()
	for _, root := range p.roots {
		root.Release()
	}
	p.roots = nil
	p.strategyManager.GetCoordinateConverterStrategy().Cleanup()
}
