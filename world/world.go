// Package world is a raycast backend: a registry of rigid bodies indexed by
// a spatial grid, answering nearest-hit ray queries into raycast.Result.
//
// Mutations (AddBody, RemoveBody, Sync) are not synchronized. Once they are
// done, any number of goroutines may call Raycast concurrently provided each
// uses its own Result.
package world

import (
	"context"
	"errors"
	"fmt"

	"github.com/akmonengine/raycast"
	"github.com/akmonengine/raycast/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DEFAULT_WORKERS = 1

var ErrDuplicateBody = errors.New("body already in world")

type World struct {
	// List of all rigid bodies in the world
	Bodies      []*actor.RigidBody
	SpatialGrid *SpatialGrid
	Workers     int

	index  map[raycast.Handle]int
	logger *zap.Logger
}

type Option func(w *World)

func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

func WithWorkers(workers int) Option {
	return func(w *World) {
		w.Workers = workers
	}
}

// NewWorld creates an empty world. cfg is expected to be valid, see Config.Validate.
func NewWorld(cfg Config, opts ...Option) *World {
	w := &World{
		SpatialGrid: NewSpatialGrid(cfg.CellSize, cfg.Cells),
		Workers:     cfg.Workers,
		index:       make(map[raycast.Handle]int),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	return w
}

// AddBody adds a rigid body to the world and indexes it at its current AABB
func (w *World) AddBody(body *actor.RigidBody) error {
	if body.Handle.IsZero() {
		body.Handle = raycast.NewHandle()
	}
	if _, ok := w.index[body.Handle]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBody, body.Handle)
	}

	body.ComputeAABB()
	w.Bodies = append(w.Bodies, body)
	w.index[body.Handle] = len(w.Bodies) - 1
	w.SpatialGrid.Insert(len(w.Bodies)-1, body)

	return nil
}

// RemoveBody removes a rigid body from the world. Its handle no longer resolves.
func (w *World) RemoveBody(body *actor.RigidBody) bool {
	k, ok := w.index[body.Handle]
	if !ok || w.Bodies[k] != body {
		return false
	}

	w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	delete(w.index, body.Handle)
	for i := k; i < len(w.Bodies); i++ {
		w.index[w.Bodies[i].Handle] = i
	}

	// Indices shifted, the grid must be rebuilt
	w.rebuild()
	return true
}

// Resolve returns the body behind a handle found in a raycast.Result
func (w *World) Resolve(handle raycast.Handle) (*actor.RigidBody, bool) {
	k, ok := w.index[handle]
	if !ok {
		return nil, false
	}
	return w.Bodies[k], true
}

// Sync refreshes every AABB and rebuilds the spatial grid.
// Call it after moving bodies, before casting rays.
func (w *World) Sync() {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.ComputeAABB()
	})
	w.rebuild()

	w.logger.Debug("world synced", zap.Int("bodies", len(w.Bodies)))
}

func (w *World) rebuild() {
	w.SpatialGrid.Clear()
	for i, body := range w.Bodies {
		w.SpatialGrid.Insert(i, body)
	}
	w.SpatialGrid.SortCells()
}

// Raycast casts the segment from -> to and records the nearest hit accepted
// by query in result. result is reset for this ray first; the return value
// is result.HasHit().
func (w *World) Raycast(from, to mgl64.Vec3, query raycast.Query, result *raycast.Result) bool {
	result.ResetRay(from, to)

	ray := actor.NewRay(from, to)
	if ray.IsDegenerate() {
		return false
	}

	c := candidatesPool.Get().(*candidates)
	c.reset(len(w.Bodies))
	defer candidatesPool.Put(c)

	// Broad phase walks the grid along the segment; each new candidate goes
	// through the narrow phase right away so the walk stops past the nearest hit
	var best actor.Hit
	var bestBody *actor.RigidBody
	w.SpatialGrid.TraverseSegment(ray, func(idx int) float64 {
		if c.add(idx) {
			body := w.Bodies[idx]
			if hit, ok := w.intersect(ray, query, body, best, bestBody != nil); ok {
				best = hit
				bestBody = body
			}
		}
		if bestBody == nil {
			return ray.Length
		}
		return best.Distance
	})

	if bestBody == nil {
		w.logger.Debug("raycast missed", zap.Object("query", query), zap.Object("result", result))
		return false
	}

	if best.Triangle >= 0 {
		result.SetHitTriangle(best.Normal, best.Point, best.Triangle)
	} else {
		result.SetHitData(best.Normal, best.Point)
	}
	result.SetBody(bestBody.Handle)
	if best.Instance >= 0 {
		result.SetBodyIndex(best.Instance)
	}
	result.CalculateHitDistance()

	w.logger.Debug("raycast hit", zap.Object("query", query), zap.Object("result", result))
	return true
}

// intersect runs the narrow phase of one candidate, returning its hit when
// it is accepted by query and nearer than best
func (w *World) intersect(ray actor.Ray, query raycast.Query, body *actor.RigidBody, best actor.Hit, hasBest bool) (actor.Hit, bool) {
	if !Accepts(query, body) {
		return actor.Hit{}, false
	}
	if !body.IsUnbounded() {
		if enter, ok := body.GetAABB().IntersectRay(ray); !ok || (hasBest && enter > best.Distance) {
			return actor.Hit{}, false
		}
	}

	hit, ok := body.IntersectRay(ray)
	if !ok || (hasBest && hit.Distance >= best.Distance) {
		return actor.Hit{}, false
	}
	return hit, true
}

// Segment is one ray of a batch
type Segment struct {
	From, To mgl64.Vec3
}

// RaycastBatch casts every segment with the same filter, using up to Workers
// goroutines. Each segment gets its own Result, in input order.
func (w *World) RaycastBatch(ctx context.Context, segments []Segment, query raycast.Query) ([]*raycast.Result, error) {
	results := make([]*raycast.Result, len(segments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.Workers)

	for i, segment := range segments {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := raycast.NewResult()
			w.Raycast(segment.From, segment.To, query, result)
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("raycast batch: %w", err)
	}
	return results, nil
}
