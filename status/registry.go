package status

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// Metric keys written by the field, scheduler and host
const (
	KeyFPS            = "fps"
	KeyFrameDelta     = "frame.delta_ms"
	KeyLag            = "frame.lag"
	KeyOpsPerFrame    = "frame.ops"
	KeyParticles      = "field.particles"
	KeyConnections    = "field.connections"
	KeyLines          = "field.lines"
	KeyMaxParticles   = "field.max_particles"
	KeyMaxConnections = "field.max_connections"
	KeyWorldSpeed     = "field.world_speed"
	KeyWorldTarget    = "field.world_speed_target"
	KeyRadiusProduct  = "field.radius_product"
	KeyRadiusTarget   = "field.radius_target"
	KeyWarpSpeed      = "field.warp_speed"
	KeyRotation       = "field.rotation"
	KeySpawnArea      = "spawn.area_connections"
	KeySpawnPath      = "spawn.path"
	KeyState          = "sync.state"
	KeyBeatIndex      = "sync.beat"
	KeyTatumIndex     = "sync.tatum"
	KeySection        = "sync.section"
	KeyPolls          = "sync.polls"
	KeyPollErrors     = "sync.poll_errors"
	KeyWarp           = "field.warp"
)

// Registry is the central metrics facade
// Components cache pointers during init, frame code writes directly to the atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Lines formats every metric as "key: value", grouped by type and sorted by key within a group
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.TotalCount())
	r.Ints.Range(func(k string, v *atomic.Int64) {
		lines = append(lines, k+": "+strconv.FormatInt(v.Load(), 10))
	})
	r.Floats.Range(func(k string, v *AtomicFloat) {
		lines = append(lines, fmt.Sprintf("%s: %.3f", k, v.Get()))
	})
	r.Bools.Range(func(k string, v *atomic.Bool) {
		lines = append(lines, k+": "+strconv.FormatBool(v.Load()))
	})
	r.Strings.Range(func(k string, v *AtomicString) {
		lines = append(lines, k+": "+v.Load())
	})
	return lines
}
