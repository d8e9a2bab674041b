package field

import (
	"math"

	"github.com/lixenwraith/starfield/config"
)

// SpawnFloor is the number of opaque connection particles the spawn area tries to keep
func (f *Field) SpawnFloor() int {
	d := f.radiusTarget * f.cfg.SpawnLimiter
	if d <= 0 {
		return 0
	}
	return int(math.Floor(f.spawnRadius / d))
}

// SpawnTick creates offspring from existing particles within the population caps
// An empty field always gets exactly one connection particle at the center
func (f *Field) SpawnTick() {
	if len(f.particles) == 0 {
		cx, cy := f.Center()
		f.newParticle(cx, cy, KindConnection)
		return
	}

	f.stats.InSpawn = 0
	f.stats.ConnectionsInSpawn = 0
	f.stats.Spawned = [4]int{}

	switch f.cfg.SpawnAlgorithm {
	case config.SpawnUniform:
		f.spawnUniform()
	default:
		f.spawnPriority()
		f.spawnFill()
	}
}

func (f *Field) canSpawn() bool {
	return len(f.particles) < f.maxParticles
}

func (f *Field) canSpawnConnection() bool {
	return f.canSpawn() && len(f.connections) < f.maxConnections
}

// spawnUniform lets every fully opaque connection particle spawn one offspring at its position
func (f *Field) spawnUniform() {
	parents := make([]*Particle, 0, len(f.connections))
	for _, p := range f.connections {
		if p.Alpha >= 1 {
			parents = append(parents, p)
		}
	}

	for _, p := range parents {
		switch {
		case f.canSpawnConnection():
			f.newParticle(p.X, p.Y, KindConnection)
			f.stats.Spawned[2]++
		case f.canSpawn():
			f.newParticle(p.X, p.Y, KindPlain)
			f.stats.Spawned[3]++
		default:
			return
		}
	}
}

// spawnPriority keeps the spawn area stocked with connection particles before anything else
func (f *Field) spawnPriority() {
	cx, cy := f.Center()
	floor := f.SpawnFloor()
	f.stats.SpawnFloor = floor

	// Census first, spawning while scanning would count offspring
	var parents []*Particle
	for _, p := range f.particles {
		if math.Hypot(cx-p.X, cy-p.Y) > f.spawnRadius {
			continue
		}
		f.stats.InSpawn++
		if p.IsConnection() && p.Alpha >= 1 {
			f.stats.ConnectionsInSpawn++
			parents = append(parents, p)
		}
	}

	for _, p := range parents {
		if f.stats.ConnectionsInSpawn < floor && f.canSpawnConnection() {
			f.newParticle(p.X, p.Y, KindConnection)
			f.stats.ConnectionsInSpawn++
			f.stats.Spawned[0]++
		} else if f.canSpawn() {
			f.newParticle(p.X, p.Y, KindPlain)
			f.stats.Spawned[1]++
		}
	}
}

// spawnFill clones existing particles until the total cap, connection parents replenish connections first
func (f *Field) spawnFill() {
	n := len(f.particles)
	for i := n - 1; i >= 0 && f.canSpawn(); i-- {
		p := f.particles[i]
		if p.IsConnection() && f.canSpawnConnection() {
			f.newParticle(p.X, p.Y, KindConnection)
			f.stats.Spawned[2]++
		} else {
			f.newParticle(p.X, p.Y, KindPlain)
			f.stats.Spawned[3]++
		}
	}
}

// Seed adds one connection particle at the center when both caps allow it
func (f *Field) Seed() {
	if len(f.particles) == 0 {
		f.SpawnTick()
		return
	}
	if f.canSpawnConnection() {
		cx, cy := f.Center()
		f.newParticle(cx, cy, KindConnection)
	}
}
