package beatsync

// Sink receives musical events, all calls happen on the scheduler goroutine
type Sink interface {
	OnBeat(Beat)
	OnTatum(Tatum)
	OnSegment(Segment)
	OnSection(Section)
}

// Seeder is implemented by sinks that want a nudge on every poll reporting active playback
type Seeder interface {
	Seed()
}

// Sinks fans events out in order
type Sinks []Sink

func (s Sinks) OnBeat(b Beat) {
	for _, k := range s {
		k.OnBeat(b)
	}
}

func (s Sinks) OnTatum(t Tatum) {
	for _, k := range s {
		k.OnTatum(t)
	}
}

func (s Sinks) OnSegment(seg Segment) {
	for _, k := range s {
		k.OnSegment(seg)
	}
}

func (s Sinks) OnSection(sec Section) {
	for _, k := range s {
		k.OnSection(sec)
	}
}

func (s Sinks) Seed() {
	for _, k := range s {
		if seeder, ok := k.(Seeder); ok {
			seeder.Seed()
		}
	}
}
