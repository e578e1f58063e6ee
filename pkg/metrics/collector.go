package metrics

import (
	"time"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobj"
)

// Collector periodically snapshots the class registry and gobj tree
// into the gauges of this package, the adapted equivalent of a
// cluster-state poller for a single-process object tree.
type Collector struct {
	rt     *gobj.Runtime
	stopCh chan struct{}
}

// NewCollector builds a collector over rt.
func NewCollector(rt *gobj.Runtime) *Collector {
	return &Collector{rt: rt, stopCh: make(chan struct{})}
}

// Start begins collecting on a fixed interval, in the background.
func (c *Collector) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the background collection goroutine.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.rt.Classes.Walk(func(class *gclass.Class) {
		LiveInstances.WithLabelValues(class.Name).Set(float64(class.LiveInstances()))
	})

	running := make(map[string]int)
	playing := make(map[string]int)
	if yuno := c.rt.Yuno(); yuno != nil {
		gobj.WalkTree(yuno, func(g *gobj.Gobj) {
			if g.Running() {
				running[g.Class().Name]++
			}
			if g.Playing() {
				playing[g.Class().Name]++
			}
		})
	}
	for class, n := range running {
		RunningGobjs.WithLabelValues(class).Set(float64(n))
	}
	for class, n := range playing {
		PlayingGobjs.WithLabelValues(class).Set(float64(n))
	}
}
