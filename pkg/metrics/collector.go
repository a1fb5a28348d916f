package metrics

import "time"

// StatsSource is anything that can report the gauges this collector
// samples periodically. pkg/index.Index satisfies it; the interface
// lives here, not there, so this package never imports the index it
// measures.
type StatsSource interface {
	Name() string
	WordsCount() int
	SynonymsCount() int
	DocumentsCount() int
	QueueDepth() int
}

// Collector periodically samples a StatsSource into the package-level
// gauges.
type Collector struct {
	source StatsSource
	stopCh chan struct{}
}

// NewCollector creates a collector sampling source.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins sampling on a ticker, collecting immediately on start.
func (c *Collector) Start() {
	ticker := time.NewTicker(5 * time.Second)
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

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	name := c.source.Name()
	WordsTotal.WithLabelValues(name).Set(float64(c.source.WordsCount()))
	SynonymsTotal.WithLabelValues(name).Set(float64(c.source.SynonymsCount()))
	DocumentsTotal.WithLabelValues(name).Set(float64(c.source.DocumentsCount()))
	UpdateQueueDepth.WithLabelValues(name).Set(float64(c.source.QueueDepth()))
}
