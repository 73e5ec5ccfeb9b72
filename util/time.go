package util

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// NowMS returns the current wall clock time in milliseconds.
func NowMS() int64 {
	return (time.Now().UnixNano() / (1000 * 1000))
}

// Time records how long a section took under the named timer in the
// default registry. Call it at the top of the section and defer the
// returned func:
//
//	defer util.Time("CreateElement")()
func Time(name string) func() {
	beginTSInMS := NowMS()
	return func() {
		interval := time.Duration(NowMS()-beginTSInMS) * time.Millisecond
		t := metrics.GetOrRegisterTimer(name, metrics.DefaultRegistry)
		t.Update(interval)
	}
}
