//go:build !tinygo

// Package metrics exports clock activity to Prometheus. TinyGo builds leave the
// core's built-in no-op counters in place.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dotclock/clockos/setup"
)

// Metrics implements clock.Metrics. Every series is resolved up front so the tick
// goroutine never allocates.
type Metrics struct {
	presses       [setup.NumButtons][2]prometheus.Counter
	scrolls       prometheus.Counter
	queueFull     prometheus.Counter
	chimes        prometheus.Counter
	alarms        [setup.NumAlarms]prometheus.Counter
	dstChanges    prometheus.Counter
	rtcErrors     prometheus.Counter
	eventsDropped prometheus.Counter
	brightness    prometheus.Gauge
}

// New registers the clock metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	presses := f.NewCounterVec(prometheus.CounterOpts{
		Name: "clock_button_presses_total",
		Help: "classified button presses",
	}, []string{"button", "kind"})
	alarms := f.NewCounterVec(prometheus.CounterOpts{
		Name: "clock_alarms_fired_total",
		Help: "alarms that started ringing",
	}, []string{"alarm"})

	m := &Metrics{
		scrolls: f.NewCounter(prometheus.CounterOpts{
			Name: "clock_scrolls_enqueued_total",
			Help: "scroll tags accepted by the scroll queue",
		}),
		queueFull: f.NewCounter(prometheus.CounterOpts{
			Name: "clock_scroll_queue_full_total",
			Help: "scroll tags rejected because the queue was full",
		}),
		chimes: f.NewCounter(prometheus.CounterOpts{
			Name: "clock_chimes_total",
			Help: "hourly chimes sounded",
		}),
		dstChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "clock_dst_changes_total",
			Help: "daylight-saving transitions applied",
		}),
		rtcErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "clock_rtc_errors_total",
			Help: "failed RTC transactions",
		}),
		eventsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "clock_events_dropped_total",
			Help: "interrupt events lost because the event ring was full",
		}),
		brightness: f.NewGauge(prometheus.GaugeOpts{
			Name: "clock_brightness_level",
			Help: "current panel brightness, 0 to 8",
		}),
	}
	for b := setup.Button(0); b < setup.NumButtons; b++ {
		m.presses[b][0] = presses.WithLabelValues(b.String(), "short")
		m.presses[b][1] = presses.WithLabelValues(b.String(), "long")
	}
	for i := range m.alarms {
		m.alarms[i] = alarms.WithLabelValues(strconv.Itoa(i + 1))
	}
	return m
}

func (m *Metrics) ButtonPress(b setup.Button, long bool) {
	if b >= setup.NumButtons {
		return
	}
	kind := 0
	if long {
		kind = 1
	}
	m.presses[b][kind].Inc()
}

func (m *Metrics) ScrollEnqueued() { m.scrolls.Inc() }
func (m *Metrics) QueueFull()      { m.queueFull.Inc() }
func (m *Metrics) Chime()          { m.chimes.Inc() }
func (m *Metrics) DSTChange()      { m.dstChanges.Inc() }
func (m *Metrics) RTCError()       { m.rtcErrors.Inc() }
func (m *Metrics) EventDropped()   { m.eventsDropped.Inc() }

func (m *Metrics) AlarmFired(id int) {
	if id >= 0 && id < len(m.alarms) {
		m.alarms[id].Inc()
	}
}

func (m *Metrics) Brightness(level int) { m.brightness.Set(float64(level)) }
