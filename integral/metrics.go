package integral

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// sessionMetrics — счетчики одной сессии; у каждой сессии свой metrics.Set
type sessionMetrics struct {
	set        *metrics.Set
	sets       *metrics.Counter
	eliminated *metrics.Counter
}

func newSessionMetrics(position int, surviving func() float64) *sessionMetrics {
	set := metrics.NewSet()
	label := fmt.Sprintf(`{position="%d"}`, position)

	m := &sessionMetrics{
		set:        set,
		sets:       set.NewCounter("integral_sets_processed_total" + label),
		eliminated: set.NewCounter("integral_guesses_eliminated_total" + label),
	}
	set.NewGauge("integral_candidates_surviving"+label, surviving)
	return m
}

func (m *sessionMetrics) observe(before, after int) {
	m.sets.Inc()
	m.eliminated.Add(before - after)
}

func (m *sessionMetrics) write(w io.Writer) {
	m.set.WritePrometheus(w)
}
