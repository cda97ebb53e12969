// Package metrics содержит prometheus-метрики сервиса планов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Результаты расчёта апгрейда.
const (
	QuoteOK             = "ok"
	QuoteNotFound       = "not_found"
	QuoteInvalidUpgrade = "invalid_upgrade"
	QuoteError          = "error"
)

// Metrics — набор счётчиков. Нулевой указатель допустим, методы тогда ничего не делают.
type Metrics struct {
	quotes        *prometheus.CounterVec
	planMutations *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plans",
			Name:      "upgrade_quotes_total",
			Help:      "Number of upgrade price calculations by result.",
		}, []string{"result"}),
		planMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plans",
			Name:      "mutations_total",
			Help:      "Number of plan catalogue changes by action.",
		}, []string{"action"}),
	}
	reg.MustRegister(m.quotes, m.planMutations)
	return m
}

// ObserveQuote учитывает расчёт апгрейда с результатом result.
func (m *Metrics) ObserveQuote(result string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(result).Inc()
}

// ObserveMutation учитывает изменение каталога.
func (m *Metrics) ObserveMutation(action string) {
	if m == nil {
		return
	}
	m.planMutations.WithLabelValues(action).Inc()
}
