package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики МедНавигатора
var (
	SlotHolds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mednavigator_slot_holds_total",
			Help: "Количество успешных удержаний слотов",
		},
	)

	SlotConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mednavigator_slot_conflicts_total",
			Help: "Количество проигранных гонок за слот (удержание или запись)",
		},
	)

	BookingsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mednavigator_bookings_confirmed_total",
			Help: "Количество подтверждённых записей на приём",
		},
	)

	BookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mednavigator_bookings_cancelled_total",
			Help: "Количество отменённых записей",
		},
	)

	HoldsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mednavigator_holds_expired_total",
			Help: "Количество удержаний, снятых по таймауту",
		},
	)

	NotifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mednavigator_operator_notify_failures_total",
			Help: "Количество неудачных уведомлений оператора",
		},
	)

	IntentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mednavigator_intent_requests_total",
			Help: "Количество распознанных обращений по типам",
		},
		[]string{"intent"},
	)

	VoiceMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mednavigator_voice_messages_total",
			Help: "Количество обработанных голосовых сообщений",
		},
	)
)
