package notify

import (
	"encoding/json"
	"fmt"

	"github.com/vitalmed/exam-bookings/internal/domain"
	"github.com/vitalmed/exam-bookings/pkg/events"
	"github.com/vitalmed/exam-bookings/pkg/logger"
)

// Notifier consumes appointment.booked events and mails a booking notice to
// the clinic inbox. Delivery is best effort; a failed mail never affects the
// committed booking.
type Notifier struct {
	bus    events.Subscriber
	mailer Mailer
	to     string
}

func NewNotifier(bus events.Subscriber, mailer Mailer, to string) *Notifier {
	return &Notifier{bus: bus, mailer: mailer, to: to}
}

// Start subscribes on the notify queue group so only one instance handles
// each event.
func (n *Notifier) Start() error {
	if n.to == "" {
		logger.Info("Booking notifications disabled (no BOOKING_NOTIFY_EMAIL)")
		return nil
	}
	return n.bus.QueueSubscribe(events.AppointmentBooked, "notify", n.handle)
}

func (n *Notifier) handle(msg *events.Message) {
	var event events.AppointmentBookedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Discarding undecodable booking event", "error", err, "subject", msg.Subject)
		return
	}

	subject := fmt.Sprintf("Novo agendamento #%d - %s", event.AppointmentID, event.Region)
	text := fmt.Sprintf(
		"Novo agendamento confirmado.\n\n"+
			"Cliente: %s\n"+
			"Exame: %s\n"+
			"Região: %s\n"+
			"Data/Hora: %s\n",
		event.ClientName,
		event.ExamType,
		event.Region,
		event.ScheduledAt.Format(domain.InstantLayout),
	)

	if err := n.mailer.Send(n.to, "", subject, text); err != nil {
		logger.Error("Failed to send booking notification", "error", err, "appointment_id", event.AppointmentID)
	}
}
