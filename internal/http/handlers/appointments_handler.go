package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitalmed/exam-bookings/internal/domain"
	"github.com/vitalmed/exam-bookings/internal/http/response"
	"github.com/vitalmed/exam-bookings/pkg/logger"
)

// SchedulingService exposes the slot model and booking ledger to non-chat
// callers.
type SchedulingService interface {
	Availability(ctx context.Context, region, examType, date string) (domain.Availability, error)
	Book(ctx context.Context, req domain.AppointmentReq) (*domain.Appointment, error)
	ListUpcoming(ctx context.Context, clientName string) ([]domain.Appointment, error)
}

type AppointmentsHandler struct {
	svc SchedulingService
}

func NewAppointmentsHandler(svc SchedulingService) *AppointmentsHandler {
	return &AppointmentsHandler{svc: svc}
}

func (h *AppointmentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/availability", h.availability)
	r.Post("/", h.create)
	r.Get("/client/{name}", h.listByClient)
	return r
}

func (h *AppointmentsHandler) availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	region := q.Get("region")
	examType := q.Get("exam_type")
	date := q.Get("date")
	if region == "" || examType == "" || date == "" {
		response.BadRequest(w, "Região, tipo de exame e data são obrigatórios.")
		return
	}

	avail, err := h.svc.Availability(r.Context(), region, examType, date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			response.BadRequest(w, "Data inválida. Use o formato AAAA-MM-DD.")
			return
		}
		logger.ErrorContext(r.Context(), "Availability query failed", "error", err, "region", region, "date", date)
		response.InternalError(w, "Erro interno do servidor ao verificar disponibilidade.")
		return
	}

	if avail.Slots == nil {
		avail.Slots = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(avail)
}

type createAppointmentResponse struct {
	Message     string              `json:"message"`
	ID          int64               `json:"id"`
	Appointment *domain.Appointment `json:"appointment"`
}

func (h *AppointmentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.AppointmentReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.ClientName) == "" || strings.TrimSpace(in.Region) == "" ||
		strings.TrimSpace(in.ExamType) == "" || strings.TrimSpace(in.ScheduledAt) == "" {
		response.BadRequest(w, "Todos os campos são obrigatórios para o agendamento.")
		return
	}

	appt, err := h.svc.Book(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			response.BadRequest(w, "Data/hora inválida. Use o formato AAAA-MM-DD HH:MM.")
		case errors.Is(err, domain.ErrSlotUnavailable):
			response.Conflict(w, "Horário indisponível. Escolha outro horário ou data.")
		default:
			logger.ErrorContext(r.Context(), "Booking failed", "error", err)
			response.InternalError(w, "Erro interno do servidor ao agendar.")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createAppointmentResponse{
		Message:     "Agendamento realizado com sucesso!",
		ID:          appt.ID,
		Appointment: appt,
	})
}

type listAppointmentsResponse struct {
	Appointments []domain.Appointment `json:"appointments"`
}

func (h *AppointmentsHandler) listByClient(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, "Nome do cliente é obrigatório.")
		return
	}

	appts, err := h.svc.ListUpcoming(r.Context(), name)
	if err != nil {
		logger.ErrorContext(r.Context(), "Listing appointments failed", "error", err, "client", name)
		response.InternalError(w, "Erro interno do servidor.")
		return
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(listAppointmentsResponse{Appointments: appts})
}
