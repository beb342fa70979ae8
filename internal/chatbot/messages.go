package chatbot

import (
	"fmt"
	"strings"

	"github.com/vitalmed/exam-bookings/internal/domain"
)

// Bot copy, Brazilian Portuguese. Kept together so the conversational voice
// stays consistent.

const (
	msgGreeting        = "Olá! Eu sou um chatbot para agendamento de exames médicos. Você gostaria de agendar um exame?"
	msgAskDate         = "Agora, para qual data você gostaria de agendar? (Formato: AAAA-MM-DD)"
	msgInvalidDate     = "Data inválida. Por favor, informe a data no formato AAAA-MM-DD."
	msgPastDate        = "Desculpe, não é possível agendar para uma data passada. Por favor, informe uma data futura. (Formato: AAAA-MM-DD)"
	msgAvailabilityErr = "Ocorreu um erro ao buscar os horários. Por favor, tente novamente mais tarde."
	msgInvalidTime     = "Horário inválido. Por favor, informe o horário no formato HH:MM."
	msgInvalidName     = "Nome inválido. Por favor, informe seu nome completo para confirmar o agendamento."
	msgBookingErr      = "Ocorreu um erro inesperado ao processar seu agendamento. Por favor, tente novamente mais tarde."
	msgFinished        = `Seu agendamento já foi finalizado. Se precisar de algo mais, por favor, me diga "agendar" novamente.`
	msgFallback        = "Desculpe, não entendi. Você gostaria de agendar um exame?"
)

func msgAskRegion() string {
	return fmt.Sprintf("Olá! Parece que você quer agendar um exame. Para qual região você gostaria de agendar? As opções são: %s.",
		strings.Join(domain.Regions, ", "))
}

func msgUnknownRegion() string {
	return fmt.Sprintf("Desculpe, não entendi a região. Por favor, escolha uma das opções: %s.",
		strings.Join(domain.Regions, ", "))
}

func msgAskExamType(region string) string {
	return fmt.Sprintf("Ok, para %s. Agora, qual tipo de exame você gostaria de agendar? (Ex: %s...)",
		region, strings.Join(domain.SuggestedExamTypes[:3], ", "))
}

func msgExamTypeStored(examType string) string {
	return fmt.Sprintf("Certo, um(a) %s. %s", examType, msgAskDate)
}

func msgSlotList(examType, region, date string, slots []string) string {
	return fmt.Sprintf("Ótimo! Temos os seguintes horários disponíveis para %s em %s no dia %s: %s. Qual horário você prefere? (Ex: 09:30)",
		examType, region, date, strings.Join(clockParts(slots), ", "))
}

func msgNoSlots(examType, region, date, reason string) string {
	if reason == "" {
		reason = "Por favor, tente outra data."
	}
	return fmt.Sprintf("Desculpe, não há horários disponíveis para %s em %s no dia %s. %s",
		examType, region, date, reason)
}

func msgSlotNotOffered(slots []string) string {
	return fmt.Sprintf("Este horário não está disponível ou é inválido. Por favor, escolha um dos horários listados: %s.",
		strings.Join(clockParts(slots), ", "))
}

func msgAskName(examType, region, date, clock string) string {
	return fmt.Sprintf("Excelente! Você deseja agendar um(a) **%s** em **%s** para o dia **%s** às **%s**? Por favor, informe seu **nome completo** para confirmar.",
		examType, region, date, clock)
}

func msgConfirmed(examType, region, date, clock, clientName string) string {
	return fmt.Sprintf("**Agendamento Confirmado!** Seu exame de **%s** em **%s** para o dia **%s** às **%s** foi agendado com sucesso para %s. Tenha um ótimo dia!",
		examType, region, date, clock, clientName)
}

func msgSlotTaken() string {
	return "Desculpe, não foi possível agendar: o horário escolhido não está mais disponível. Por favor, tente novamente ou escolha outro horário/data."
}

// clockParts reduces full instants to their HH:MM part for display.
func clockParts(slots []string) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if fields := strings.Fields(s); len(fields) == 2 {
			out = append(out, fields[1])
		} else {
			out = append(out, s)
		}
	}
	return out
}
