package chat

import "strings"

type Intent int

const (
	IntentUnknown Intent = iota
	IntentRestart
	IntentPrice
	IntentLocation
	IntentAvailability
	IntentBooking
	IntentDecline
	IntentInsurance
)

// Keyword tables checked in priority order. An utterance matching more than
// one class always resolves to the earliest-checked one; callers rely on
// this ordering.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentRestart, []string{"reiniciar", "recomeçar", "recomecar", "resetar"}},
	{IntentPrice, []string{"valor", "preço", "preco", "custa"}},
	{IntentLocation, []string{"onde", "endereço", "endereco", "local"}},
	{IntentAvailability, []string{"horário", "horario", "disponib"}},
	{IntentBooking, []string{"marcar", "agendar", "consulta"}},
	{IntentDecline, []string{"não", "nao", "depois", "obrigado", "obrigada"}},
	{IntentInsurance, []string{"convênio", "convenio", "plano"}},
}

var abandonKeywords = []string{"cancelar", "desistir", "encerrar", "sair"}

// reservedKeywords flag a message as an administrative question rather than
// a plausible patient name.
var reservedKeywords = []string{
	"valor", "horário", "horario", "consulta", "onde", "preço", "preco",
}

// ClassifyIntent matches msg against the keyword tables; first match wins.
func ClassifyIntent(msg string) Intent {
	msg = strings.ToLower(msg)
	for _, class := range intentKeywords {
		for _, kw := range class.keywords {
			if strings.Contains(msg, kw) {
				return class.intent
			}
		}
	}
	return IntentUnknown
}

// IsAbandon reports whether msg asks to end the conversation.
func IsAbandon(msg string) bool {
	msg = strings.ToLower(msg)
	for _, kw := range abandonKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// IsAffirmative reports whether msg confirms the booking summary.
func IsAffirmative(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "sim") || strings.Contains(msg, "yes")
}

// ContainsReservedKeyword reports whether msg looks like an administrative
// question instead of a name.
func ContainsReservedKeyword(msg string) bool {
	msg = strings.ToLower(msg)
	for _, kw := range reservedKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// ValidName accepts any non-empty message free of reserved keywords,
// keeping the original casing for storage.
func ValidName(msg string) bool {
	trimmed := strings.TrimSpace(msg)
	return trimmed != "" && !ContainsReservedKeyword(trimmed)
}

// NormalizePhone strips non-digit characters and accepts 10 or 11 digits
// (landline or mobile with area code).
func NormalizePhone(msg string) (string, bool) {
	var digits strings.Builder
	for _, r := range msg {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 10 || len(d) > 11 {
		return "", false
	}
	return d, true
}
