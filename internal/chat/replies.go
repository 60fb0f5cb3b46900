package chat

// User-facing texts of the booking robot, in the practice's Portuguese.

const (
	replyGreeting = "Olá! Sou o assistente virtual do consultório."

	replyHelp = "Posso ajudar com agendamento de consultas. Diga \"marcar consulta\" para começar."

	replyPrice = "O valor da consulta é R$ 300,00, com pagamento no dia do atendimento."

	replyLocation = "Atendemos na Av. Santos Dumont, 1510, sala 908 - Aldeota, Fortaleza/CE."

	replyInsurance = "Não atendemos por convênio, mas emitimos nota fiscal para reembolso junto ao seu plano."

	replyGoodbyeStart = "Tudo bem! Estou aqui se precisar. 😊"

	replyAskName = "Claro! Por favor, informe seu nome completo."

	replyAskNameAgain = "Não entendi. Pode me informar seu nome completo?"

	replyAskPhone = "Obrigado, %s! Agora informe um telefone com DDD (ex: 85 99999-8888)."

	replyAskPhoneAgain = "Telefone inválido. Informe um número com DDD, com 10 ou 11 dígitos."

	replyNoAvailability = "No momento não há horários disponíveis."

	replySlotListHeader = "Temos os seguintes horários disponíveis:"

	replySlotListFooter = "Informe a data e o horário desejados (ex: 18/12 14:00)."

	replyBadDateTime = "Formato inválido. Ex: 18/12 14:00"

	replyAskModality = "A consulta será presencial ou online?"

	replyAskModalityAgain = "Por favor, responda \"presencial\" ou \"online\"."

	replyConfirmSummary = "Confirmando:\n📅 %s\n⏰ %s\n👤 %s\n📞 %s\n📍 %s\n\nEstá correto? (sim ou não)"

	replyBookingConfirmed = "✅ Consulta confirmada com sucesso!"

	replySlotTaken = "❌ Esse horário não está mais disponível."

	replyDeclined = "Tudo bem! Se quiser, posso ajudar novamente 😊"

	replyRestarted = "Conversa reiniciada. Como posso ajudar?"

	replyAbandoned = "Tudo bem, atendimento encerrado. Até logo!"
)
