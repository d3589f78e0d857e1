// Package confirmation renders what the customer gets after an order is
// sent: the WhatsApp hand-off, its QR code and a printable receipt.
package confirmation

import (
	"fmt"
	"net/url"
	"strings"

	"calufestas/checkout"
	"calufestas/models"
)

// Message is the text pre-filled in the WhatsApp chat with the store.
func Message(sub checkout.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, tenho interesse em fazer uma locação no endereço: %s, no dia: %s até o dia: %s\n",
		sub.Address, sub.Delivery, sub.Pickup)
	fmt.Fprintf(&b, "Forma de pagamento: %s\n\n", sub.Payment)
	b.WriteString("Itens alugados:\n")
	for _, it := range sub.Items {
		fmt.Fprintf(&b, "- %s (Qtd: %d) - %s\n", it.Name, it.Quantity, models.FormatBRL(it.Price))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\n", models.FormatBRL(sub.Total))
	b.WriteString("Qualquer dúvida, estou à disposição.")
	return b.String()
}

// WhatsAppURL opens a chat with number carrying msg.
func WhatsAppURL(number, msg string) string {
	text := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return "https://wa.me/" + number + "?text=" + text
}
