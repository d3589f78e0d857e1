package confirmation

import (
	"bytes"
	"fmt"

	"calufestas/checkout"
	"calufestas/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// QRCode encodes link as a 256px PNG.
func QRCode(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, 256)
}

// Receipt renders the order as a one-page A4 PDF with the WhatsApp QR code.
func Receipt(sub checkout.Submission, link string) ([]byte, error) {
	qrPNG, err := QRCode(link)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr("Pedido de locação"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Nome: " + sub.Name,
		"Endereço: " + sub.Address,
		"Entrega: " + sub.Delivery,
		"Retirada: " + sub.Pickup,
		"Pagamento: " + string(sub.Payment),
	}
	if sub.Email != "" {
		lines = append(lines, "E-mail: "+sub.Email)
	}
	for _, l := range lines {
		pdf.Cell(0, 10, tr(l))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(100, 8, "Item", "B", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Qtd", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, tr("Preço"), "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	for _, it := range sub.Items {
		pdf.CellFormat(100, 8, tr(it.Name), "", 0, "", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprint(it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, models.FormatBRL(it.Price), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 10, "Total", "T", 0, "", false, 0, "")
	pdf.CellFormat(35, 10, models.FormatBRL(sub.Total), "T", 1, "R", false, 0, "")

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
