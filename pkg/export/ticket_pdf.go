package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// TicketPerson is a participant line printed on the ticket.
type TicketPerson struct {
	Name     string
	Identity string
}

// Ticket carries everything printed on a registration ticket.
type Ticket struct {
	RegistrationID string
	QRPayload      string
	Status         string
	EventTitle     string
	Category       string
	Department     string
	Date           string
	Time           string
	Location       string
	Leader         TicketPerson
	LeaderEmail    string
	LeaderPhone    string
	Members        []TicketPerson
}

// TicketRenderer renders a single-page ticket with the credential QR code.
type TicketRenderer struct {
	Heading string
	QRSize  int
}

// NewTicketRenderer builds a renderer with the festival heading.
func NewTicketRenderer(heading string) *TicketRenderer {
	if heading == "" {
		heading = "GARDENIA 2025"
	}
	return &TicketRenderer{Heading: heading, QRSize: 512}
}

// Render produces the ticket PDF bytes.
func (r *TicketRenderer) Render(t Ticket) ([]byte, error) {
	if t.RegistrationID == "" || t.QRPayload == "" {
		return nil, fmt.Errorf("ticket requires registration id and qr payload")
	}
	png, err := qrcode.Encode(t.QRPayload, qrcode.Medium, r.QRSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, tr(r.Heading), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Official entry ticket", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	imageName := "qr-" + t.RegistrationID
	pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imageName, 140, 15, 55, 55, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(120, 9, tr(t.EventTitle), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		labelled("Category", t.Category),
		labelled("Department", t.Department),
		labelled("Date", t.Date),
		labelled("Time", t.Time),
		labelled("Venue", t.Location),
	} {
		if line != "" {
			pdf.CellFormat(120, 6, tr(line), "", 1, "L", false, 0, "")
		}
	}

	pdf.SetY(80)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Registration "+t.RegistrationID, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(labelled("Status", t.Status)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(labelled("Team leader", personLine(t.Leader))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(labelled("Email", t.LeaderEmail)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(labelled("Phone", t.LeaderPhone)), "", 1, "L", false, 0, "")

	if len(t.Members) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Team members", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for i, m := range t.Members {
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d. %s", i+1, personLine(m))), "", 1, "L", false, 0, "")
		}
	}

	pdf.SetY(270)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4, "Present this QR code at the venue entrance. Each scan is logged. Do not share this ticket.", "T", "C", false)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return buf.Bytes(), nil
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

func personLine(p TicketPerson) string {
	if p.Identity == "" {
		return p.Name
	}
	return p.Name + " (" + p.Identity + ")"
}
