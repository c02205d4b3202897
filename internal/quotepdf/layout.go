package quotepdf

import (
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/pricing"
)

const maxBoxBullets = 6

// header draws the dark band with title, subtitle and a badge on the right.
func (d *doc) header(title, subtitle, badge string) {
	p := d.pdf
	p.SetFillColor(darkFill[0], darkFill[1], darkFill[2])
	p.Rect(0, 0, d.pageW, 24, "F")

	p.SetTextColor(255, 255, 255)
	p.SetFont("Helvetica", "B", 16)
	p.SetXY(margin, 7)
	p.CellFormat(d.contentW/2, 7, d.tr(title), "", 2, "L", false, 0, "")
	p.SetFont("Helvetica", "", 9)
	p.CellFormat(d.contentW/2, 5, d.tr(subtitle), "", 0, "L", false, 0, "")

	p.SetFont("Helvetica", "B", 9)
	bw := p.GetStringWidth(badge) + 10
	p.SetDrawColor(255, 255, 255)
	p.Rect(d.pageW-margin-bw, 8, bw, 8, "D")
	p.SetXY(d.pageW-margin-bw, 8)
	p.CellFormat(bw, 8, d.tr(badge), "", 0, "C", false, 0, "")

	p.SetTextColor(20, 20, 20)
	p.SetXY(margin, 30)
}

func (d *doc) section(title string) {
	p := d.pdf
	if p.GetY() > d.pageH-40 {
		p.AddPage()
	}
	p.SetFont("Helvetica", "B", 11)
	p.SetTextColor(20, 20, 20)
	p.CellFormat(d.contentW, 7, d.tr(title), "", 1, "L", false, 0, "")
	y := p.GetY()
	p.SetDrawColor(220, 220, 220)
	p.SetLineWidth(0.4)
	p.Line(margin, y, d.pageW-margin, y)
	p.Ln(3)
}

func (d *doc) label8(text string) {
	p := d.pdf
	p.SetFont("Helvetica", "B", 8)
	p.SetTextColor(110, 110, 110)
	p.CellFormat(d.contentW, 5, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *doc) body(size float64) {
	d.pdf.SetFont("Helvetica", "", size)
	d.pdf.SetTextColor(20, 20, 20)
}

// keyValues lays pairs out in two columns, label above value.
func (d *doc) keyValues(pairs [][2]string) {
	p := d.pdf
	colW := d.contentW / 2
	for i := 0; i < len(pairs); i += 2 {
		y := p.GetY()
		for j := 0; j < 2 && i+j < len(pairs); j++ {
			x := margin + float64(j)*colW
			p.SetXY(x, y)
			p.SetFont("Helvetica", "", 8)
			p.SetTextColor(110, 110, 110)
			p.CellFormat(colW, 4, d.tr(pairs[i+j][0]), "", 2, "L", false, 0, "")
			p.SetFont("Helvetica", "B", 10)
			p.SetTextColor(20, 20, 20)
			p.CellFormat(colW-4, 5, d.tr(orDash(pairs[i+j][1])), "", 0, "L", false, 0, "")
		}
		p.SetXY(margin, y+10)
	}
	p.Ln(2)
}

// totalsCard is the boxed ARS and USD totals of the client copy.
func (d *doc) totalsCard(t pricing.Totals) {
	p := d.pdf
	y := p.GetY()
	half := d.contentW / 2

	p.SetDrawColor(220, 220, 220)
	p.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
	p.Rect(margin, y, d.contentW, 26, "DF")

	p.SetXY(margin+6, y+5)
	p.SetFont("Helvetica", "B", 10)
	p.SetTextColor(110, 110, 110)
	p.CellFormat(half-12, 5, "TOTAL (ARS)", "", 2, "L", false, 0, "")
	p.SetFont("Helvetica", "B", 18)
	p.SetTextColor(20, 20, 20)
	p.CellFormat(half-12, 10, money.FormatARS(t.PrecioFinalARS), "", 0, "L", false, 0, "")

	p.SetXY(margin+half+6, y+5)
	if t.PrecioFinalUSD != nil {
		p.SetFont("Helvetica", "B", 10)
		p.SetTextColor(110, 110, 110)
		p.CellFormat(half-12, 5, "TOTAL (USD)", "", 2, "L", false, 0, "")
		p.SetFont("Helvetica", "B", 18)
		p.SetTextColor(20, 20, 20)
		p.CellFormat(half-12, 10, money.FormatUSD(*t.PrecioFinalUSD), "", 0, "L", false, 0, "")
	} else {
		p.SetFont("Helvetica", "", 10)
		p.SetTextColor(110, 110, 110)
		p.CellFormat(half-12, 10, "USD no calculado", "", 0, "L", false, 0, "")
	}

	p.SetXY(margin, y+30)
}

// table draws a striped table; widths are fractions of the content width.
// The header row is repeated when a row would cross the bottom margin.
func (d *doc) table(head []string, widths []float64, aligns []string, rows [][]string, size float64) {
	p := d.pdf
	const rowH = 6

	drawHead := func() {
		p.SetFont("Helvetica", "B", size)
		p.SetFillColor(darkFill[0], darkFill[1], darkFill[2])
		p.SetTextColor(255, 255, 255)
		for i, h := range head {
			p.CellFormat(widths[i]*d.contentW, rowH, d.tr(h), "", 0, aligns[i], true, 0, "")
		}
		p.Ln(-1)
	}

	p.SetDrawColor(230, 230, 230)
	p.SetLineWidth(0.3)
	drawHead()
	p.SetFont("Helvetica", "", size)
	p.SetTextColor(20, 20, 20)
	for r, row := range rows {
		if p.GetY()+rowH > d.pageH-18 {
			p.AddPage()
			drawHead()
			p.SetFont("Helvetica", "", size)
			p.SetTextColor(20, 20, 20)
		}
		fill := r%2 == 1
		p.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		for i, cell := range row {
			p.CellFormat(widths[i]*d.contentW, rowH, d.tr(cell), "B", 0, aligns[i], fill, 0, "")
		}
		p.Ln(-1)
	}
	p.Ln(6)
}

func (d *doc) bullets(items []string, width, size float64) {
	d.body(size)
	for _, it := range items {
		d.pdf.SetX(margin)
		d.pdf.MultiCell(width, 5, d.tr("• "+it), "", "L", false)
	}
}

// includeBoxes prints the "Incluye" and "No incluye" columns side by side,
// each capped at six bullets.
func (d *doc) includeBoxes(includes, excludes []string) {
	p := d.pdf
	const boxH = 40
	colW := (d.contentW - 6) / 2
	if p.GetY()+boxH > d.pageH-18 {
		p.AddPage()
	}
	y := p.GetY()

	p.SetDrawColor(230, 230, 230)
	p.Rect(margin, y, colW, boxH, "D")
	p.Rect(margin+colW+6, y, colW, boxH, "D")

	column := func(x float64, title string, items []string) {
		p.SetXY(x+5, y+3)
		p.SetFont("Helvetica", "B", 10)
		p.SetTextColor(110, 110, 110)
		p.CellFormat(colW-10, 5, d.tr(title), "", 2, "L", false, 0, "")
		p.SetFont("Helvetica", "", 9)
		p.SetTextColor(20, 20, 20)
		for _, it := range capBullets(items) {
			p.SetX(x + 5)
			p.CellFormat(colW-10, 5, d.tr("• "+it), "", 2, "L", false, 0, "")
		}
	}
	column(margin, "Incluye", includes)
	column(margin+colW+6, "No incluye", excludes)

	p.SetXY(margin, y+boxH+4)
}

func capBullets(items []string) []string {
	if len(items) == 0 {
		return []string{"-"}
	}
	if len(items) > maxBoxBullets {
		return items[:maxBoxBullets]
	}
	return items
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// spanishDate renders "1 de mayo de 2024".
func spanishDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + " de " + spanishMonths[t.Month()-1] + " de " + strconv.Itoa(t.Year())
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(money.Round2(v), 'f', -1, 64)
}

func customerLabel(c Customer) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{c.Name, c.Company, c.Email} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " / ")
}

func referenceLabel(b domain.CostBreakdown, t pricing.Totals) string {
	if b.ReferenciaTipo != nil && *b.ReferenciaTipo != "" {
		return pricing.ParseReference(*b.ReferenciaTipo).Label()
	}
	return "x" + formatNumber(t.Multiplier)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func optARS(v *float64) string {
	if v == nil {
		return "-"
	}
	return money.FormatARS(*v)
}

func optUSD(v *float64) string {
	if v == nil {
		return "-"
	}
	return money.FormatUSD(*v)
}

func optPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatNumber(*v) + "%"
}
