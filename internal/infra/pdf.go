package infra

// Settlement receipt rendered with go-pdf/fpdf.
// Narrow receipt layout:
//   - Venue header, worker and date
//   - Counters block (tokens, VR, coupons)
//   - Sales breakdown and bold net profit
//   - Product stock snapshot
//   - Closing checklist and notes

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/car1087/dinoplay-2-0/internal/liquidacion"
	"github.com/car1087/dinoplay-2-0/internal/model"

	"github.com/go-pdf/fpdf"
)

// ReciboLiquidacion is everything the receipt prints besides the settlement itself.
type ReciboLiquidacion struct {
	Liquidacion *model.Liquidacion
	Trabajador  string
	FechaTexto  string // venue date already formatted for display
	GeneradoEn  string
}

// RenderLiquidacionPDF renders the receipt in memory.
func RenderLiquidacionPDF(r ReciboLiquidacion) ([]byte, error) {
	pdf := buildLiquidacionPDF(r)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateLiquidacionPDF writes the receipt to storagePath/liquidacion_{fecha}_{id}.pdf
// and returns the file path.
func GenerateLiquidacionPDF(r ReciboLiquidacion, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	fileName := fmt.Sprintf("liquidacion_%s_%s.pdf", r.Liquidacion.Fecha, r.Liquidacion.ID.String()[:8])
	filePath := filepath.Join(storagePath, fileName)

	pdf := buildLiquidacionPDF(r)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func buildLiquidacionPDF(r ReciboLiquidacion) *fpdf.Fpdf {
	l := r.Liquidacion

	// 80mm wide, tall enough for a dozen products
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 200},
	})
	pdf.SetMargins(5, 5, 5)
	pdf.SetAutoPageBreak(true, 5)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 10
	colLabel := contentW * 0.6
	colValor := contentW * 0.4

	fila := func(label, valor string) {
		pdf.CellFormat(colLabel, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(colValor, 5, tr(valor), "", 1, "R", false, 0, "")
	}
	separador := func() {
		pdf.Ln(1)
		pdf.Line(5, pdf.GetY(), pageW-5, pdf.GetY())
		pdf.Ln(2)
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "Dino Play", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr("Liquidación de turno"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 8)
	fila("Trabajador:", r.Trabajador)
	fila("Fecha:", r.FechaTexto)
	separador()

	// ── Counters ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Conteos", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	fila("Fichas iniciales", fmt.Sprintf("%d", l.FichasIniciales))
	fila("Fichas finales", fmt.Sprintf("%d", l.FichasFinales))
	fila("Fichas consumidas", fmt.Sprintf("%d", max(0, l.FichasIniciales-l.FichasFinales)))
	fila("Usos VR", fmt.Sprintf("%d", l.UsosVR))
	fila("Cupones arcade", fmt.Sprintf("%d", l.CuponesArcade))
	fila("Cupones VR", fmt.Sprintf("%d", l.CuponesVR))
	separador()

	// ── Sales ────────────────────────────────────────────────────────────────
	fila("Ventas arcade", liquidacion.FormatearCOP(l.VentasArcade))
	fila("Ventas VR", liquidacion.FormatearCOP(l.VentasVR))
	fila("Ventas productos", liquidacion.FormatearCOP(l.VentasProductos))
	fila("Total vendido", liquidacion.FormatearCOP(l.TotalVendido))
	pdf.SetFont("Helvetica", "B", 10)
	fila("GANANCIA NETA", liquidacion.FormatearCOP(l.GananciaNeta))
	pdf.SetFont("Helvetica", "", 7)
	fila("Base de caja", liquidacion.FormatearCOP(l.MontoBase))
	fila("Nequi", liquidacion.FormatearCOP(l.DepositosNequi))

	// ── Products ─────────────────────────────────────────────────────────────
	if len(l.Productos) > 0 {
		separador()
		col1 := contentW * 0.46
		col2 := contentW * 0.18
		col3 := contentW * 0.36
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "Vend.", "B", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "Quedan", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		for _, p := range l.Productos {
			nombre := []rune(p.Nombre)
			if len(nombre) > 20 {
				nombre = append(nombre[:19], '.')
			}
			pdf.CellFormat(col1, 5, tr(string(nombre)), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, fmt.Sprintf("%d", p.Vendidas()), "", 0, "C", false, 0, "")
			pdf.CellFormat(col3, 5, fmt.Sprintf("%d / %d", p.CantidadFinal, p.CantidadInicial), "", 1, "R", false, 0, "")
		}
	}

	// ── Checklist ────────────────────────────────────────────────────────────
	if c := l.Checklist; c != nil {
		separador()
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(contentW, 5, "Checklist de cierre", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		fila("Máquinas desconectadas", marca(c.MaquinasDesconectadas))
		fila("Máquinas limpias", marca(c.MaquinasLimpias))
		fila("Piso barrido", marca(c.PisoBarrido))
		fila("Aviso recogido", marca(c.AvisoRecogido))
	}

	if l.NotasCierre != nil && *l.NotasCierre != "" {
		separador()
		pdf.SetFont("Helvetica", "I", 7)
		pdf.MultiCell(contentW, 4, tr(*l.NotasCierre), "", "L", false)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 6)
	pdf.CellFormat(contentW, 4, tr("Generado "+r.GeneradoEn), "", 1, "C", false, 0, "")
	return pdf
}

func marca(ok bool) string {
	if ok {
		return "Sí"
	}
	return "No"
}
