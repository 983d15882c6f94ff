package infra

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// FilaExportacion is one settlement row of the analytics export.
type FilaExportacion struct {
	Fecha            string
	Trabajador       string
	FichasConsumidas int
	UsosVR           int
	CuponesArcade    int
	CuponesVR        int
	VentasArcade     decimal.Decimal
	VentasVR         decimal.Decimal
	VentasProductos  decimal.Decimal
	TotalVendido     decimal.Decimal
	GananciaNeta     decimal.Decimal
}

// FilaResumen is one day of the analytics daily series.
type FilaResumen struct {
	Fecha         string
	Liquidaciones int
	VentasArcade  decimal.Decimal
	VentasVR      decimal.Decimal
	GananciaNeta  decimal.Decimal
}

const (
	hojaLiquidaciones = "Liquidaciones"
	hojaResumen       = "Resumen diario"
)

// ExportarLiquidacionesXLSX builds a workbook with one sheet of settlements and
// one sheet with the daily series.
func ExportarLiquidacionesXLSX(filas []FilaExportacion, resumen []FilaResumen) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaLiquidaciones); err != nil {
		return nil, fmt.Errorf("excel: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(hojaResumen); err != nil {
		return nil, fmt.Errorf("excel: new sheet: %w", err)
	}

	negrita, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: style: %w", err)
	}
	moneda, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, fmt.Errorf("excel: style: %w", err)
	}

	encabezado := []any{"Fecha", "Trabajador", "Fichas consumidas", "Usos VR", "Cupones arcade",
		"Cupones VR", "Ventas arcade", "Ventas VR", "Ventas productos", "Total vendido", "Ganancia neta"}
	if err := escribirFila(f, hojaLiquidaciones, 1, encabezado); err != nil {
		return nil, err
	}
	for i, fila := range filas {
		valores := []any{fila.Fecha, fila.Trabajador, fila.FichasConsumidas, fila.UsosVR,
			fila.CuponesArcade, fila.CuponesVR,
			fila.VentasArcade.InexactFloat64(), fila.VentasVR.InexactFloat64(),
			fila.VentasProductos.InexactFloat64(), fila.TotalVendido.InexactFloat64(),
			fila.GananciaNeta.InexactFloat64()}
		if err := escribirFila(f, hojaLiquidaciones, i+2, valores); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(hojaLiquidaciones, "A1", "K1", negrita); err != nil {
		return nil, err
	}
	if len(filas) > 0 {
		if err := f.SetCellStyle(hojaLiquidaciones, "G2", fmt.Sprintf("K%d", len(filas)+1), moneda); err != nil {
			return nil, err
		}
	}

	if err := escribirFila(f, hojaResumen, 1, []any{"Fecha", "Liquidaciones", "Ventas arcade", "Ventas VR", "Ganancia neta"}); err != nil {
		return nil, err
	}
	for i, d := range resumen {
		valores := []any{d.Fecha, d.Liquidaciones, d.VentasArcade.InexactFloat64(),
			d.VentasVR.InexactFloat64(), d.GananciaNeta.InexactFloat64()}
		if err := escribirFila(f, hojaResumen, i+2, valores); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(hojaResumen, "A1", "E1", negrita); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: write: %w", err)
	}
	return buf.Bytes(), nil
}

func escribirFila(f *excelize.File, hoja string, fila int, valores []any) error {
	celda, err := excelize.CoordinatesToCellName(1, fila)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(hoja, celda, &valores); err != nil {
		return fmt.Errorf("excel: fila %d: %w", fila, err)
	}
	return nil
}
