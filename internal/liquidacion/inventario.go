package liquidacion

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrIndiceInvalido = errors.New("producto inexistente")
	ErrSinStock       = errors.New("producto sin stock disponible")
	ErrSinPropuesta   = errors.New("no hay una venta pendiente de confirmar")
)

// ItemInventario is one ad-hoc product of the day as seen during a shift.
type ItemInventario struct {
	Nombre          string          `json:"nombre"`
	CantidadInicial int             `json:"cantidad_inicial"`
	CantidadVendida int             `json:"cantidad_vendida"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
}

// Disponibles is the remaining stock.
func (it ItemInventario) Disponibles() int {
	return it.CantidadInicial - it.CantidadVendida
}

// Agotado reports whether selling is disabled for the item.
func (it ItemInventario) Agotado() bool {
	return it.CantidadVendida >= it.CantidadInicial
}

// ProductoVendido is the snapshot written with a settlement.
type ProductoVendido struct {
	Nombre          string
	CantidadInicial int
	CantidadFinal   int
	PrecioUnitario  decimal.Decimal
}

// Inventario tracks sales of the day's products. A sale is two-phase:
// Proponer marks the index, Confirmar applies a single unit. Sold quantity
// never exceeds the initial quantity.
type Inventario struct {
	Items     []ItemInventario `json:"items"`
	Pendiente *int             `json:"pendiente,omitempty"`
}

// Proponer records index i as the pending sale.
func (inv *Inventario) Proponer(i int) error {
	if i < 0 || i >= len(inv.Items) {
		return ErrIndiceInvalido
	}
	if inv.Items[i].Agotado() {
		return ErrSinStock
	}
	inv.Pendiente = &i
	return nil
}

// Confirmar applies the pending sale and clears it.
func (inv *Inventario) Confirmar() (ItemInventario, error) {
	if inv.Pendiente == nil {
		return ItemInventario{}, ErrSinPropuesta
	}
	i := *inv.Pendiente
	inv.Pendiente = nil
	if i < 0 || i >= len(inv.Items) {
		return ItemInventario{}, ErrIndiceInvalido
	}
	if inv.Items[i].Agotado() {
		return inv.Items[i], ErrSinStock
	}
	inv.Items[i].CantidadVendida++
	return inv.Items[i], nil
}

// Cancelar discards the pending sale, if any.
func (inv *Inventario) Cancelar() {
	inv.Pendiente = nil
}

// TotalVentas is Σ sold × unit price over all items.
func (inv *Inventario) TotalVentas() decimal.Decimal {
	total := decimal.Zero
	for _, it := range inv.Items {
		total = total.Add(it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.CantidadVendida))))
	}
	return total
}

// Snapshot returns one entry per product with a non-blank name.
func (inv *Inventario) Snapshot() []ProductoVendido {
	out := make([]ProductoVendido, 0, len(inv.Items))
	for _, it := range inv.Items {
		if strings.TrimSpace(it.Nombre) == "" {
			continue
		}
		out = append(out, ProductoVendido{
			Nombre:          it.Nombre,
			CantidadInicial: it.CantidadInicial,
			CantidadFinal:   it.CantidadInicial - it.CantidadVendida,
			PrecioUnitario:  it.PrecioUnitario,
		})
	}
	return out
}

// Sincronizar replaces the catalog with items, keeping the units sold of
// products whose name and unit price are unchanged, capped at the new initial
// quantity. A pending sale survives only if the same product is still at its
// index.
func (inv *Inventario) Sincronizar(items []ItemInventario) {
	vendidas := make(map[string]int, len(inv.Items))
	for _, it := range inv.Items {
		vendidas[it.clave()] += it.CantidadVendida
	}
	pendiente := ""
	if p := inv.Pendiente; p != nil && *p >= 0 && *p < len(inv.Items) {
		pendiente = inv.Items[*p].clave()
	}

	nuevos := make([]ItemInventario, len(items))
	for i, it := range items {
		k := it.clave()
		it.CantidadVendida = min(vendidas[k], it.CantidadInicial)
		vendidas[k] -= it.CantidadVendida
		nuevos[i] = it
	}
	inv.Items = nuevos

	if p := inv.Pendiente; p != nil {
		if *p >= len(nuevos) || nuevos[*p].clave() != pendiente || nuevos[*p].Agotado() {
			inv.Pendiente = nil
		}
	}
}

// clave identifies a product across config edits. A repriced product starts
// over with no units sold.
func (it ItemInventario) clave() string {
	return it.Nombre + "\x00" + it.PrecioUnitario.String()
}

// ContadorVR is the informational VR session tally. It is never an input to Calcular.
type ContadorVR struct {
	Usos int `json:"usos"`
}

func (c *ContadorVR) Incrementar() int {
	c.Usos++
	return c.Usos
}

// Decrementar floors the tally at zero.
func (c *ContadorVR) Decrementar() int {
	if c.Usos > 0 {
		c.Usos--
	}
	return c.Usos
}

// Turno is the client-side shift state kept between requests until the
// settlement is saved.
type Turno struct {
	Fecha      string     `json:"fecha"`
	Inventario Inventario `json:"inventario"`
	VR         ContadorVR `json:"vr"`
}

// TotalProductos is the product-sales input for Calcular.
func TotalProductos(items []ItemInventario) decimal.Decimal {
	inv := Inventario{Items: items}
	return inv.TotalVentas()
}
