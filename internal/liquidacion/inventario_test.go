package liquidacion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventarioDePrueba() *Inventario {
	return &Inventario{Items: []ItemInventario{
		{Nombre: "Llaveros", CantidadInicial: 5, PrecioUnitario: decimal.NewFromInt(2500)},
		{Nombre: "Peluches", CantidadInicial: 2, PrecioUnitario: decimal.NewFromInt(15000)},
	}}
}

func TestInventario_CincoVentasAgotanStock(t *testing.T) {
	inv := inventarioDePrueba()

	for i := 0; i < 5; i++ {
		require.NoError(t, inv.Proponer(0))
		_, err := inv.Confirmar()
		require.NoError(t, err)
	}
	assert.Equal(t, 5, inv.Items[0].CantidadVendida)
	assert.True(t, inv.Items[0].Agotado())

	// A sixth attempt changes nothing.
	assert.ErrorIs(t, inv.Proponer(0), ErrSinStock)
	assert.Nil(t, inv.Pendiente)
	assert.Equal(t, 5, inv.Items[0].CantidadVendida)
}

func TestInventario_ConfirmarSinPropuesta(t *testing.T) {
	inv := inventarioDePrueba()

	_, err := inv.Confirmar()

	assert.ErrorIs(t, err, ErrSinPropuesta)
	assert.Equal(t, 0, inv.Items[0].CantidadVendida)
}

func TestInventario_CancelarNoVende(t *testing.T) {
	inv := inventarioDePrueba()

	require.NoError(t, inv.Proponer(1))
	inv.Cancelar()
	_, err := inv.Confirmar()

	assert.ErrorIs(t, err, ErrSinPropuesta)
	assert.Equal(t, 0, inv.Items[1].CantidadVendida)
}

func TestInventario_IndiceInvalido(t *testing.T) {
	inv := inventarioDePrueba()

	assert.ErrorIs(t, inv.Proponer(-1), ErrIndiceInvalido)
	assert.ErrorIs(t, inv.Proponer(2), ErrIndiceInvalido)
}

func TestInventario_ConfirmarUnaSolaUnidad(t *testing.T) {
	inv := inventarioDePrueba()

	require.NoError(t, inv.Proponer(1))
	item, err := inv.Confirmar()
	require.NoError(t, err)
	_, err = inv.Confirmar()

	assert.ErrorIs(t, err, ErrSinPropuesta)
	assert.Equal(t, 1, item.CantidadVendida)
	assert.Equal(t, 1, inv.Items[1].Disponibles())
}

func TestInventario_TotalYSnapshot(t *testing.T) {
	inv := inventarioDePrueba()
	inv.Items = append(inv.Items, ItemInventario{Nombre: "   ", CantidadInicial: 3, PrecioUnitario: decimal.NewFromInt(1000)})
	inv.Items[0].CantidadVendida = 3
	inv.Items[1].CantidadVendida = 1

	assert.Equal(t, "22500", inv.TotalVentas().String())

	snap := inv.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Llaveros", snap[0].Nombre)
	assert.Equal(t, 5, snap[0].CantidadInicial)
	assert.Equal(t, 2, snap[0].CantidadFinal)
	assert.Equal(t, 1, snap[1].CantidadFinal)
}

func TestContadorVR_NoBajaDeCero(t *testing.T) {
	var c ContadorVR

	assert.Equal(t, 0, c.Decrementar())
	assert.Equal(t, 1, c.Incrementar())
	assert.Equal(t, 2, c.Incrementar())
	assert.Equal(t, 1, c.Decrementar())
	assert.Equal(t, 0, c.Decrementar())
	assert.Equal(t, 0, c.Decrementar())
}

func TestInventario_SincronizarConservaVendidas(t *testing.T) {
	inv := inventarioDePrueba()
	inv.Items[0].CantidadVendida = 4
	inv.Items[1].CantidadVendida = 1
	require.NoError(t, inv.Proponer(1))

	inv.Sincronizar([]ItemInventario{
		{Nombre: "Peluches", CantidadInicial: 2, PrecioUnitario: decimal.NewFromInt(15000)},
		{Nombre: "Llaveros", CantidadInicial: 3, PrecioUnitario: decimal.NewFromInt(2500)},
		{Nombre: "Gorras", CantidadInicial: 4, PrecioUnitario: decimal.NewFromInt(20000)},
	})

	require.Len(t, inv.Items, 3)
	assert.Equal(t, 1, inv.Items[0].CantidadVendida)
	assert.Equal(t, 3, inv.Items[1].CantidadVendida) // capped at the new stock
	assert.Equal(t, 0, inv.Items[2].CantidadVendida)
	// Peluches moved from index 1 to 0, so the proposal is dropped.
	assert.Nil(t, inv.Pendiente)
}

func TestInventario_SincronizarMantienePropuesta(t *testing.T) {
	inv := inventarioDePrueba()
	require.NoError(t, inv.Proponer(0))

	inv.Sincronizar([]ItemInventario{
		{Nombre: "Llaveros", CantidadInicial: 6, PrecioUnitario: decimal.NewFromInt(2500)},
	})

	require.NotNil(t, inv.Pendiente)
	assert.Equal(t, 0, *inv.Pendiente)
}

func TestInventario_SincronizarMismoNombreDistintoPrecio(t *testing.T) {
	items := []ItemInventario{
		{Nombre: "Agua", CantidadInicial: 5, PrecioUnitario: decimal.NewFromInt(2000)},
		{Nombre: "Agua", CantidadInicial: 5, PrecioUnitario: decimal.NewFromInt(3000)},
	}
	inv := &Inventario{Items: append([]ItemInventario(nil), items...)}
	require.NoError(t, inv.Proponer(1))
	_, err := inv.Confirmar()
	require.NoError(t, err)
	require.Equal(t, "3000", inv.TotalVentas().String())

	inv.Sincronizar(items)

	assert.Equal(t, 0, inv.Items[0].CantidadVendida)
	assert.Equal(t, 1, inv.Items[1].CantidadVendida)
	assert.Equal(t, "3000", inv.TotalVentas().String())
	snap := inv.Snapshot()
	assert.Equal(t, 5, snap[0].CantidadFinal)
	assert.Equal(t, 4, snap[1].CantidadFinal)
}

func TestInventario_SincronizarPrecioCambiadoReiniciaVendidas(t *testing.T) {
	inv := inventarioDePrueba()
	inv.Items[0].CantidadVendida = 2

	inv.Sincronizar([]ItemInventario{
		{Nombre: "Llaveros", CantidadInicial: 5, PrecioUnitario: decimal.NewFromInt(3000)},
	})

	assert.Equal(t, 0, inv.Items[0].CantidadVendida)
}

func TestTotalProductos(t *testing.T) {
	items := []ItemInventario{
		{Nombre: "Llaveros", CantidadInicial: 5, CantidadVendida: 3, PrecioUnitario: decimal.NewFromInt(2500)},
		{Nombre: "Peluches", CantidadInicial: 2, CantidadVendida: 1, PrecioUnitario: decimal.NewFromInt(15000)},
	}
	assert.Equal(t, "22500", TotalProductos(items).String())
}
