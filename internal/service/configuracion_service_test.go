package service

import (
	"context"
	"testing"

	"github.com/car1087/dinoplay-2-0/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguracion_ObtenerVacia(t *testing.T) {
	svc := NewConfiguracionService(newFakeConfigs(), TarifasPorDefecto())

	resp, err := svc.Obtener(context.Background(), hoyPrueba)
	require.NoError(t, err)
	assert.Nil(t, resp)

	_, err = svc.Obtener(context.Background(), "2026-13-01")
	assert.ErrorIs(t, err, ErrFechaInvalida)
}

func TestConfiguracion_GuardarDescartaNombresVacios(t *testing.T) {
	ctx := context.Background()
	repo := newFakeConfigs()
	svc := NewConfiguracionService(repo, TarifasPorDefecto())

	fichas := 120
	apertura := "10:00"
	resp, err := svc.Guardar(ctx, hoyPrueba, uuid.New(), dto.GuardarConfiguracionRequest{
		MontoBase:       decimal.NewFromInt(100000),
		FichasIniciales: &fichas,
		HoraApertura:    &apertura,
		Productos: []dto.ProductoPersonalizadoRequest{
			{Nombre: " Llaveros ", CantidadInicial: 5, PrecioUnitario: decimal.NewFromInt(2500)},
			{Nombre: "   ", CantidadInicial: 3, PrecioUnitario: decimal.NewFromInt(1000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", resp.HoraApertura)
	assert.Equal(t, "21:00", resp.HoraCierre)
	require.Len(t, resp.Productos, 1)
	assert.Equal(t, "Llaveros", resp.Productos[0].Nombre)

	// Saving again replaces the product list.
	resp2, err := svc.Guardar(ctx, hoyPrueba, uuid.New(), dto.GuardarConfiguracionRequest{
		MontoBase:       decimal.NewFromInt(80000),
		FichasIniciales: &fichas,
	})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, resp2.ID)

	got, err := svc.Obtener(ctx, hoyPrueba)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Productos)
	assert.Equal(t, "80000", got.MontoBase.String())
	assert.Equal(t, 2, repo.guardar)
}

func TestConfiguracion_GuardarRechazaNombresRepetidos(t *testing.T) {
	repo := newFakeConfigs()
	svc := NewConfiguracionService(repo, TarifasPorDefecto())

	fichas := 100
	_, err := svc.Guardar(context.Background(), hoyPrueba, uuid.New(), dto.GuardarConfiguracionRequest{
		MontoBase:       decimal.NewFromInt(50000),
		FichasIniciales: &fichas,
		Productos: []dto.ProductoPersonalizadoRequest{
			{Nombre: "Agua", CantidadInicial: 5, PrecioUnitario: decimal.NewFromInt(2000)},
			{Nombre: " agua ", CantidadInicial: 5, PrecioUnitario: decimal.NewFromInt(3000)},
		},
	})
	assert.ErrorIs(t, err, ErrProductoRepetido)
	assert.Zero(t, repo.guardar)

	got, err := svc.Obtener(context.Background(), hoyPrueba)
	require.NoError(t, err)
	assert.Nil(t, got)
}
