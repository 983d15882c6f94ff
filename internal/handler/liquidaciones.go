package handler

import (
	"fmt"
	"net/http"

	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/service"

	"github.com/gin-gonic/gin"
)

type LiquidacionesHandler struct{ svc service.LiquidacionService }

func NewLiquidacionesHandler(svc service.LiquidacionService) *LiquidacionesHandler {
	return &LiquidacionesHandler{svc: svc}
}

// Registrar godoc
// @Summary      Guardar la liquidacion de hoy
// @Description  Calcula y guarda la liquidacion del trabajador con su checklist y el inventario de productos. Una por trabajador y dia.
// @Tags         liquidaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarLiquidacionRequest true "Conteos y checklist"
// @Success      201  {object} dto.LiquidacionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/liquidaciones [post]
func (h *LiquidacionesHandler) Registrar(c *gin.Context) {
	s := sesion(c)
	if s == nil {
		return
	}
	var req dto.RegistrarLiquidacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), s.UsuarioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Liquidaciones recientes
// @Tags         liquidaciones
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.LiquidacionResponse
// @Router       /v1/liquidaciones [get]
func (h *LiquidacionesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarRecientes(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LiquidacionesHandler) Fechas(c *gin.Context) {
	fechas, err := h.svc.ListarFechas(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	if fechas == nil {
		fechas = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"fechas": fechas})
}

// PorFecha answers an empty list when the date has no settlements.
func (h *LiquidacionesHandler) PorFecha(c *gin.Context) {
	resp, err := h.svc.ListarPorFecha(c.Request.Context(), c.Param("fecha"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LiquidacionesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      Comprobante PDF de la liquidacion
// @Tags         liquidaciones
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la liquidacion"
// @Success      200
// @Failure      404  {object} apierror.APIError
// @Router       /v1/liquidaciones/{id}/pdf [get]
func (h *LiquidacionesHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	data, nombre, err := h.svc.PDF(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nombre))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *LiquidacionesHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Configuracion Handler ────────────────────────────────────────────────────

type ConfiguracionHandler struct{ svc service.ConfiguracionService }

func NewConfiguracionHandler(svc service.ConfiguracionService) *ConfiguracionHandler {
	return &ConfiguracionHandler{svc: svc}
}

// Obtener godoc
// @Summary      Configuracion de un dia
// @Description  Devuelve {"configuracion": null} si el dia no esta configurado.
// @Tags         configuracion
// @Produce      json
// @Security     BearerAuth
// @Param        fecha path string true "YYYY-MM-DD"
// @Success      200  {object} dto.ConfiguracionEnvelope
// @Router       /v1/configuracion/{fecha} [get]
func (h *ConfiguracionHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context(), c.Param("fecha"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ConfiguracionEnvelope{Configuracion: resp})
}

// Guardar godoc
// @Summary      Guardar configuracion del dia
// @Description  Crea o actualiza la configuracion y reemplaza la lista de productos.
// @Tags         configuracion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        fecha path string true "YYYY-MM-DD"
// @Param        body body dto.GuardarConfiguracionRequest true "Configuracion"
// @Success      200  {object} dto.ConfiguracionEnvelope
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/configuracion/{fecha} [put]
func (h *ConfiguracionHandler) Guardar(c *gin.Context) {
	s := sesion(c)
	if s == nil {
		return
	}
	var req dto.GuardarConfiguracionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), c.Param("fecha"), s.UsuarioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ConfiguracionEnvelope{Configuracion: resp})
}
