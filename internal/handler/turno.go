package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/car1087/dinoplay-2-0/internal/apierror"
	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TurnoHandler struct{ svc service.TurnoService }

func NewTurnoHandler(svc service.TurnoService) *TurnoHandler { return &TurnoHandler{svc: svc} }

// Estado godoc
// @Summary      Turno de hoy
// @Description  Configuracion del dia, productos con stock restante, contador VR y vista previa de la liquidacion.
// @Tags         turno
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.TurnoResponse
// @Router       /v1/turno [get]
func (h *TurnoHandler) Estado(c *gin.Context) {
	h.responder(c, h.svc.Estado)
}

// ProponerVenta godoc
// @Summary      Proponer venta de un producto
// @Tags         turno
// @Produce      json
// @Security     BearerAuth
// @Param        indice path int true "Posicion del producto"
// @Success      200  {object} dto.TurnoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/turno/productos/{indice}/proponer [post]
func (h *TurnoHandler) ProponerVenta(c *gin.Context) {
	indice, err := strconv.Atoi(c.Param("indice"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Indice invalido"))
		return
	}
	h.responder(c, func(ctx context.Context, id uuid.UUID) (*dto.TurnoResponse, error) {
		return h.svc.ProponerVenta(ctx, id, indice)
	})
}

func (h *TurnoHandler) ConfirmarVenta(c *gin.Context) { h.responder(c, h.svc.ConfirmarVenta) }

func (h *TurnoHandler) CancelarVenta(c *gin.Context) { h.responder(c, h.svc.CancelarVenta) }

func (h *TurnoHandler) IncrementarVR(c *gin.Context) { h.responder(c, h.svc.IncrementarVR) }

func (h *TurnoHandler) DecrementarVR(c *gin.Context) { h.responder(c, h.svc.DecrementarVR) }

// Calcular godoc
// @Summary      Vista previa de la liquidacion
// @Description  Calcula el desglose para los conteos enviados. No guarda nada.
// @Tags         turno
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CalcularRequest true "Conteos del turno"
// @Success      200  {object} liquidacion.Resultado
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/turno/calcular [post]
func (h *TurnoHandler) Calcular(c *gin.Context) {
	s := sesion(c)
	if s == nil {
		return
	}
	var req dto.CalcularRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), s.UsuarioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnoHandler) responder(c *gin.Context, fn func(context.Context, uuid.UUID) (*dto.TurnoResponse, error)) {
	s := sesion(c)
	if s == nil {
		return
	}
	resp, err := fn(c.Request.Context(), s.UsuarioID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
