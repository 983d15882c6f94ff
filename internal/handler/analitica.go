package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/car1087/dinoplay-2-0/internal/apierror"
	"github.com/car1087/dinoplay-2-0/internal/service"

	"github.com/gin-gonic/gin"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnaliticaHandler struct{ svc service.AnaliticaService }

func NewAnaliticaHandler(svc service.AnaliticaService) *AnaliticaHandler {
	return &AnaliticaHandler{svc: svc}
}

func queryDias(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("dias", strconv.Itoa(service.DiasAnaliticaDefault))
	dias, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("dias debe ser un numero"))
		return 0, false
	}
	return dias, true
}

// Resumen godoc
// @Summary      Analitica de los ultimos dias
// @Tags         analitica
// @Produce      json
// @Security     BearerAuth
// @Param        dias query int false "Dias hacia atras (1-365)" default(30)
// @Success      200  {object} dto.AnaliticaResponse
// @Router       /v1/analitica [get]
func (h *AnaliticaHandler) Resumen(c *gin.Context) {
	dias, ok := queryDias(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), dias)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Exportar returns the same range as an XLSX download.
func (h *AnaliticaHandler) Exportar(c *gin.Context) {
	dias, ok := queryDias(c)
	if !ok {
		return
	}
	data, err := h.svc.Exportar(c.Request.Context(), dias)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("liquidaciones_%dd.xlsx", dias)))
	c.Data(http.StatusOK, mimeXLSX, data)
}
