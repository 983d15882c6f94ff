package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/car1087/dinoplay-2-0/internal/apierror"
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"
	"github.com/car1087/dinoplay-2-0/internal/middleware"
	"github.com/car1087/dinoplay-2-0/internal/repository"
	"github.com/car1087/dinoplay-2-0/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Let min=0 and friends work on decimal.Decimal fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate binds the JSON body and runs the validator tags.
// On failure it writes 400 (malformed JSON) or 422 (field map) and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// sesion returns the caller. Routes using it are always behind JWTAuth.
func sesion(c *gin.Context) *middleware.Sesion {
	s := middleware.GetSesion(c)
	if s == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
	}
	return s
}

// responderError maps domain errors to status codes. Anything unknown is
// logged and answered with a generic 500.
func responderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCredenciales), errors.Is(err, service.ErrSesionInvalida):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoEncontrado), errors.Is(err, liquidacion.ErrIndiceInvalido):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrLiquidacionDuplicada), errors.Is(err, service.ErrEmailEnUso),
		errors.Is(err, liquidacion.ErrSinStock), errors.Is(err, liquidacion.ErrSinPropuesta),
		errors.Is(err, repository.ErrTurnoOcupado):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrChecklistIncompleto), errors.Is(err, service.ErrFechaInvalida),
		errors.Is(err, service.ErrRangoInvalido):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSinConfiguracion):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrFichasRequeridas):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCampo("fichas_finales", "required"))
	case errors.Is(err, service.ErrProductoRepetido):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCampo("productos", "unique"))
	case errors.Is(err, liquidacion.ErrConteoNegativo):
		campo := strings.TrimPrefix(err.Error(), liquidacion.ErrConteoNegativo.Error()+": ")
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCampo(campo, "min"))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("handler error")
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
