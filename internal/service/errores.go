package service

import "errors"

// Sentinel errors mapped to HTTP status codes by the handlers.
var (
	ErrCredenciales         = errors.New("credenciales invalidas")
	ErrSesionInvalida       = errors.New("sesion invalida o expirada")
	ErrNoEncontrado         = errors.New("recurso no encontrado")
	ErrFechaInvalida        = errors.New("fecha invalida, se espera YYYY-MM-DD")
	ErrEmailEnUso           = errors.New("el email ya esta registrado")
	ErrSinConfiguracion     = errors.New("no hay configuracion para hoy")
	ErrLiquidacionDuplicada = errors.New("ya existe una liquidacion de este trabajador para la fecha")
	ErrChecklistIncompleto  = errors.New("el checklist de cierre debe estar completo")
	ErrFichasRequeridas     = errors.New("fichas_finales es obligatorio")
	ErrProductoRepetido     = errors.New("hay productos con el mismo nombre")
)
