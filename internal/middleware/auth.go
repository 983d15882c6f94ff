package middleware

import (
	"net/http"
	"strings"

	"github.com/car1087/dinoplay-2-0/internal/apierror"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SesionKey = "sesion"

	tokenAcceso = "access"
)

// JWTClaims are the custom claims embedded in every token.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
	Ver    int64  `json:"ver"`
	Tipo   string `json:"tipo"`
	jwt.RegisteredClaims
}

// Sesion is the authenticated caller of a request.
type Sesion struct {
	UsuarioID uuid.UUID
	Email     string
	Rol       string
}

// JWTAuth validates the Bearer access token and its version stamp. A token
// issued before the last logout or deactivation of its user is rejected.
func JWTAuth(secret string, versiones repository.VersionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Tipo != tokenAcceso {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}
		uid, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		actual, err := versiones.Actual(c.Request.Context(), uid)
		if err != nil {
			log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("auth: token version lookup failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New("Servicio no disponible"))
			return
		}
		if claims.Ver != actual {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sesion cerrada, inicie sesion nuevamente"))
			return
		}

		c.Set(SesionKey, &Sesion{UsuarioID: uid, Email: claims.Email, Rol: claims.Rol})
		c.Next()
	}
}

// RequireRole rejects requests whose session role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		s := GetSesion(c)
		if s == nil || !allowed[s.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetSesion returns the session set by JWTAuth, or nil on public routes.
func GetSesion(c *gin.Context) *Sesion {
	v, ok := c.Get(SesionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Sesion)
	return s
}
