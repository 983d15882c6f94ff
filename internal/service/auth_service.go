package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/config"
	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenAcceso   = "access"
	TokenRefresco = "refresh"

	bcryptCost = 12
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// Logout revokes every token of the user by bumping its token version.
	Logout(ctx context.Context, usuarioID uuid.UUID) error
	Sesion(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionResponse, error)
	CrearTrabajador(ctx context.Context, req dto.CrearTrabajadorRequest) (*dto.UsuarioResponse, error)
	ListarTrabajadores(ctx context.Context) ([]dto.UsuarioResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, activo bool) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo      repository.UsuarioRepository
	versiones repository.VersionStore
	cfg       *config.Config
	now       func() time.Time
}

func NewAuthService(repo repository.UsuarioRepository, versiones repository.VersionStore, cfg *config.Config) AuthService {
	return &authService{repo: repo, versiones: versiones, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredenciales
		}
		return nil, err
	}
	if !user.Activo {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	return s.emitirTokens(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSesionInvalida
	}
	if tipo, _ := claims["tipo"].(string); tipo != TokenRefresco {
		return nil, ErrSesionInvalida
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrSesionInvalida
	}
	ver, _ := claims["ver"].(float64)

	actual, err := s.versiones.Actual(ctx, uid)
	if err != nil {
		return nil, err
	}
	if int64(ver) != actual {
		return nil, ErrSesionInvalida
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, ErrSesionInvalida
	}
	return s.emitirTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, usuarioID uuid.UUID) error {
	_, err := s.versiones.Incrementar(ctx, usuarioID)
	return err
}

func (s *authService) Sesion(ctx context.Context, usuarioID uuid.UUID) (*dto.SesionResponse, error) {
	user, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSesionInvalida
		}
		return nil, err
	}
	return &dto.SesionResponse{
		Usuario: toUsuarioResponse(user),
		EsAdmin: user.Rol == model.RolAdmin,
	}, nil
}

func (s *authService) CrearTrabajador(ctx context.Context, req dto.CrearTrabajadorRequest) (*dto.UsuarioResponse, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		NombreCompleto: strings.TrimSpace(req.NombreCompleto),
		Telefono:       req.Telefono,
		PasswordHash:   hash,
		Rol:            model.RolTrabajador,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrEmailEnUso
		}
		return nil, fmt.Errorf("crear trabajador: %w", err)
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) ListarTrabajadores(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.ListByRol(ctx, model.RolTrabajador)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = toUsuarioResponse(&users[i])
	}
	return resp, nil
}

// CambiarEstado toggles a worker account. Deactivation also revokes its tokens.
func (s *authService) CambiarEstado(ctx context.Context, id uuid.UUID, activo bool) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	if user.Rol != model.RolTrabajador {
		return nil, ErrNoEncontrado
	}
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		return nil, err
	}
	if !activo {
		if _, err := s.versiones.Incrementar(ctx, id); err != nil {
			return nil, fmt.Errorf("revocar tokens: %w", err)
		}
	}
	user.Activo = activo
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) emitirTokens(ctx context.Context, user *model.Usuario) (*dto.LoginResponse, error) {
	ver, err := s.versiones.Actual(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	accessToken, err := s.generateToken(user, ver, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, ver, TokenRefresco, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toUsuarioResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, ver int64, tipo string, duration time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"rol":     user.Rol,
		"ver":     ver,
		"tipo":    tipo,
		"jti":     uuid.NewString(),
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:             u.ID.String(),
		Email:          u.Email,
		NombreCompleto: u.NombreCompleto,
		Telefono:       u.Telefono,
		Rol:            u.Rol,
		Activo:         u.Activo,
	}
}

// HashPassword is shared with the seed and genhash commands.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
