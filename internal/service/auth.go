package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"voiceguide-backend/internal/auth"
	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/repository"
)

type AuthService interface {
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	PartnerLogin(ctx context.Context, req *dto.PartnerLoginRequest) (*dto.TokenResponse, error)
	AuthenticateAdmin(ctx context.Context, token string) (*model.Admin, error)
	AuthenticatePartner(ctx context.Context, token string) (*model.Partner, error)
	// BootstrapAdmin creates a superadmin with the given credentials when none
	// exists for the email. It reports whether an admin was created.
	BootstrapAdmin(ctx context.Context, email, password string) (bool, error)
}

type authServiceImpl struct {
	tokens      *auth.Tokens
	adminRepo   repository.AdminRepository
	partnerRepo repository.PartnerRepository
}

func NewAuthService(tokens *auth.Tokens, adminRepo repository.AdminRepository, partnerRepo repository.PartnerRepository) AuthService {
	return &authServiceImpl{tokens: tokens, adminRepo: adminRepo, partnerRepo: partnerRepo}
}

func (s *authServiceImpl) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized("Invalid email or password.")
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if !admin.IsActive {
		return nil, unauthorized("Invalid email or password.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.HashedPassword), []byte(req.Password)); err != nil {
		return nil, unauthorized("Invalid email or password.")
	}

	token, err := s.tokens.IssueAdmin(admin.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("admin logged in", "admin_id", admin.ID)
	return &dto.AdminLoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Admin: dto.AdminOut{
			ID:           admin.ID,
			Email:        admin.Email,
			IsActive:     admin.IsActive,
			IsSuperadmin: admin.IsSuperadmin,
		},
	}, nil
}

func (s *authServiceImpl) PartnerLogin(ctx context.Context, req *dto.PartnerLoginRequest) (*dto.TokenResponse, error) {
	partner, err := s.partnerRepo.FindActiveByLogin(ctx, normalizeEmail(req.Email), strings.TrimSpace(req.ReferralCode))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized("Credenziali partner non valide.")
	}
	if err != nil {
		return nil, fmt.Errorf("find partner: %w", err)
	}

	token, err := s.tokens.IssuePartner(partner.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *authServiceImpl) AuthenticateAdmin(ctx context.Context, token string) (*model.Admin, error) {
	id, err := s.tokens.AdminID(token)
	if errors.Is(err, auth.ErrNotAdmin) {
		return nil, newError(ErrForbidden, "Admin privileges required.")
	}
	if err != nil {
		return nil, unauthorized("Invalid or expired token.")
	}

	admin, err := s.adminRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized("Admin not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if !admin.IsActive {
		return nil, unauthorized("Admin not found.")
	}
	return admin, nil
}

func (s *authServiceImpl) AuthenticatePartner(ctx context.Context, token string) (*model.Partner, error) {
	id, err := s.tokens.PartnerID(token)
	if err != nil {
		return nil, unauthorized("Token non valido o scaduto.")
	}

	partner, err := s.partnerRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized("Partner non trovato o non attivo.")
	}
	if err != nil {
		return nil, fmt.Errorf("find partner: %w", err)
	}
	if !partner.IsActive {
		return nil, unauthorized("Partner non trovato o non attivo.")
	}
	return partner, nil
}

func (s *authServiceImpl) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.adminRepo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &model.Admin{
		Email:          email,
		HashedPassword: string(hashed),
		IsActive:       true,
		IsSuperadmin:   true,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("store admin in db: %w", err)
	}

	slog.Info("bootstrap admin created", "admin_id", admin.ID)
	return true, nil
}
