package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
	"ecs-mentoring/backend/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials  = errors.New("邮箱或密码错误")
	ErrUserInactive        = errors.New("账号已停用")
	ErrInvalidRefreshToken = errors.New("Refresh Token 无效或已过期")
	ErrWrongPassword       = errors.New("当前密码错误")
	ErrRoleMismatch        = fmt.Errorf("%w: 该账号不能以此身份登录", pkgerrors.ErrForbidden)
	ErrUserNotFound        = fmt.Errorf("%w: 用户不存在", pkgerrors.ErrNotFound)
	ErrPasswordPair        = fmt.Errorf("%w: 修改密码需同时提供当前密码和新密码", pkgerrors.ErrInvalidInput)
	ErrPasswordTooShort    = fmt.Errorf("%w: 新密码至少 5 个字符", pkgerrors.ErrInvalidInput)
	ErrNothingToUpdate     = fmt.Errorf("%w: 没有可更新的字段", pkgerrors.ErrInvalidInput)
)

const minPasswordLength = 5

// TokenBlacklist Token 黑名单存储（Redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 将 Access Token 的 JTI 加入黑名单直至其过期；黑名单不可用时仅记录日志
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	UpdateMe(ctx context.Context, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// blacklist 可为 nil（Redis 不可用时降级）
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 账号状态与登录身份
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if req.Role != "" && string(user.Role) != req.Role {
		return nil, ErrRoleMismatch
	}

	// 3. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("检查 Token 黑名单失败，降级放行", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	// 轮换：旧 Refresh Token 作废
	s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	return resp, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	s.revoke(ctx, jti, expiresAt)
	return nil
}

func (s *authService) revoke(ctx context.Context, jti string, expiresAt time.Time) {
	if s.blacklist == nil || jti == "" {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
	}
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile, err := s.profileSummary(ctx, user)
	if err != nil {
		s.logger.Error("查询用户档案失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.UserDetailResponse{
		UserResponse: toUserResponse(user),
		Profile:      profile,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}, nil
}

// profileSummary 按角色读取档案；档案缺失时返回 nil
func (s *authService) profileSummary(ctx context.Context, user *model.User) (*dto.ProfileSummary, error) {
	switch user.Role {
	case model.RoleStudent:
		p, err := s.repo.StudentProfile.GetByUserID(ctx, user.UserID)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &dto.ProfileSummary{
			ID:         p.StudentProfileID,
			Department: p.Department,
			RollNo:     p.RollNo,
			MentorID:   p.MentorID,
			ParentID:   p.ParentID,
		}, nil
	case model.RoleTeacher:
		p, err := s.repo.TeacherProfile.GetByUserID(ctx, user.UserID)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &dto.ProfileSummary{
			ID:               p.TeacherProfileID,
			Department:       p.Department,
			Designation:      p.Designation,
			AssignedStudents: []string(p.AssignedStudents),
		}, nil
	case model.RoleParent:
		p, err := s.repo.ParentProfile.GetByUserID(ctx, user.UserID)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &dto.ProfileSummary{
			ID:             p.ParentProfileID,
			LinkedStudents: []string(p.LinkedStudents),
		}, nil
	}
	return nil, nil
}

// ────────────────────── UpdateMe ──────────────────────

func (s *authService) UpdateMe(ctx context.Context, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	changed := false

	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			user.Name = name
			changed = true
		}
	}
	if req.Gender != nil {
		g := *req.Gender
		user.Gender = &g
		changed = true
	}

	// 修改密码
	if req.CurrentPassword != nil || req.NewPassword != nil {
		if req.CurrentPassword == nil || req.NewPassword == nil || *req.CurrentPassword == "" || *req.NewPassword == "" {
			return nil, ErrPasswordPair
		}
		if len(*req.NewPassword) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.CurrentPassword)); err != nil {
			return nil, ErrWrongPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = string(hash)
		changed = true
	}

	if !changed {
		return nil, ErrNothingToUpdate
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户信息失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ── 辅助函数 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.UserID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		Gender:   u.Gender,
		IsActive: u.IsActive,
	}
}
