package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vincentnocera/residencyhours/config"
	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/pkg/jwt"
)

func setupAuthService(t *testing.T) (AuthService, *testWeekRepos, *jwt.Manager) {
	t.Helper()
	repos := newTestWeekRepos()
	seedWeekData(repos)

	cfg := testConfig()
	cfg.Auth = config.AuthConfig{
		JWTSecret:               "unit-test-secret-0123456789",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 30 * 24 * time.Hour,
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	repos.profile.profiles["res-1"].PasswordHash = string(hash)

	svc := NewAuthService(cfg, repos.toRepository(), jwtMgr, nil, zap.NewNop())
	return svc, repos, jwtMgr
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, jwtMgr := setupAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "res1@hospital.test",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.User.ID != "res-1" || resp.User.Role != model.RoleResident {
		t.Errorf("用户信息不符: %+v", resp.User)
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in 不符: %d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("解析 access token 失败: %v", err)
	}
	if claims.UserID != "res-1" || claims.TokenType != "access" || claims.ProgramID != "prog-1" {
		t.Errorf("claims 不符: %+v", claims)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "res1@hospital.test",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@hospital.test",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repos, _ := setupAuthService(t)

	first := "丽"
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "new@hospital.test",
		Password:  "password123",
		FirstName: &first,
		ProgramID: strPtr("prog-1"),
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	created, err := repos.profile.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("注册后查询失败: %v", err)
	}
	if created.Role != model.RoleResident {
		t.Errorf("注册默认角色应为 resident, got %s", created.Role)
	}
	if created.PasswordHash == "password123" {
		t.Error("密码不应明文存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")); err != nil {
		t.Error("存储的哈希应能校验原密码")
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "res1@hospital.test",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("期望 ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_ProgramNotFound(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "new@hospital.test",
		Password:  "password123",
		ProgramID: strPtr("prog-nope"),
	})
	if !errors.Is(err, ErrProgramNotFound) {
		t.Fatalf("期望 ErrProgramNotFound, got %v", err)
	}
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, _, jwtMgr := setupAuthService(t)

	refresh, err := jwtMgr.GenerateRefreshToken("res-1", model.RoleResident, "prog-1", false)
	if err != nil {
		t.Fatalf("生成 refresh token 失败: %v", err)
	}

	resp, err := svc.RefreshToken(context.Background(), &dto.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("刷新应返回新的 token 对")
	}
	if resp.User.ID != "res-1" {
		t.Errorf("用户不符: %+v", resp.User)
	}
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, _, jwtMgr := setupAuthService(t)

	access, err := jwtMgr.GenerateAccessToken("res-1", model.RoleResident, "prog-1")
	if err != nil {
		t.Fatalf("生成 access token 失败: %v", err)
	}

	_, err = svc.RefreshToken(context.Background(), &dto.RefreshRequest{RefreshToken: access})
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("access token 不应能刷新, got %v", err)
	}
}

func TestAuthService_Logout_NoRedisIsNoop(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	if err := svc.Logout(context.Background(), nil, ""); err != nil {
		t.Fatalf("无 Redis 时登出应静默成功: %v", err)
	}
}
