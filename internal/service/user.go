package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/pkg/jwt"
	"campus-social/pkg/logger"
	"campus-social/pkg/password"

	"go.uber.org/zap"
)

// SearchLimit 用户搜索最多返回条数
const SearchLimit = 20

// AcademicProfile 学籍信息更新请求
type AcademicProfile struct {
	StudentCode string
	Class       string
	Faculty     string
	Course      string
}

// ProfileUpdate 个人资料更新请求
// 姓名为空时保留原值，简介/所在地/兴趣按请求内容覆盖（可清空）
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Bio       string
	Location  string
	Interests string
}

// 资料字段长度上限，与表结构一致
const (
	maxNameLen      = 50
	maxBioLen       = 500
	maxLocationLen  = 100
	maxInterestsLen = 200
)

type UserService struct {
	users       AccountStore
	jwtService  *jwt.JWTService
	suggestions SuggestionInvalidator
}

func NewUserService(users AccountStore, jwtService *jwt.JWTService, suggestions SuggestionInvalidator) *UserService {
	return &UserService{users: users, jwtService: jwtService, suggestions: suggestions}
}

// Register 注册
func (s *UserService) Register(ctx context.Context, username, email, plainPassword, firstName, lastName string) (*model.User, string, error) {
	const op = "register"

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || plainPassword == "" {
		return nil, "", newError(KindInvalidState, op, ErrMissingFields)
	}
	// 密码哈希
	hash, err := password.Hash(plainPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return nil, "", newError(KindInvalidState, op, err)
		}
		return nil, "", err
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", newError(KindInvalidState, op, ErrUserExists)
		}
		logger.Error("创建用户失败", zap.String("username", username), zap.Error(err))
		return nil, "", storeFailure(op, err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Info("用户注册", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login 登录，identifier 可以是用户名或邮箱
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.User, string, error) {
	const op = "login"

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", newError(KindInvalidState, op, ErrMissingFields)
	}
	u, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", newError(KindUnauthorized, op, ErrInvalidCredentials)
		}
		return nil, "", storeFailure(op, err)
	}
	if !u.IsActive || !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", newError(KindUnauthorized, op, ErrInvalidCredentials)
	}
	token, err := s.jwtService.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetByID 获取用户资料（含学籍）
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, "get user", ErrUserNotFound)
		}
		return nil, storeFailure("get user", err)
	}
	return u, nil
}

// Search 搜索用户
func (s *UserService) Search(ctx context.Context, query string) ([]*model.User, error) {
	users, err := s.users.Search(ctx, query, SearchLimit)
	if err != nil {
		logger.Error("搜索用户失败", zap.String("query", query), zap.Error(err))
		return nil, storeFailure("search users", err)
	}
	return users, nil
}

// UpdateAcademicProfile 更新学籍信息，班级/院系变化会影响推荐
func (s *UserService) UpdateAcademicProfile(ctx context.Context, userID uint, p AcademicProfile) (*model.User, error) {
	const op = "update academic profile"

	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	student := &model.Student{
		UserID:      userID,
		StudentCode: strings.TrimSpace(p.StudentCode),
		Class:       strings.TrimSpace(p.Class),
		Faculty:     strings.TrimSpace(p.Faculty),
		Course:      strings.TrimSpace(p.Course),
	}
	if err := s.users.UpsertStudent(ctx, student); err != nil {
		logger.Error("更新学籍失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, storeFailure(op, err)
	}

	s.invalidate(ctx, userID)
	return s.GetByID(ctx, userID)
}

// UpdateProfile 更新个人资料
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, p ProfileUpdate) (*model.User, error) {
	const op = "update profile"

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if first := strings.TrimSpace(p.FirstName); first != "" {
		u.FirstName = first
	}
	if last := strings.TrimSpace(p.LastName); last != "" {
		u.LastName = last
	}
	u.Bio = strings.TrimSpace(p.Bio)
	u.Location = strings.TrimSpace(p.Location)
	u.Interests = strings.TrimSpace(p.Interests)

	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"first_name", u.FirstName, maxNameLen},
		{"last_name", u.LastName, maxNameLen},
		{"bio", u.Bio, maxBioLen},
		{"location", u.Location, maxLocationLen},
		{"interests", u.Interests, maxInterestsLen},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			return nil, newError(KindInvalidState, op, fmt.Errorf("%w: %s", ErrFieldTooLong, f.name))
		}
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		logger.Error("更新个人资料失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, storeFailure(op, err)
	}
	logger.Info("更新个人资料", zap.Uint("user_id", userID))
	return u, nil
}

// invalidate 清除本人推荐缓存，其他用户的缓存依赖 TTL 过期
func (s *UserService) invalidate(ctx context.Context, userIDs ...uint) {
	if s.suggestions == nil {
		return
	}
	s.suggestions.Invalidate(ctx, userIDs...)
}
