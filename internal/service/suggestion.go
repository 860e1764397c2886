package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-social/config"
	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/pkg/logger"

	"go.uber.org/zap"
)

// FriendRecord 好友/推荐展示记录
type FriendRecord struct {
	UserID             uint   `json:"user_id"`
	FullName           string `json:"full_name"`
	Avatar             string `json:"avatar"`
	Bio                string `json:"bio"`
	IsFriend           bool   `json:"is_friend"`
	HasPendingRequest  bool   `json:"has_pending_request"`
	MutualFriendsCount int    `json:"mutual_friends_count"`
}

// SuggestionRecord 推荐结果记录
type SuggestionRecord = FriendRecord

// SuggestionService 好友推荐：候选池 -> 打分排序 -> 组装展示记录
type SuggestionService struct {
	users       UserStore
	friendships FriendshipStore
	graph       *SocialGraph
	cache       SuggestionCache
	cfg         config.SuggestionConfig
	now         func() time.Time
}

// NewSuggestionService 创建SuggestionService实例，cache 可为 nil
func NewSuggestionService(users UserStore, friendships FriendshipStore, cache SuggestionCache, cfg config.SuggestionConfig) *SuggestionService {
	return &SuggestionService{
		users:       users,
		friendships: friendships,
		graph:       NewSocialGraph(friendships),
		cache:       cache,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Graph 返回底层社交关系查询
func (s *SuggestionService) Graph() *SocialGraph {
	return s.graph
}

// NormalizeLimit 将请求的条数规范到 [1, MaxSuggestionLimit]
func (s *SuggestionService) NormalizeLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}
	return limit
}

// GetSuggestions 获取用户的好友推荐
// 存储层失败时返回 KindTransientStoreFailure，与“结果为空”区分
func (s *SuggestionService) GetSuggestions(ctx context.Context, userID uint, limit int) ([]SuggestionRecord, error) {
	limit = s.NormalizeLimit(limit)

	if cached, ok := s.fromCache(ctx, userID, limit); ok {
		return cached, nil
	}

	ranked, err := s.rank(ctx, userID, limit)
	if err != nil {
		logger.Error("计算好友推荐失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	records, err := s.assemble(ctx, userID, ranked)
	if err != nil {
		logger.Error("组装好友推荐失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.toCache(ctx, userID, limit, records)
	return records, nil
}

// rank 构建候选池并打分排序
func (s *SuggestionService) rank(ctx context.Context, userID uint, limit int) ([]ScoredCandidate, error) {
	friends, excluded, err := s.graph.Relations(ctx, userID)
	if err != nil {
		return nil, err
	}

	req := Requester{Friends: friends}
	me, err := s.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// 未知用户：没有画像信号，仍按共同好友/注册时间计算
	case err != nil:
		return nil, storeFailure("load requester", err)
	default:
		req.Class, req.Faculty = me.Class(), me.Faculty()
	}

	candidates, err := s.candidatePool(ctx, friends, excluded)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	friendSets, err := s.graph.FriendSetsOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoreCandidate(req, c, friendSets[c.ID], now))
	}
	return RankCandidates(scored, limit), nil
}

// candidatePool 构建候选池：二度好友全部入池，剩余名额按注册时间倒序补足
// PoolCap<=0 时不限制
func (s *SuggestionService) candidatePool(ctx context.Context, friends FriendSet, excluded IDSet) ([]*model.User, error) {
	twoHop, err := s.graph.FriendsOfFriends(ctx, friends, excluded)
	if err != nil {
		return nil, err
	}
	twoHopIDs := twoHop.Slice()
	byID, err := s.users.GetByIDs(ctx, twoHopIDs)
	if err != nil {
		return nil, storeFailure("load friends of friends", err)
	}

	pool := make([]*model.User, 0, len(byID))
	for _, id := range twoHopIDs {
		if u, ok := byID[id]; ok && u.IsActive {
			pool = append(pool, u)
		}
	}

	remaining := 0
	if s.cfg.PoolCap > 0 {
		remaining = s.cfg.PoolCap - len(pool)
		if remaining <= 0 {
			return pool, nil
		}
	}

	skip := NewIDSet(excluded.Slice()...)
	for _, id := range twoHopIDs {
		skip.Add(id)
	}
	recent, err := s.users.ListCandidates(ctx, skip.Slice(), remaining)
	if err != nil {
		return nil, storeFailure("load candidates", err)
	}
	return append(pool, recent...), nil
}

// assemble 将排序结果转换为展示记录，保持排序
func (s *SuggestionService) assemble(ctx context.Context, userID uint, ranked []ScoredCandidate) ([]SuggestionRecord, error) {
	records := make([]SuggestionRecord, 0, len(ranked))
	if len(ranked) == 0 {
		return records, nil
	}

	pendingTargets, err := s.friendships.OutgoingPendingTargets(ctx, userID)
	if err != nil {
		return nil, storeFailure("load pending requests", err)
	}
	pending := NewIDSet(pendingTargets...)

	for _, sc := range ranked {
		records = append(records, SuggestionRecord{
			UserID:             sc.User.ID,
			FullName:           sc.User.FullName(),
			Avatar:             sc.User.AvatarOrDefault(),
			Bio:                DisplayBio(sc.User),
			IsFriend:           false,
			HasPendingRequest:  pending.Has(sc.User.ID),
			MutualFriendsCount: sc.MutualCount,
		})
	}
	return records, nil
}

// DisplayBio 展示用简介：优先个人简介，否则由班级与院系拼接
func DisplayBio(u *model.User) string {
	if strings.TrimSpace(u.Bio) != "" {
		return u.Bio
	}
	var parts []string
	if class := u.Class(); class != "" {
		parts = append(parts, "Class "+class)
	}
	if faculty := u.Faculty(); faculty != "" {
		parts = append(parts, faculty)
	}
	return strings.Join(parts, " · ")
}

// Invalidate 清除用户的推荐缓存
func (s *SuggestionService) Invalidate(ctx context.Context, userIDs ...uint) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := s.cache.InvalidateSuggestions(ctx, userIDs...); err != nil {
		logger.Warn("清除推荐缓存失败", zap.Uints("user_ids", userIDs), zap.Error(err))
	}
}

func (s *SuggestionService) fromCache(ctx context.Context, userID uint, limit int) ([]SuggestionRecord, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return nil, false
	}
	data, err := s.cache.GetSuggestions(ctx, userID, limit)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var records []SuggestionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("推荐缓存数据损坏", zap.Uint("user_id", userID), zap.Error(err))
		return nil, false
	}
	return records, true
}

func (s *SuggestionService) toCache(ctx context.Context, userID uint, limit int, records []SuggestionRecord) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := s.cache.SetSuggestions(ctx, userID, limit, data, s.cfg.CacheTTL); err != nil {
		logger.Debug("写入推荐缓存失败", zap.String("key", fmt.Sprintf("%d/%d", userID, limit)), zap.Error(err))
	}
}
