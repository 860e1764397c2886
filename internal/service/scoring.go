package service

import (
	"sort"
	"time"

	"campus-social/internal/model"
)

// 推荐打分权重
const (
	MutualFriendWeight  = 10
	SameClassBonus      = 20
	SameFacultyBonus    = 8
	RecentAccountBonus  = 2
	RecentAccountWindow = 7 * 24 * time.Hour

	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 50
)

// Requester 发起推荐请求的用户画像
type Requester struct {
	Class   string
	Faculty string
	Friends FriendSet
}

// ScoredCandidate 单次推荐计算中的临时结果，不落库
type ScoredCandidate struct {
	User        *model.User
	Score       int
	MutualCount int
}

// ScoreCandidate 计算候选人得分：
// 共同好友每人 +10；同班 +20；同院系但不同班 +8；7 天内注册 +2
func ScoreCandidate(req Requester, candidate *model.User, candidateFriends FriendSet, now time.Time) ScoredCandidate {
	mutual := req.Friends.Intersect(candidateFriends)
	score := mutual * MutualFriendWeight

	class, faculty := candidate.Class(), candidate.Faculty()
	if req.Class != "" && class == req.Class {
		score += SameClassBonus
	}
	// 同班已加分时不再重复计算院系
	if req.Faculty != "" && faculty == req.Faculty && class != req.Class {
		score += SameFacultyBonus
	}
	if now.Sub(candidate.CreatedAt) <= RecentAccountWindow {
		score += RecentAccountBonus
	}

	return ScoredCandidate{User: candidate, Score: score, MutualCount: mutual}
}

// RankCandidates 按得分降序、注册时间降序排序并截取前 limit 个
// 原切片会被重新排序
func RankCandidates(scored []ScoredCandidate, limit int) []ScoredCandidate {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.User.CreatedAt.Equal(b.User.CreatedAt) {
			return a.User.CreatedAt.After(b.User.CreatedAt)
		}
		return a.User.ID < b.User.ID
	})
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
