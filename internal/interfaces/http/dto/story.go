package dto

import (
	"story-engine-api/internal/domain/entity"
	redisstore "story-engine-api/internal/infrastructure/persistence/redis"
)

// InitializeRequest 房间初始化请求
type InitializeRequest struct {
	CampaignCode string `json:"campaign_code" binding:"required"`
}

// TurnRequest 回合处理请求，Narration 为模型原始输出
type TurnRequest struct {
	Narration string `json:"narration" binding:"required"`
}

// DecisionRequest 决策提交请求
type DecisionRequest struct {
	DecisionCode string `json:"decision_code" binding:"required"`
	OptionID     string `json:"option_id" binding:"required"`
}

// AnalyzeRequest 玩家输入分析请求
type AnalyzeRequest struct {
	Message   string `json:"message" binding:"required"`
	Character string `json:"character,omitempty"`
}

// CampaignResponse 剧本目录条目
type CampaignResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tone        string `json:"tone"`
	Difficulty  string `json:"difficulty,omitempty"`
	TotalActs   int    `json:"total_acts"`
}

// ToCampaignResponse 转换剧本实体为响应
func ToCampaignResponse(c *entity.Campaign) CampaignResponse {
	return CampaignResponse{
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		Tone:        string(c.Tone),
		Difficulty:  c.Difficulty,
		TotalActs:   c.TotalActs,
	}
}

// ToCampaignListResponse 转换剧本列表
func ToCampaignListResponse(items []*entity.Campaign) []CampaignResponse {
	out := make([]CampaignResponse, 0, len(items))
	for _, c := range items {
		out = append(out, ToCampaignResponse(c))
	}
	return out
}

// EndingsResponse 结局倾向响应，百分比合计为 100
type EndingsResponse struct {
	Chances map[string]int `json:"chances"`
}

// LeaderboardEntryResponse 业力排行榜条目
type LeaderboardEntryResponse struct {
	RoomID int64 `json:"room_id"`
	Karma  int   `json:"karma"`
}

// ToLeaderboardResponse 转换排行榜条目
func ToLeaderboardResponse(entries []redisstore.LeaderboardEntry) []LeaderboardEntryResponse {
	out := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LeaderboardEntryResponse{RoomID: e.RoomID, Karma: e.Karma})
	}
	return out
}
