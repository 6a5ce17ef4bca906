package handler

import (
	"github.com/gin-gonic/gin"

	"story-engine-api/internal/application/engine"
	"story-engine-api/internal/domain/repository"
	"story-engine-api/internal/interfaces/http/dto"
)

// CampaignHandler 剧本目录处理器
type CampaignHandler struct {
	engine engine.NarrativeEngine
}

// NewCampaignHandler 创建剧本目录处理器
func NewCampaignHandler(eng engine.NarrativeEngine) *CampaignHandler {
	return &CampaignHandler{engine: eng}
}

// ListCampaigns 获取剧本列表
// @Summary 获取剧本列表
// @Description 分页列出可用剧本
// @Tags Campaigns
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[[]dto.CampaignResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.engine.ListCampaigns(ctx, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(ctx, c, err, "failed to list campaigns")
		return
	}

	resp := dto.ToCampaignListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetCampaign 获取剧本详情
// @Summary 获取剧本详情
// @Description 按代码获取单个剧本
// @Tags Campaigns
// @Produce json
// @Param code path string true "剧本代码"
// @Success 200 {object} dto.Response[dto.CampaignResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/campaigns/{code} [get]
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	ctx := c.Request.Context()
	code := dto.BindCampaignCode(c)

	campaign, err := h.engine.GetCampaign(ctx, code)
	if err != nil {
		respondError(ctx, c, err, "failed to get campaign")
		return
	}
	dto.Success(c, dto.ToCampaignResponse(campaign))
}

// Leaderboard 获取剧本业力排行榜
// @Summary 获取业力排行榜
// @Description 返回剧本内各房间的业力排行
// @Tags Campaigns
// @Produce json
// @Param code path string true "剧本代码"
// @Param limit query int false "条数上限" default(10)
// @Success 200 {object} dto.Response[[]dto.LeaderboardEntryResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/campaigns/{code}/leaderboard [get]
func (h *CampaignHandler) Leaderboard(c *gin.Context) {
	ctx := c.Request.Context()
	code := dto.BindCampaignCode(c)
	limit := dto.BindLimit(c, 10, 100)

	entries, err := h.engine.Leaderboard(ctx, code, limit)
	if err != nil {
		respondError(ctx, c, err, "failed to load leaderboard")
		return
	}
	dto.Success(c, dto.ToLeaderboardResponse(entries))
}
