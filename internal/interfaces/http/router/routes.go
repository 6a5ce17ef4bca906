// Package router 提供 HTTP 路由配置
package router

import (
	"story-engine-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	storyHandler *handler.StoryHandler,
	campaignHandler *handler.CampaignHandler,
) {
	// 房间叙事
	rooms := v1.Group("/rooms")
	{
		rooms.POST("/:rid/initialize", storyHandler.Initialize)
		rooms.GET("/:rid/state", storyHandler.GetState)
		rooms.GET("/:rid/context", storyHandler.BuildContext)
		rooms.GET("/:rid/pending-decision", storyHandler.PendingDecision)
		rooms.POST("/:rid/decision", storyHandler.SubmitDecision)
		rooms.POST("/:rid/turn", storyHandler.ProcessTurn)
		rooms.POST("/:rid/analyze", storyHandler.Analyze)
		rooms.GET("/:rid/endings", storyHandler.Endings)
		rooms.DELETE("/:rid", storyHandler.CleanupRoom)
	}

	// 剧本目录
	campaigns := v1.Group("/campaigns")
	{
		campaigns.GET("", campaignHandler.ListCampaigns)
		campaigns.GET("/:code", campaignHandler.GetCampaign)
		campaigns.GET("/:code/leaderboard", campaignHandler.Leaderboard)
	}
}
