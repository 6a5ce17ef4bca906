package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"story-engine-api/internal/application/engine"
	"story-engine-api/internal/interfaces/http/dto"
	"story-engine-api/pkg/errors"
	"story-engine-api/pkg/logger"
)

// StoryHandler 叙事引擎处理器，所有房间级操作的 HTTP 入口
type StoryHandler struct {
	engine engine.NarrativeEngine
}

// NewStoryHandler 创建叙事引擎处理器
func NewStoryHandler(eng engine.NarrativeEngine) *StoryHandler {
	return &StoryHandler{engine: eng}
}

// respondError 将领域错误映射为 HTTP 响应；
// 非 AppError 记日志并返回 500，避免内部细节外泄。
func respondError(ctx context.Context, c *gin.Context, err error, fallback string) {
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
			Error:   &dto.ErrorDetail{ErrorCode: string(appErr.Code)},
			TraceID: c.GetString("trace_id"),
		})
		return
	}
	logger.Error(ctx, fallback, err)
	dto.InternalError(c, fallback)
}

// Initialize 初始化房间剧本进度
// @Summary 初始化房间剧本
// @Description 为房间绑定剧本并创建初始进度，重复调用幂等
// @Tags Story
// @Accept json
// @Produce json
// @Param rid path int true "房间 ID"
// @Param body body dto.InitializeRequest true "剧本代码"
// @Success 200 {object} dto.Response[engine.InitResult]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/initialize [post]
func (h *StoryHandler) Initialize(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	var req dto.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.Initialize(ctx, roomID, req.CampaignCode)
	if err != nil {
		respondError(ctx, c, err, "failed to initialize room")
		return
	}
	dto.Success(c, result)
}

// GetState 获取房间叙事状态
// @Summary 获取房间状态
// @Description 返回房间进度与 NPC 关系快照
// @Tags Story
// @Produce json
// @Param rid path int true "房间 ID"
// @Success 200 {object} dto.Response[engine.StateView]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/state [get]
func (h *StoryHandler) GetState(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	state, err := h.engine.GetState(ctx, roomID)
	if err != nil {
		respondError(ctx, c, err, "failed to load room state")
		return
	}
	dto.Success(c, state)
}

// BuildContext 构建模型提示上下文
// @Summary 构建叙事上下文
// @Description 组装送往模型调用方的有界确定性上下文
// @Tags Story
// @Produce json
// @Param rid path int true "房间 ID"
// @Success 200 {object} dto.Response[contextbuilder.PromptContext]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/context [get]
func (h *StoryHandler) BuildContext(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	pc, err := h.engine.BuildContext(ctx, roomID)
	if err != nil {
		respondError(ctx, c, err, "failed to build narrative context")
		return
	}
	dto.Success(c, pc)
}

// PendingDecision 查询当前待决策
// @Summary 查询待决策
// @Description 返回当前待决策及玩家可见选项，不含选项后果
// @Tags Story
// @Produce json
// @Param rid path int true "房间 ID"
// @Success 200 {object} dto.Response[engine.PendingDecisionView]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/pending-decision [get]
func (h *StoryHandler) PendingDecision(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	view, err := h.engine.PendingDecision(ctx, roomID)
	if err != nil {
		respondError(ctx, c, err, "failed to load pending decision")
		return
	}
	dto.Success(c, view)
}

// SubmitDecision 提交决策选项
// @Summary 提交决策
// @Description 解析玩家选择并应用后果，重复提交幂等返回已记录结果
// @Tags Story
// @Accept json
// @Produce json
// @Param rid path int true "房间 ID"
// @Param body body dto.DecisionRequest true "决策与选项"
// @Success 200 {object} dto.Response[engine.DecisionResult]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/decision [post]
func (h *StoryHandler) SubmitDecision(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.SubmitDecision(ctx, roomID, req.DecisionCode, req.OptionID)
	if err != nil {
		respondError(ctx, c, err, "failed to resolve decision")
		return
	}
	dto.Success(c, result)
}

// ProcessTurn 处理叙事回合
// @Summary 处理回合
// @Description 解析模型输出中的标记并应用状态效果，返回干净文本
// @Tags Story
// @Accept json
// @Produce json
// @Param rid path int true "房间 ID"
// @Param body body dto.TurnRequest true "模型原始叙述"
// @Success 200 {object} dto.Response[engine.TurnResult]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/turn [post]
func (h *StoryHandler) ProcessTurn(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	var req dto.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.ProcessTurn(ctx, roomID, req.Narration)
	if err != nil {
		respondError(ctx, c, err, "failed to process turn")
		return
	}
	dto.Success(c, result)
}

// Analyze 分析玩家输入
// @Summary 分析玩家输入
// @Description 对玩家文本做意图与道德倾向的启发式分析
// @Tags Story
// @Accept json
// @Produce json
// @Param rid path int true "房间 ID"
// @Param body body dto.AnalyzeRequest true "玩家消息"
// @Success 200 {object} dto.Response[analyzer.Analysis]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/analyze [post]
func (h *StoryHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	analysis, err := h.engine.Analyze(ctx, roomID, req.Message, req.Character)
	if err != nil {
		respondError(ctx, c, err, "failed to analyze message")
		return
	}
	dto.Success(c, analysis)
}

// Endings 计算结局倾向
// @Summary 计算结局倾向
// @Description 按当前进度计算各结局的百分比倾向，合计 100
// @Tags Story
// @Produce json
// @Param rid path int true "房间 ID"
// @Success 200 {object} dto.Response[dto.EndingsResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid}/endings [get]
func (h *StoryHandler) Endings(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	chances, err := h.engine.CalculateEndings(ctx, roomID)
	if err != nil {
		respondError(ctx, c, err, "failed to calculate endings")
		return
	}
	dto.Success(c, dto.EndingsResponse{Chances: chances})
}

// CleanupRoom 清理房间叙事状态
// @Summary 清理房间
// @Description 删除房间的进度、关系与缓存状态
// @Tags Story
// @Produce json
// @Param rid path int true "房间 ID"
// @Success 204
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/rooms/{rid} [delete]
func (h *StoryHandler) CleanupRoom(c *gin.Context) {
	ctx := c.Request.Context()
	roomID, ok := dto.BindRoomID(c)
	if !ok {
		dto.BadRequest(c, "invalid room id")
		return
	}

	if err := h.engine.Cleanup(ctx, roomID); err != nil {
		respondError(ctx, c, err, "failed to cleanup room")
		return
	}
	dto.NoContent(c)
}
