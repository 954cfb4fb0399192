package callbacks

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"

	"stockadvisor/internal/metrics"
	"stockadvisor/pkg/logger"
)

// TokenCountingCallback records prompt and completion tokens per agent.
func TokenCountingCallback(modelName string) llmagent.AfterModelCallback {
	return func(ctx agent.CallbackContext, resp *model.LLMResponse, respErr error) (*model.LLMResponse, error) {
		if respErr != nil || resp == nil || resp.UsageMetadata == nil {
			return resp, respErr
		}

		logger.Get().With("component", "token_counter").Debugf("Tokens used: agent=%s prompt=%d completion=%d total=%d",
			ctx.AgentName(),
			resp.UsageMetadata.PromptTokenCount,
			resp.UsageMetadata.CandidatesTokenCount,
			resp.UsageMetadata.TotalTokenCount,
		)

		metrics.RecordTokens(ctx.AgentName(), modelName,
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)

		return resp, nil
	}
}
