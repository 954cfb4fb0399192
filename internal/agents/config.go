package agents

import (
	"time"

	"google.golang.org/adk/model"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/internal/tools"
	"stockadvisor/pkg/templates"
)

// RoleSpec describes one specialist: its agent identity, the tools it may
// use, and the templates for its instruction and prompt.
type RoleSpec struct {
	Role        Role
	AgentName   string
	Description string
	Tools       []string
	// Instruction and Prompt are template IDs; Prompt receives .Topic.
	Instruction string
	Prompt      string
}

// DefaultRoles are the four specialists the advisor consults.
var DefaultRoles = []RoleSpec{
	{
		Role:        RoleTechnical,
		AgentName:   "technical_analyst",
		Description: "Technical analysis of price history and indicators (RSI, MACD, Bollinger Bands, SMA, support and resistance) for a stock symbol.",
		Tools:       []string{tools.StockHistory, tools.TechnicalSummary},
		Instruction: "agents/technical",
		Prompt:      "prompts/technical",
	},
	{
		Role:        RoleNews,
		AgentName:   "news_analyst",
		Description: "Latest news headlines and sentiment for a stock symbol.",
		Tools:       []string{tools.StockNews},
		Instruction: "agents/news",
		Prompt:      "prompts/news",
	},
	{
		Role:        RoleFundamental,
		AgentName:   "fundamental_analyst",
		Description: "Company profile, business model, sector outlook and key metrics for a stock symbol.",
		Tools:       []string{tools.StockProfile, tools.DetailedInfo},
		Instruction: "agents/fundamental",
		Prompt:      "prompts/fundamental",
	},
	{
		Role:        RolePortfolio,
		AgentName:   "portfolio_analyst",
		Description: "Portfolio, ETF and fund advice for an investment goal or question.",
		Tools:       []string{tools.SearchWeb, tools.ETFInfo, tools.StockHistory},
		Instruction: "agents/portfolio",
		Prompt:      "prompts/portfolio",
	},
}

// Config carries everything agents need; there is no global factory.
type Config struct {
	AppName string
	UserID  string
	Mode    string
	Model   model.LLM
	// RunTimeout bounds one Analyze or Run; 0 means unbounded.
	RunTimeout time.Duration
	Templates  *templates.Registry
	Roles      []RoleSpec
}

// ConfigFrom builds an agents Config from application settings.
func ConfigFrom(cfg *config.Config, llm model.LLM) Config {
	return Config{
		AppName:    cfg.App.Name,
		UserID:     cfg.App.UserID,
		Mode:       cfg.LLM.Mode,
		Model:      llm,
		RunTimeout: cfg.LLM.RunTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.AppName == "" {
		c.AppName = "agents"
	}
	if c.UserID == "" {
		c.UserID = "user"
	}
	if c.Mode == "" {
		c.Mode = config.ModeDelegate
	}
	if c.Templates == nil {
		c.Templates = templates.Get()
	}
	if len(c.Roles) == 0 {
		c.Roles = DefaultRoles
	}
	return c
}

func (c Config) modelName() string {
	if c.Model == nil {
		return "none"
	}
	return c.Model.Name()
}
