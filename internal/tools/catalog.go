package tools

// Tool names served by the stock data tool server.
const (
	StockHistory     = "get_stock_history"
	TechnicalSummary = "get_technical_summary"
	StockNews        = "get_stock_news"
	StockProfile     = "get_stock_profile"
	DetailedInfo     = "get_detailed_stock_info"
	ETFInfo          = "get_etf_info"
	SearchWeb        = "search_web"
)

// Parameter types understood by the tool server and the bridge.
const (
	TypeString = "string"
	TypeInt    = "integer"
	TypeNumber = "number"
	TypeBool   = "boolean"
)

// Param describes one named tool argument.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     any
}

// Definition describes a tool's metadata for registration and discovery.
type Definition struct {
	Name        string
	Description string
	Params      []Param
}

var symbolParam = Param{Name: "symbol", Type: TypeString, Description: "The stock ticker symbol (e.g., 'AAPL').", Required: true}

// toolDefinitions enumerates the fixed catalog.
var toolDefinitions = []Definition{
	{
		Name:        StockHistory,
		Description: "Fetches historical stock data for a given symbol.",
		Params: []Param{
			symbolParam,
			{Name: "period", Type: TypeString, Description: "The period to fetch data for (e.g., '1d', '5d', '1mo', '3mo', '1y').", Default: "1mo"},
		},
	},
	{
		Name:        TechnicalSummary,
		Description: "Performs a comprehensive technical analysis. Calculates RSI, MACD, Bollinger Bands, and SMA, plus support, resistance and price projections.",
		Params:      []Param{symbolParam},
	},
	{
		Name:        StockNews,
		Description: "Fetches the latest news for a given stock symbol.",
		Params:      []Param{symbolParam},
	},
	{
		Name:        StockProfile,
		Description: "Fetches the company profile for a given stock symbol.",
		Params:      []Param{symbolParam},
	},
	{
		Name:        DetailedInfo,
		Description: "Fetches detailed stock information including current price, ranges, and key metrics.",
		Params:      []Param{symbolParam},
	},
	{
		Name:        ETFInfo,
		Description: "Fetches detailed information for an ETF, including category, expense ratio and total assets.",
		Params:      []Param{{Name: "symbol", Type: TypeString, Description: "The ETF ticker symbol.", Required: true}},
	},
	{
		Name:        SearchWeb,
		Description: "Performs a web search using DuckDuckGo. Useful for finding popular funds, investor portfolios, or recent news not covered by stock APIs.",
		Params: []Param{
			{Name: "query", Type: TypeString, Description: "The search query string.", Required: true},
			{Name: "max_results", Type: TypeInt, Description: "Maximum number of results to return (default 5).", Default: 5},
		},
	},
}

// Definitions exposes a copy of all tool definitions.
func Definitions() []Definition {
	defs := make([]Definition, len(toolDefinitions))
	copy(defs, toolDefinitions)
	return defs
}

// Lookup returns the definition for name.
func Lookup(name string) (Definition, bool) {
	for _, def := range toolDefinitions {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// RegisterAllTools registers every catalog tool backed by svc.
func RegisterAllTools(registry *Registry, svc *Service) {
	handlers := map[string]HandlerFunc{
		StockHistory:     svc.StockHistory,
		TechnicalSummary: svc.TechnicalSummary,
		StockNews:        svc.StockNews,
		StockProfile:     svc.StockProfile,
		DetailedInfo:     svc.DetailedInfo,
		ETFInfo:          svc.ETFInfo,
		SearchWeb:        svc.SearchWeb,
	}
	for _, def := range toolDefinitions {
		registry.Register(New(def, handlers[def.Name]))
	}
}
