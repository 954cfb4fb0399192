package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	agentDir := filepath.Join(base, "agents")
	if err := os.MkdirAll(agentDir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}

	tplPath := filepath.Join(agentDir, "technical.tmpl")
	if err := os.WriteFile(tplPath, []byte("Analyze {{.Topic}} at {{price .Price}}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	reg, err := NewRegistry(base)
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	rendered, err := reg.Render("agents/technical", map[string]any{"Topic": "AAPL", "Price": 190.5})
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	if rendered != "Analyze AAPL at 190.50" {
		t.Fatalf("unexpected render result: %s", rendered)
	}

	if _, err := reg.Render("agents/technical", map[string]any{"Price": 1.0}); err == nil {
		t.Fatal("expected missing key to fail rendering")
	}
}

func TestRegistryLazyLoad(t *testing.T) {
	base := t.TempDir()
	reg, err := NewRegistry(base)
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	path := filepath.Join(base, "prompts", "analyze_symbol.tmpl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dirs: %v", err)
	}
	if err := os.WriteFile(path, []byte("Analyze {{.Symbol}}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	rendered, err := reg.Render("prompts/analyze_symbol", map[string]string{"Symbol": "MSFT"})
	if err != nil {
		t.Fatalf("render lazily loaded template: %v", err)
	}
	if rendered != "Analyze MSFT" {
		t.Fatalf("unexpected render output: %s", rendered)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	reg := Get()

	ids := reg.List()
	for _, want := range []string{
		"agents/technical", "agents/news", "agents/fundamental", "agents/portfolio",
		"agents/advisor_flat", "agents/advisor_delegate",
		"prompts/technical", "prompts/portfolio", "prompts/analyze_symbol",
		"tools/technical_summary", "tools/stock_history", "tools/etf_info",
	} {
		found := false
		for _, id := range ids {
			if id == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("embedded template %s missing", want)
		}
	}

	out, err := reg.Render("prompts/fundamental", map[string]string{"Topic": "NVDA"})
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}
	if strings.TrimSpace(out) != "Analyze the company profile for NVDA. What is the business model and sector outlook?" {
		t.Fatalf("unexpected prompt: %q", out)
	}
}

func TestInstructionsHaveNoStatePlaceholders(t *testing.T) {
	reg := Get()
	for _, id := range []string{"agents/technical", "agents/news", "agents/fundamental", "agents/portfolio"} {
		out, err := reg.Render(id, nil)
		if err != nil {
			t.Fatalf("render %s: %v", id, err)
		}
		if strings.ContainsAny(out, "{}") {
			t.Errorf("%s contains braces the agent runtime would treat as state placeholders", id)
		}
	}
}
