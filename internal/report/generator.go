// Package report turns a market snapshot and curated articles into the
// markdown report, narration script, and subtitle artifacts.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/llm"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/runlog"
	"github.com/bikkkubo/news-bot/internal/trace"
	"github.com/bikkkubo/news-bot/internal/types"
)

// maxDeepDives caps the number of per-article analysis calls per run.
const maxDeepDives = 15

// Generator produces the run artifacts. One instance per run; stages
// run strictly in order and each prompt only sees earlier outputs.
type Generator struct {
	llm interfaces.Generator
	rl  *runlog.Logger
	now func() time.Time
}

func NewGenerator(gen interfaces.Generator, rl *runlog.Logger) *Generator {
	return &Generator{llm: gen, rl: rl, now: time.Now}
}

// Report builds the full markdown report. A market overview or
// conclusion failure aborts; a single deep-dive failure degrades to a
// placeholder section.
func (g *Generator) Report(ctx context.Context, points map[string]types.MarketPoint, articles []types.Article) (string, error) {
	ctx, span := trace.StartSpan(ctx, "report-generate")
	defer span.End()

	g.rl.Log("Starting report generation")

	if len(articles) > maxDeepDives {
		articles = articles[:maxDeepDives]
	}

	themes := g.extractThemes(ctx, articles)

	overview, err := g.marketOverview(ctx, points, themes)
	if err != nil {
		return "", fmt.Errorf("generating market overview: %w", err)
	}

	newsSection := g.newsSection(ctx, articles)

	conclusion, err := g.conclusion(ctx, articles, themes)
	if err != nil {
		return "", fmt.Errorf("generating conclusion: %w", err)
	}

	today := g.now().Format("2006年01月02日")
	report := fmt.Sprintf(`# 市場レポート
発行日: %s

---

%s

---

%s

---

%s

以上
`, today, overview, newsSection, conclusion)

	g.rl.Log("Report generation completed")
	return report, nil
}

// extractThemes asks for the 2-3 causal themes running through the
// curated headlines. Best effort; an unparseable response degrades to
// no themes rather than failing the run.
func (g *Generator) extractThemes(ctx context.Context, articles []types.Article) []string {
	if len(articles) == 0 {
		return nil
	}

	var titles strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&titles, "- %s\n", a.Title)
	}

	prompt := fmt.Sprintf(`Identify the 2-3 overarching themes connecting today's financial news headlines.
Focus on causal market drivers (e.g., rate policy, AI capex, earnings season), not topics.

Headlines:
%s
Output format: {"themes": ["theme 1", "theme 2"]}`, titles.String())

	var out struct {
		Themes []string `json:"themes"`
	}
	if err := g.llm.GenerateJSON(ctx, prompt, llm.FactExtractionSystemPrompt(), &out); err != nil {
		g.rl.Warn("Theme extraction failed, continuing without themes")
		logger.Warn(ctx, "Theme extraction failed", "error", err)
		return nil
	}
	return out.Themes
}

func (g *Generator) marketOverview(ctx context.Context, points map[string]types.MarketPoint, themes []string) (string, error) {
	g.rl.Log("Generating market overview")

	keys := make([]string, 0, len(points))
	for k := range points {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var summary strings.Builder
	for _, k := range keys {
		p := points[k]
		fmt.Fprintf(&summary, "%s: %.2f (前日比: %.2f, %.2f%%)\n", p.Name, p.Close, p.Change, p.ChangePct)
	}

	prompt := fmt.Sprintf(`Based on the following stock market data, write a concise market overview analysis for the US and Japanese markets.
Include a table for US markets and a table for the Japanese market.

Data:
%s
%s
Requirements:
- Use specific market names (e.g., "ナスダック総合指数").
- Analyze the trends briefly.
- Output in Markdown format.`, summary.String(), themeBlock(themes))

	return g.llm.GenerateText(ctx, prompt, llm.FactExtractionSystemPrompt(), 0.7)
}

func (g *Generator) newsSection(ctx context.Context, articles []types.Article) string {
	g.rl.Log(fmt.Sprintf("Generating deep dive analysis for %d news items", len(articles)))

	var section strings.Builder
	section.WriteString("## 第2章 ピックアップニュース\n\n")

	for i, a := range articles {
		g.rl.Log(fmt.Sprintf("Processing news item %d: %s", i+1, a.Title))

		analysis, err := g.llm.GenerateText(ctx, deepDivePrompt(i+1, a), llm.FactExtractionSystemPrompt(), 0.7)
		if err != nil {
			g.rl.Error(fmt.Sprintf("Error generating analysis for %s", a.Title))
			logger.ErrorWithErr(ctx, "Deep dive generation failed", err, "title", a.Title)
			fmt.Fprintf(&section, "### %d. %s\n\n*Error generating analysis.*\n\n---\n\n", i+1, a.Title)
			continue
		}
		section.WriteString(analysis)
		section.WriteString("\n\n---\n\n")
	}
	return section.String()
}

func deepDivePrompt(index int, a types.Article) string {
	searchContext := a.SearchContext
	if searchContext == "" {
		searchContext = "No additional context available."
	}

	return fmt.Sprintf(`Analyze the following news article and generate a detailed report section.

Article Title: %s
Source: %s
Published At: %s
URL: %s
Content: %s
%s

Additional Context (from Web Search):
%s

Output Format (Markdown):
### %d. [Translated Japanese Title] ([Published Date in JST])

**企業情報**:
- **[Company Name] ([Ticker])**: [Market Cap], [Sector]

**ニュース概要**:
[Provide a comprehensive and detailed summary. Do NOT summarize too briefly. You MUST include ALL specific numbers, dates, percentages, and financial figures found in the text.
**CROSS-REFERENCE INSTRUCTIONS**:
- Synthesize facts from both the main article and the "Additional Context" (search results).
- If the search results contain new numbers or details not in the main article, INTEGRATE them.
- **STRICTLY EXCLUDE** any personal opinions, feelings, or "analysis" from reporters in the search results. Extract ONLY the facts (numbers, quotes, events).
- Do not omit details for brevity. The goal is to provide a "deep dive" reading experience.
- MUST embed source link like ([Source Name](%s)) at the end of sentences.]

**【その後の動き・最新アップデート】**:
[Compare the "Published At" date with the information in "Additional Context".
If there are stock price movements, official statements, or market reactions that happened AFTER the original news:
- Report them here with specific numbers (e.g., "The next day, stock fell X%%").
- If no new information is available, write "特になし".]

**市場への影響（深堀り）**:
[This section is CRITICAL. Do NOT be generic.
- **プラスの理由**: [Explain WHY it is positive with logic. Cite sources if available.]
- **マイナスの理由**: [Explain WHY it is negative with logic. Cite sources if available.]
- **懸念事項**: [Specific risks, e.g., regulatory hurdles, competitor moves.]
- **影響を受けるセクター/銘柄**: [List specific sectors or related companies and explain the correlation.]
- **短期・長期の影響**: [Differentiate between immediate reaction and long-term structural changes.]
**REQUIREMENT**:
- Provide LOGICAL explanations (e.g., "Revenue is up, BUT margins are down due to AI costs, so stock fell").
- If a specific analyst or report is mentioned in the search context, cite them (e.g., "According to Morgan Stanley...").]

**投資家への示唆**:
[Concrete implications based on facts]

**出典**: %s`,
		a.Title, a.Source, a.PublishedAt, a.URL, a.Description, a.Content,
		searchContext, index, a.URL, a.URL)
}

func (g *Generator) conclusion(ctx context.Context, articles []types.Article, themes []string) (string, error) {
	g.rl.Log("Generating conclusion")

	var titles strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&titles, "- %s\n", a.Title)
	}

	prompt := fmt.Sprintf(`Based on the market data and news titles below, write a "総括" (Conclusion) section.
Summarize the overall market sentiment and key takeaways for investors.

News Titles:
%s
%s
Requirements:
- Fact-based summary.
- No personal opinions.`, titles.String(), themeBlock(themes))

	return g.llm.GenerateText(ctx, prompt, llm.FactExtractionSystemPrompt(), 0.7)
}

func themeBlock(themes []string) string {
	if len(themes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Overarching Themes:\n")
	for _, t := range themes {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	return b.String()
}
