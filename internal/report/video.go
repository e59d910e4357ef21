package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/bikkkubo/news-bot/internal/llm"
	"github.com/bikkkubo/news-bot/internal/trace"
	"github.com/bikkkubo/news-bot/internal/types"
)

// Script generates the narration script in the Taitsu persona, one
// segment per article with an inline image marker.
func (g *Generator) Script(ctx context.Context, articles []types.Article) (string, error) {
	ctx, span := trace.StartSpan(ctx, "script-generate")
	defer span.End()

	g.rl.Log("Generating video script")

	if len(articles) > maxDeepDives {
		articles = articles[:maxDeepDives]
	}

	var newsContent strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&newsContent, "News %d: %s\nURL: %s\nDescription: %s\n\n", i+1, a.Title, a.URL, a.Description)
	}

	today := g.now().Format("2006年01月02日")
	prompt := fmt.Sprintf(`Create a video script for today's financial news (%s).

News Items:
%s
Requirements:
1. **Persona**: You are "Taitsu". Start with "皆さん、こんにちは。タイツです。"
2. **Structure**:
   - Opening
   - News segments (Introduce each news item clearly).
   - **Image Placeholder**: For EACH news item, insert `+"`[画像を表示: URL]`"+` immediately after the title introduction.
   - Closing: End with "タイツでした。"
3. **Tone**: Professional, engaging, "です・ます".
4. **Language**: Japanese.`, today, newsContent.String())

	return g.llm.GenerateText(ctx, prompt, llm.NarratorSystemPrompt(), 0.7)
}

// Subtitles re-segments a script into numbered subtitle lines, keeping
// image markers on their own lines.
func (g *Generator) Subtitles(ctx context.Context, script string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "subtitles-generate")
	defer span.End()

	g.rl.Log("Generating subtitles")

	prompt := fmt.Sprintf(`Convert the following video script into a subtitle list.

Script:
%s

Requirements:
1. **Format**: Each line should start with `+"`[字幕X]`"+` (e.g., `+"`[字幕1]`, `[字幕2]`"+`).
2. **Granularity**: Split long sentences into readable chunks (20-30 chars max per line).
3. **Content**: Keep the exact wording of the script.
4. **Images**: If there is `+"`[画像を表示: URL]`"+`, output it as `+"`[画像X] URL`"+` on its own line.`, script)

	return g.llm.GenerateText(ctx, prompt, "", 0.7)
}
