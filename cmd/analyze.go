package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/aggregator"
	"github.com/pable/go-cod-stats/internal/metric"
	"github.com/pable/go-cod-stats/internal/model"
)

const analyzeSystemPrompt = `You are a Call of Duty performance analyst. You are given structured data
aggregated from a player's match history and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable: focus on what the player can actually improve.
- Avoid generic advice unless it directly explains a pattern in the data.

Metrics glossary:
- K/D: kills / deaths, capped at 99 when deaths are 0. 1.0 is break-even.
- EKIA: kills + assists. EKIA/D: EKIA / deaths.
- Skill: the game's hidden matchmaking skill value for the match.
- Win rate: wins / (wins + losses); matches with unknown outcome are excluded.
- Ranked: Hardpoint, Search and Destroy, Control on the ranked map pool.
- Veto score: win% x 0.5 + K/D x 20 + score / 100; lowest two are ban candidates.
- Session: consecutive matches no more than 2 hours apart, at least 3 games.
- Consistency: 100 - coefficient of variation of K/D (%), graded S/A/B/C/D.
- Correlation r: Pearson over matches where both metrics are present.`

var cHeading = color.New(color.FgCyan, color.Bold)

var (
	analyzeSel    selection
	analyzeModel  string
	analyzeAPIKey string
	analyzeLast   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "AI-powered grounded analysis of the selected matches (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeSel.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().IntVar(&analyzeLast, "last", 0, "only use the N most recent matches")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, q, view, err := loadView(cmd.Context(), &analyzeSel)
	if err != nil {
		return err
	}
	defer s.Close()
	if analyzeLast > 0 && len(view) > analyzeLast {
		view = view[len(view)-analyzeLast:]
	}
	if len(view) == 0 {
		return fmt.Errorf("no matches for this selection")
	}

	contextJSON, err := buildAnalysisContext(q, view)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	cHeading.Fprintf(os.Stderr, "Analyzing %d matches (%s / %s) with %s\n\n", len(view), q.Gamemode, q.Map, analyzeModel)
	return streamAnalysis(cmd.Context(), os.Stdout, analysisRequest{
		APIKey:   analyzeAPIKey,
		Model:    analyzeModel,
		System:   analyzeSystemPrompt,
		Data:     contextJSON,
		Question: args[0],
	})
}

// buildAnalysisContext serialises the view's aggregates into compact JSON.
func buildAnalysisContext(q model.Query, view []*model.CanonicalMatch) (string, error) {
	type mapEntry struct {
		Map     string  `json:"map"`
		Matches int     `json:"matches"`
		WinRate float64 `json:"win_rate"`
		KD      float64 `json:"kd"`
	}
	perf := aggregator.MapPerformance(view)
	maps := make([]mapEntry, 0, len(perf))
	for _, m := range perf {
		maps = append(maps, mapEntry{
			Map:     m.Map,
			Matches: m.Matches,
			WinRate: metric.Round(m.WinRate, 1),
			KD:      round2(float64(m.AvgKD)),
		})
	}

	sess := aggregator.Sessions(view, cfg.Analysis.SessionGap, cfg.Analysis.MinSessionSize)
	cons := aggregator.ConsistencyOf(view)
	veto := aggregator.VetoGuide(view)
	names := func(vm []aggregator.VetoMap) []string {
		out := make([]string, 0, len(vm))
		for _, m := range vm {
			out = append(out, m.Map)
		}
		return out
	}

	doc := map[string]interface{}{
		"selection": map[string]string{
			"mode":   q.Gamemode,
			"map":    q.Map,
			"metric": q.Metric,
		},
		"matches_analyzed": len(view),
		"first_match":      view[0].Timestamp.Format("2006-01-02"),
		"last_match":       view[len(view)-1].Timestamp.Format("2006-01-02"),
		"summary":          aggregator.SummaryOf(view, q.Metric),
		"averages": map[string]float64{
			"kd":       round2(aggregator.Average(view, model.MetricKD)),
			"ekia_d":   round2(aggregator.Average(view, model.MetricEKIAD)),
			"skill":    round2(aggregator.Average(view, model.MetricSkill)),
			"score":    round2(aggregator.Average(view, model.MetricScore)),
			"accuracy": round2(aggregator.Average(view, model.MetricAccuracyPct)),
			"hs_pct":   round2(aggregator.Average(view, model.MetricHeadshotPct)),
		},
		"streak":      aggregator.CurrentStreak(view),
		"ranked":      aggregator.Ranked(view),
		"maps":        maps,
		"veto":        map[string][]string{"ban": names(veto.Ban), "protect": names(veto.Protect)},
		"hours":       aggregator.HourOfDay(view, time.Local),
		"sessions":    len(sess),
		"fatigue":     aggregator.FatigueCurve(sess, aggregator.DefaultMinSessionSize),
		"consistency": map[string]interface{}{"score": cons.Score100, "grade": cons.Grade, "kd_cv": round2(cons.KD.CV)},
		"insights":    aggregator.Insights(view),
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// round2 rounds to 2 places; NaN (no data) becomes 0.
func round2(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return metric.Round(v, 2)
}

// analysisRequest is one grounded question for the model.
type analysisRequest struct {
	APIKey   string
	Model    string
	System   string
	Data     string
	Question string
}

// streamAnalysis sends req to the Anthropic API and writes text deltas to w
// as they arrive. The key falls back to $ANTHROPIC_API_KEY.
func streamAnalysis(ctx context.Context, w io.Writer, req analysisRequest) error {
	key := req.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if key == "" {
		return errors.New("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(key))
	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: req.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", req.Data, req.Question))),
		},
	})
	defer stream.Close()

	for stream.Next() {
		evt := stream.Current()
		if evt.Type != "content_block_delta" {
			continue
		}
		if d := evt.AsContentBlockDelta(); d.Delta.Type == "text_delta" {
			fmt.Fprint(w, d.Delta.AsTextDelta().Text)
		}
	}
	fmt.Fprintln(w)

	if err := stream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return errors.New("anthropic rejected the API key")
		}
		return fmt.Errorf("stream analysis: %w", err)
	}
	return nil
}
