package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/aggregator"
	"github.com/pable/go-football-metrics/internal/model"
	"github.com/pable/go-football-metrics/internal/parser"
	"github.com/pable/go-football-metrics/internal/session"
	"github.com/pable/go-football-metrics/internal/storage"
)

var analyzeSystemPrompt = `You are a football performance analyst. You are given structured data
computed from StatsBomb World Cup 2022 event logs and a question about one player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise. Compare the player against the qualifying population, not against
  general reputation.

Metrics glossary:
- minutes_played: sum over matches of the span between the player's first and
  last recorded event (at least 1 minute per match). Approximates time on pitch.
- final_third_passes: open-play passes starting at x >= the final-third line
  (pitch length 120). Passes of these types are excluded: ` + strings.Join(parser.ExcludedPassTypes(), ", ") + `.
  Every other pass type counts, goal kicks included.
- shot_assists: passes directly followed by a teammate's shot.
- xg: sum of StatsBomb expected goals over the player's shots.
- *_per90: count / minutes_played × 90.
- percentile: share of qualifying players at or below the player's value (0–100).`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeFocus  int64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "AI-powered grounded analysis of the focus player (requires ANTHROPIC_API_KEY)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default: anthropic_model from config)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().Int64Var(&analyzeFocus, "focus", 0, "player id to analyze (default: focus_player_id)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	focus := analyzeFocus
	if focus == 0 {
		focus = cfg.FocusPlayerID
	}
	modelID := analyzeModel
	if modelID == "" {
		modelID = cfg.AnthropicModel
	}

	s, err := currentSession()
	if err != nil {
		return err
	}
	contextJSON, err := buildPlayerContext(s, focus)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	log.WithFields(logrus.Fields{"player": focus, "model": modelID, "bytes": len(contextJSON)}).Debug("analysis context built")

	return callAnthropic(cmd.Context(), analyzeAPIKey, modelID, contextJSON, question)
}

// buildPlayerContext serialises the player's tournament profile into compact
// JSON: the per-90 row, percentile ranks, per-match pass counts and the
// qualifying population's spread.
func buildPlayerContext(s *session.Session, playerID int64) (string, error) {
	name := s.PlayerName(playerID)
	if name == "" {
		return "", fmt.Errorf("player %d has no events in the tournament", playerID)
	}

	type matchEntry struct {
		Match            string `json:"match"`
		FinalThirdPasses int    `json:"final_third_passes"`
		ShotAssists      int    `json:"shot_assists"`
	}
	var perMatch []matchEntry
	for _, m := range s.Matches {
		passes, err := s.Store.FinalThirdPasses(storage.PassFilter{MatchID: m.MatchID, PlayerID: playerID, MinX: cfg.FinalThirdX})
		if err != nil {
			return "", err
		}
		if len(passes) == 0 {
			continue
		}
		e := matchEntry{Match: m.Label(), FinalThirdPasses: len(passes)}
		for _, p := range passes {
			if p.ShotAssist {
				e.ShotAssists++
			}
		}
		perMatch = append(perMatch, e)
	}

	doc := map[string]interface{}{
		"subject":            "player",
		"player":             name,
		"player_id":          playerID,
		"min_minutes":        cfg.MinMinutes,
		"final_third_x":      cfg.FinalThirdX,
		"qualifying_players": len(s.Per90),
		"population":         populationSummary(s.Per90),
		"matches":            perMatch,
	}

	if row := findPer90(s.Per90, playerID); row != nil {
		doc["per90"] = map[string]interface{}{
			"minutes_played":           round2(row.MinutesPlayed),
			"final_third_passes":       row.FinalThirdPasses,
			"final_third_passes_per90": round2(row.FinalThirdPassesPer90),
			"shot_assists":             row.ShotAssists,
			"shot_assists_per90":       round2(row.ShotAssistsPer90()),
			"xg":                       round2(row.XG),
			"xg_per90":                 round2(row.XGPer90),
		}
		pcts, _ := aggregator.Percentiles(s.Per90, playerID)
		ranks := make(map[string]float64, len(pcts))
		for _, p := range pcts {
			ranks[p.Metric] = round2(p.Pct)
		}
		doc["percentiles"] = ranks
	} else {
		doc["per90"] = "below minutes threshold"
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

func findPer90(stats []model.PlayerPer90Stat, id int64) *model.PlayerPer90Stat {
	for i := range stats {
		if stats[i].PlayerID == id {
			return &stats[i]
		}
	}
	return nil
}

// populationSummary gives min/median/max of each per-90 metric.
func populationSummary(stats []model.PlayerPer90Stat) map[string]map[string]float64 {
	if len(stats) == 0 {
		return nil
	}
	spread := func(get func(*model.PlayerPer90Stat) float64) map[string]float64 {
		vs := make([]float64, len(stats))
		for i := range stats {
			vs[i] = get(&stats[i])
		}
		sort.Float64s(vs)
		return map[string]float64{
			"min":    round2(vs[0]),
			"median": round2(vs[len(vs)/2]),
			"max":    round2(vs[len(vs)-1]),
		}
	}
	return map[string]map[string]float64{
		aggregator.MetricFinalThirdPer90: spread(func(s *model.PlayerPer90Stat) float64 { return s.FinalThirdPassesPer90 }),
		aggregator.MetricXGPer90:         spread(func(s *model.PlayerPer90Stat) float64 { return s.XGPer90 }),
	}
}

// round2 rounds a non-negative float64 to 2 decimal places.
func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── Analysis ────────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
