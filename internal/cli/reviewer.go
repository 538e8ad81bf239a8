package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cardmatch/internal/common"
	"cardmatch/internal/model"

	"github.com/schollz/progressbar/v3"
)

// DecideFunc records a reviewed decision for a single sell/buy pair.
type DecideFunc func(ctx context.Context, sellID, buyID string, accept bool, notes string) error

// ReviewStats summarizes an interactive review session.
type ReviewStats struct {
	Accepted int
	Rejected int
	Skipped  int
	Blocked  int
}

// Reviewer walks pending match candidates and records the user's verdicts.
type Reviewer struct {
	startTime   time.Time
	writer      io.Writer
	reader      *LineReader
	progressBar *progressbar.ProgressBar
	stats       ReviewStats
	totalGroups int
}

// NewReviewer creates a reviewer reading choices from reader and writing to writer.
func NewReviewer(reader io.Reader, writer io.Writer) *Reviewer {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Reviewer{
		reader:    NewLineReader(reader),
		writer:    writer,
		startTime: time.Now(),
	}
}

// Review presents each sell item's candidates and records verdicts through decide.
// Candidates must share a sell item per contiguous run, as produced by the matcher.
func (r *Reviewer) Review(ctx context.Context, candidates []model.MatchCandidate, decide DecideFunc) (ReviewStats, error) {
	groups := groupCandidatesBySell(candidates)
	r.totalGroups = len(groups)
	if r.totalGroups == 0 {
		fmt.Fprintln(r.writer, FormatInfo("Nothing to review."))
		return r.stats, nil
	}

	r.initProgressBar()

	for _, group := range groups {
		select {
		case <-ctx.Done():
			return r.stats, ctx.Err()
		default:
		}

		done, err := r.reviewGroup(ctx, group, decide)
		if err != nil {
			return r.stats, err
		}
		r.advanceProgress()
		if done {
			break
		}
	}

	r.showCompletion()
	return r.stats, nil
}

// reviewGroup prompts for one sell item. It returns true when the user quits.
func (r *Reviewer) reviewGroup(ctx context.Context, group []model.MatchCandidate, decide DecideFunc) (bool, error) {
	content := r.formatGroup(group)
	if _, err := fmt.Fprintln(r.writer, RenderBox("Match Review", content)); err != nil {
		return false, fmt.Errorf("failed to write review box: %w", err)
	}

	valid := make([]string, 0, len(group)+3)
	for i := range group {
		valid = append(valid, strconv.Itoa(i+1))
	}
	valid = append(valid, "n", "s", "q")

	if _, err := fmt.Fprintf(r.writer, "  [1-%d] Accept that candidate\n  [N] None match (record non-matches)\n  [S] Skip for now\n  [Q] Quit review\n\n", len(group)); err != nil {
		return false, fmt.Errorf("failed to write options: %w", err)
	}

	choice, err := r.promptChoice(ctx, "Choice", valid)
	if err != nil {
		return false, err
	}

	switch choice {
	case "q":
		return true, nil
	case "s":
		r.stats.Skipped++
		return false, nil
	case "n":
		for _, cand := range group {
			if err := decide(ctx, cand.Sell.ID, cand.Buy.ID, false, "reviewed: no match"); err != nil {
				return false, fmt.Errorf("failed to record rejection: %w", err)
			}
		}
		r.stats.Rejected++
		fmt.Fprintln(r.writer, FormatInfo("Recorded as non-matches."))
		return false, nil
	}

	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(group) {
		return false, fmt.Errorf("unexpected choice %q", choice)
	}
	chosen := group[idx-1]

	if err := decide(ctx, chosen.Sell.ID, chosen.Buy.ID, true, "reviewed"); err != nil {
		var conflict *common.ConflictError
		if errors.As(err, &conflict) {
			r.stats.Blocked++
			fmt.Fprintln(r.writer, FormatWarning(fmt.Sprintf(
				"Conflict: %s already has an accepted pairing (sell %s / buy %s). Resolve it with 'cardmatch conflicts'.",
				conflict.Type, conflict.ExistingSellID, conflict.ExistingBuyID)))
			return false, nil
		}
		return false, fmt.Errorf("failed to record acceptance: %w", err)
	}

	r.stats.Accepted++
	fmt.Fprintln(r.writer, FormatSuccess(fmt.Sprintf("Matched %s ↔ %s", chosen.Sell.ProductName, chosen.Buy.CardName)))
	return false, nil
}

func (r *Reviewer) formatGroup(group []model.MatchCandidate) string {
	var b strings.Builder

	sell := group[0].Sell
	b.WriteString(fmt.Sprintf("%s %s\n", BoldStyle.Render("Selling:"), sell.ProductName))
	b.WriteString(fmt.Sprintf("%s %s", SubtleStyle.Render("Set:"), sell.SetName))
	if sell.Rarity != "" {
		b.WriteString(fmt.Sprintf("   %s %s", SubtleStyle.Render("Rarity:"), sell.Rarity))
	}
	if !sell.MarketPrice.IsZero() {
		b.WriteString(fmt.Sprintf("   %s $%s", SubtleStyle.Render("Market:"), sell.MarketPrice.StringFixed(2)))
	}
	b.WriteString("\n\n")
	b.WriteString(BoldStyle.Render("Candidates:"))
	b.WriteString("\n")

	for i, cand := range group {
		score := fmt.Sprintf("%.3f", cand.Similarity)
		switch cand.Confidence {
		case model.ConfidenceHigh:
			score = SuccessStyle.Render(score)
		case model.ConfidenceMedium:
			score = WarningStyle.Render(score)
		default:
			score = SubtleStyle.Render(score)
		}

		foil := ""
		if cand.Buy.Foil {
			foil = " (foil)"
		}
		b.WriteString(fmt.Sprintf("  %d. %s — %s%s  sim %s [%s]",
			i+1, cand.Buy.CardName, cand.Buy.Edition, foil, score, cand.Confidence))
		if !cand.Buy.Price.IsZero() {
			b.WriteString(fmt.Sprintf("  buys at $%s", cand.Buy.Price.StringFixed(2)))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *Reviewer) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if _, err := fmt.Fprintf(r.writer, "%s: ", FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := r.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(input)
		for _, v := range validChoices {
			if choice == v {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(r.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

func (r *Reviewer) initProgressBar() {
	r.progressBar = progressbar.NewOptions(r.totalGroups,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reviewing matches...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func (r *Reviewer) advanceProgress() {
	if r.progressBar != nil {
		if err := r.progressBar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

func (r *Reviewer) showCompletion() {
	elapsed := time.Since(r.startTime).Round(time.Second)
	summary := fmt.Sprintf("Accepted %d · Rejected %d · Skipped %d · Blocked %d · %s",
		r.stats.Accepted, r.stats.Rejected, r.stats.Skipped, r.stats.Blocked, elapsed)
	fmt.Fprintln(r.writer, "\n"+FormatTitle("Review complete"))
	fmt.Fprintln(r.writer, InfoStyle.Render(summary))
}

// groupCandidatesBySell splits candidates into contiguous per-sell-item groups,
// preserving order.
func groupCandidatesBySell(candidates []model.MatchCandidate) [][]model.MatchCandidate {
	var groups [][]model.MatchCandidate
	for i := 0; i < len(candidates); {
		j := i + 1
		for j < len(candidates) && candidates[j].Sell.ID == candidates[i].Sell.ID {
			j++
		}
		groups = append(groups, candidates[i:j])
		i = j
	}
	return groups
}
