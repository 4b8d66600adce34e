package tui

import (
	"fmt"
	"strings"

	"courtsim/internal/catalog"
	"courtsim/internal/game"
	"courtsim/internal/handoff"
)

// GameView bundles everything the game screen renders. The app assembles it
// from the engine snapshot and the coding panel; rendering stays pure so
// tests can assert on lines.
type GameView struct {
	Snapshot game.Snapshot

	Step           int
	StageCount     int
	StageTitle     string
	StageRemaining int
	StageDone      bool

	FieldLabels []string
	FieldValues []string
	FieldFocus  int
}

// FormatClock renders seconds as M:SS (or MM:SS).
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func rule(width int) string {
	return Dim + strings.Repeat("─", width) + Reset
}

// RenderScenarios renders the scenario selection screen.
func RenderScenarios(opts []catalog.ScenarioOption, selected, width int) []string {
	lines := []string{
		Bold + "COURTROOM" + Reset + "  choose your scenario",
		rule(width),
	}
	for i, opt := range opts {
		marker := "  "
		style := ""
		if i == selected {
			marker = "> "
			style = Reverse
		}
		lines = append(lines, fmt.Sprintf("%s%s%d. %s%s", style, marker, i+1, truncate(opt.Title, width-6), Reset))
		if i == selected {
			for _, tl := range wrap(opt.Text, width-4) {
				lines = append(lines, Dim+"    "+tl+Reset)
			}
		}
	}
	lines = append(lines,
		rule(width),
		Dim+"up/down select   enter start   q quit"+Reset,
	)
	return lines
}

// RenderGame renders the in-run screen: run clock header, the surfaced alert
// dialog when one is up, and the coding panel.
func RenderGame(v GameView, width int) []string {
	snap := v.Snapshot

	header := fmt.Sprintf("%sCOURTROOM%s  time left %s%s%s  queued %d",
		Bold, Reset, FgBrightWhite, FormatClock(snap.SecondsLeft), Reset, snap.BacklogCount)
	lines := []string{header, rule(width)}

	if snap.Top != nil {
		lines = append(lines, renderAlert(snap, width)...)
		lines = append(lines, rule(width))
	}

	lines = append(lines, renderCodingPanel(v, width)...)
	return lines
}

func renderAlert(snap game.Snapshot, width int) []string {
	top := snap.Top
	var lines []string

	if top.Critical {
		lines = append(lines, FgBrightRed+Bold+"! CRITICAL"+Reset+"  "+truncate(top.Text, width-12))
		if snap.PenaltyActive && snap.PenaltyTaskID == top.ID {
			lines = append(lines, fmt.Sprintf("%s  verdict in %ds%s", FgBrightYellow, snap.PenaltySecondsLeft, Reset))
		} else if snap.PenaltyActive {
			lines = append(lines, fmt.Sprintf("%s  earlier critical pending, verdict in %ds%s",
				FgBrightYellow, snap.PenaltySecondsLeft, Reset))
		}
	} else {
		lines = append(lines, FgYellow+"• notice"+Reset+"  "+truncate(top.Text, width-10))
	}
	if snap.SurfacedCount > 1 {
		lines = append(lines, Dim+fmt.Sprintf("  %d more behind this one", snap.SurfacedCount-1)+Reset)
	}
	lines = append(lines, "  "+Bold+"[F]"+Reset+"ix   "+Bold+"[S]"+Reset+"nooze   "+Bold+"[I]"+Reset+"gnore")
	return lines
}

func renderCodingPanel(v GameView, width int) []string {
	if v.StageDone {
		return []string{FgGreen + "All coding tasks complete." + Reset}
	}

	lines := []string{fmt.Sprintf("%sCoding task %d/%d: %s%s  (%ds left)",
		Bold, v.Step+1, v.StageCount, v.StageTitle, Reset, v.StageRemaining)}

	for i, label := range v.FieldLabels {
		val := ""
		if i < len(v.FieldValues) {
			val = v.FieldValues[i]
		}
		cursor := ""
		style := Dim
		if i == v.FieldFocus {
			cursor = "_"
			style = ""
		}
		lines = append(lines, fmt.Sprintf("  %s%s> %s%s%s", style, label, truncate(val, width-len(label)-6), cursor, Reset))
	}
	lines = append(lines, Dim+"type to edit   tab next field   enter submit"+Reset)
	return lines
}

// RenderVerdict renders the loss screen from the handoff descriptor.
func RenderVerdict(d handoff.Descriptor, width int) []string {
	lines := []string{
		FgBrightRed + Bold + "VERDICT: GUILTY" + Reset,
		rule(width),
	}
	for _, tl := range wrap(d.Verdict, width-2) {
		lines = append(lines, "  "+tl)
	}
	if d.Category != "" {
		lines = append(lines, Dim+"  charge: "+d.Category+Reset)
	}
	lines = append(lines,
		rule(width),
		Dim+"r play again   q quit"+Reset,
	)
	return lines
}

// RenderWin renders the victory screen.
func RenderWin(width int) []string {
	return []string{
		FgGreen + Bold + "CASE DISMISSED" + Reset,
		rule(width),
		"  You shipped every task before the court convened.",
		rule(width),
		Dim + "r play again   q quit" + Reset,
	}
}

// wrap breaks text into lines at most width runes long, on word boundaries.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len([]rune(cur))+1+len([]rune(w)) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}
