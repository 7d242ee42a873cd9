package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/energizer-project/showtrack/internal/dex"
	"github.com/energizer-project/showtrack/internal/session"
	"github.com/energizer-project/showtrack/internal/tracker"
)

const none = "-"

// RenderBattle writes a summary header and one table per side.
func RenderBattle(w io.Writer, b *tracker.Battle) {
	tier := b.Tier
	if tier == "" {
		tier = "unknown format"
	}
	fmt.Fprintf(w, "%s (gen %d, %s)  turn %d\n", tier, b.Generation, b.GameType, b.Turn)

	var field []string
	if b.Field.Weather != dex.WeatherNone {
		field = append(field, "weather: "+b.Field.Weather.String())
	}
	if b.Field.Terrain != dex.TerrainNone {
		field = append(field, "terrain: "+b.Field.Terrain.String())
	}
	field = append(field, b.Field.Rooms()...)
	if len(field) > 0 {
		fmt.Fprintf(w, "Field: %s\n", strings.Join(field, ", "))
	}

	switch {
	case b.Tie:
		fmt.Fprintln(w, "Result: tie")
	case b.Ended:
		fmt.Fprintf(w, "Result: %s won\n", b.Winner)
	case b.IsWaitingToStart():
		fmt.Fprintln(w, "Result: waiting to start")
	default:
		fmt.Fprintln(w, "Result: in progress")
	}

	for _, side := range b.SideList() {
		fmt.Fprintln(w)
		renderSide(w, b, side)
	}
}

func renderSide(w io.Writer, b *tracker.Battle, s *tracker.Side) {
	label := fmt.Sprintf("%s %s", s.Seat, s.Name)
	if b.Perspective != nil && *b.Perspective == s.Seat {
		label += " (you)"
	}
	fmt.Fprintf(w, "%s  %d alive, %d fainted\n", label, s.AliveCount(), s.FaintedCount())
	if names := s.Conditions.Names(); len(names) > 0 {
		fmt.Fprintf(w, "Conditions: %s\n", strings.Join(names, ", "))
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Slot", "Name", "Species", "HP", "Status", "Boosts", "Volatiles", "Item", "Ability"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)

	for _, p := range s.Pokemon {
		tw.Append([]string{
			slotLabel(s, p),
			p.Name(),
			p.Species,
			hpLabel(p),
			statusLabel(p),
			orNone(strings.Join(p.Boosts.Changed(), " ")),
			orNone(strings.Join(p.Volatiles.Names(), ", ")),
			itemLabel(p),
			orNone(p.Ability),
		})
	}
	tw.Render()
}

func slotLabel(s *tracker.Side, p *tracker.Pokemon) string {
	for slot := range s.Active {
		if s.At(slot) == p {
			return s.Seat.String() + dex.SlotLetter(slot)
		}
	}
	return none
}

func hpLabel(p *tracker.Pokemon) string {
	if p.HP == nil {
		return "?"
	}
	return p.HP.String()
}

func statusLabel(p *tracker.Pokemon) string {
	switch {
	case p.Fainted:
		return dex.FaintedCode
	case p.Status != dex.StatusNone:
		return p.Status.String()
	}
	return none
}

func itemLabel(p *tracker.Pokemon) string {
	switch {
	case p.Item == "":
		return none
	case p.ItemConsumed:
		return p.Item + " (used)"
	}
	return p.Item
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

// RenderRooms writes the tracked room list as a table.
func RenderRooms(w io.Writer, rooms []session.RoomSummary) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Room", "Format", "Players", "Turn", "State", "Updated"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)

	for _, r := range rooms {
		state := "live"
		if r.Ended {
			state = "ended"
			if r.Winner != "" {
				state = "won by " + r.Winner
			}
		}
		tw.Append([]string{
			r.Room,
			orNone(r.Tier),
			orNone(strings.Join(r.Players, " vs ")),
			fmt.Sprintf("%d", r.Turn),
			state,
			r.UpdatedAt.Format(time.TimeOnly),
		})
	}
	tw.Render()
}
