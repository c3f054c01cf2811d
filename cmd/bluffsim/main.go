// cmd/bluffsim/main.go plays bot-only rooms against each other and reports how each difficulty
// fares.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jason-s-yu/bluff/internal/bot"
	"github.com/jason-s-yu/bluff/internal/game"
	"github.com/jason-s-yu/bluff/internal/rating"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

func main() {
	games := flag.Int("games", 50, "number of games to play")
	seats := flag.String("seats", "easy,medium,hard", "comma separated difficulty per seat")
	timeout := flag.Duration("timeout", 30*time.Second, "give up on a game after this long")
	flag.Parse()

	var lineup []bot.Difficulty
	for _, s := range strings.Split(*seats, ",") {
		lineup = append(lineup, bot.ParseDifficulty(strings.TrimSpace(s)))
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	reg := game.NewRegistry(fastSettings(len(lineup)), game.WithLogger(logger))

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Playing %d games ...", *games))
	results := newTally(lineup)
	for i := 0; i < *games; i++ {
		res, err := playOne(reg, lineup, *timeout)
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}
		results.add(res)
		spinner.UpdateText(fmt.Sprintf("Played %d/%d games ...", i+1, *games))
	}
	spinner.Success(fmt.Sprintf("Played %d games", *games))

	pterm.DefaultSection.Println("Results by seat")
	_ = pterm.DefaultTable.WithHasHeader().WithData(results.table()).Render()
	if results.unfinished > 0 {
		pterm.Warning.Printfln("%d game(s) hit the timeout", results.unfinished)
	}
}

// fastSettings keeps the real timing relationships at a fraction of the duration.
func fastSettings(seats int) game.Settings {
	s := game.DefaultSettings()
	s.Capacity = seats
	s.StartDelay = 0
	s.ChallengeWindow = 15 * time.Millisecond
	s.ResolutionPause = time.Millisecond
	s.InterRoundPause = time.Millisecond
	s.BotThinkDelay = time.Millisecond
	s.BotChallengeDelayMin = time.Millisecond
	s.BotChallengeDelayMax = 4 * time.Millisecond
	return s
}

// playOne runs a room to completion and returns its finishing order, or nil on timeout.
func playOne(reg *game.Registry, lineup []bot.Difficulty, timeout time.Duration) ([]int, error) {
	room, err := reg.NewBotRoom(lineup...)
	if err != nil {
		return nil, err
	}
	defer func() {
		room.Close()
		reg.Delete(room.ID)
	}()
	room.Start()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		snap := room.Snapshot()
		if snap.Phase == game.PhaseFinished {
			return snap.WonSeats, nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil, nil
}

type tally struct {
	lineup     []bot.Difficulty
	firsts     []int
	places     []int
	games      int
	unfinished int
	ratings    *rating.Table
}

func newTally(lineup []bot.Difficulty) *tally {
	return &tally{
		lineup:  lineup,
		firsts:  make([]int, len(lineup)),
		places:  make([]int, len(lineup)),
		ratings: rating.NewTable(len(lineup)),
	}
}

func (t *tally) add(order []int) {
	if order == nil {
		t.unfinished++
		return
	}
	t.games++
	t.ratings.RecordGame(order)
	for place, seat := range order {
		if place == 0 {
			t.firsts[seat]++
		}
		t.places[seat] += place + 1
	}
}

func (t *tally) table() pterm.TableData {
	data := pterm.TableData{{"Seat", "Difficulty", "Wins", "Win rate", "Avg place", "Rating"}}
	for seat, d := range t.lineup {
		rate, avg := 0.0, 0.0
		if t.games > 0 {
			rate = float64(t.firsts[seat]) / float64(t.games) * 100
			avg = float64(t.places[seat]) / float64(t.games)
		}
		data = append(data, []string{
			fmt.Sprint(seat),
			string(d),
			fmt.Sprint(t.firsts[seat]),
			fmt.Sprintf("%.1f%%", rate),
			fmt.Sprintf("%.2f", avg),
			fmt.Sprintf("%.0f ± %.0f", t.ratings.Ratings[seat].Elo(), t.ratings.Ratings[seat].RD()),
		})
	}
	return data
}
