// Package formation posiciona o XI inicial num campo esquemático.
// Coordenadas em percentual: X da esquerda (gol do mandante) para a direita,
// Y de cima para baixo.
package formation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/radieske/football-betslip/internal/footballapi/dto"
)

const (
	maxRow    = 4  // goleiro, defesa, meio, ataque
	maxColumn = 10 // colunas por linha
)

// faixas por linha; o visitante é espelhado do lado direito
var (
	homeRowX = [maxRow + 1]float64{0, 5, 15, 30, 45}
	awayRowX = [maxRow + 1]float64{0, 95, 85, 70, 55}
)

type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

type Position struct {
	PlayerID    int64   `json:"player_id"`
	Name        string  `json:"name"`
	ShirtNumber int     `json:"shirt_number"`
	Side        Side    `json:"side"`
	Row         int     `json:"row"`
	Column      int     `json:"column"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
}

type Pitch struct {
	HomeFormation string     `json:"home_formation"`
	AwayFormation string     `json:"away_formation"`
	Players       []Position `json:"players"`
}

// Layout posiciona os titulares dos dois times
func Layout(home, away dto.Lineup) Pitch {
	return Pitch{
		HomeFormation: home.Formation,
		AwayFormation: away.Formation,
		Players:       append(Place(home, Home), Place(away, Away)...),
	}
}

type slot struct {
	player   dto.Player
	row, col int
}

// Place calcula as posições de um time. Jogador sem grid ou com grid inválido fica de fora.
func Place(lineup dto.Lineup, side Side) []Position {
	keys := make([]string, 0, len(lineup.StartXI))
	for k := range lineup.StartXI {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slots := make([]slot, 0, len(keys))
	perRow := make(map[int]int)
	for _, k := range keys {
		p := lineup.StartXI[k]
		row, col, ok := ParseGrid(p.Grid)
		if !ok {
			continue
		}
		slots = append(slots, slot{player: p, row: row, col: col})
		perRow[row]++
	}

	out := make([]Position, 0, len(slots))
	for _, s := range slots {
		x := homeRowX[s.row]
		if side == Away {
			x = awayRowX[s.row]
		}
		out = append(out, Position{
			PlayerID:    s.player.ID,
			Name:        s.player.Name,
			ShirtNumber: s.player.ShirtNumber,
			Side:        side,
			Row:         s.row,
			Column:      s.col,
			Left:        x,
			Top:         top(s.row, s.col, perRow[s.row]),
		})
	}
	return out
}

// top distribui a linha entre 15% e 85%. Linha com um só jogador e o goleiro 1:1 ficam no centro.
func top(row, col, inRow int) float64 {
	if inRow <= 1 || (row == 1 && col == 1) {
		return 50
	}
	spacing := 70 / float64(max(inRow-1, 1))
	return 15 + spacing*float64(col-1)
}

// ParseGrid lê "linha:coluna" e limita linha a 1..4 e coluna a 1..10
func ParseGrid(grid string) (row, col int, ok bool) {
	r, c, found := strings.Cut(strings.TrimSpace(grid), ":")
	if !found {
		return 0, 0, false
	}
	row, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return 0, 0, false
	}
	col, err = strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return 0, 0, false
	}
	return clamp(row, 1, maxRow), clamp(col, 1, maxColumn), true
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
