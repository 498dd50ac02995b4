package engine

import "fmt"

// DefaultPlayerColors are the fallback token colors assigned in id order.
var DefaultPlayerColors = []string{"#e74c3c", "#3498db", "#2ecc71", "#f39c12"}

// InitializePlayers creates players with default avatars and colors.
func InitializePlayers(count int) []Player {
	players := make([]Player, 0, count)
	for i := 0; i < count; i++ {
		players = append(players, Player{
			ID:          i,
			Name:        fmt.Sprintf("Player %d", i+1),
			Color:       colorForIndex(i),
			AvatarIndex: i,
			Inventory:   []PlayerItem{},
		})
	}
	return players
}

// InitializePlayersWithAvatars creates players from the avatar-selection
// choices. A missing color entry falls back to the default palette.
func InitializePlayersWithAvatars(avatarIndices []int, colors []string) []Player {
	players := make([]Player, 0, len(avatarIndices))
	for i, avatar := range avatarIndices {
		color := colorForIndex(i)
		if i < len(colors) && colors[i] != "" {
			color = colors[i]
		}
		players = append(players, Player{
			ID:          i,
			Name:        fmt.Sprintf("Player %d", i+1),
			Color:       color,
			AvatarIndex: avatar,
			Inventory:   []PlayerItem{},
		})
	}
	return players
}

// MovePlayerToPosition places the player on the ring, wrapping modulo the
// board size.
func MovePlayerToPosition(player Player, newPosition, boardSize int) Player {
	player.Position = newPosition % boardSize
	return player
}

// DidPassStart reports whether a single movement step wrapped past the
// Start tile. Detection is per step: the new position lands below the old
// one only when the move crossed index zero.
func DidPassStart(oldPosition, newPosition int) bool {
	return newPosition < oldPosition
}

func colorForIndex(i int) string {
	return DefaultPlayerColors[i%len(DefaultPlayerColors)]
}
