package engine

// ItemType tags the four purchasable item kinds
type ItemType string

const (
	ItemShield          ItemType = "shield"
	ItemExtraDiceRoll   ItemType = "extra_dice_roll"
	ItemPointMultiplier ItemType = "point_multiplier"
	ItemTeleport        ItemType = "teleport"
)

// ItemTrigger categorizes when an item is eligible to apply
type ItemTrigger string

const (
	TriggerManual        ItemTrigger = "manual"
	TriggerOnObstacle    ItemTrigger = "on_obstacle"
	TriggerBeforeDice    ItemTrigger = "before_dice"
	TriggerOnMathProblem ItemTrigger = "on_math_problem"
)

// ItemDefinition is the static catalog entry for one item kind
type ItemDefinition struct {
	ID          ItemType    `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Emoji       string      `json:"emoji"`
	Price       int         `json:"price"`
	MaxUses     int         `json:"max_uses"`
	Trigger     ItemTrigger `json:"trigger"`
	Stackable   bool        `json:"stackable"`
}

// ItemCatalog is the read-only catalog of purchasable items.
var ItemCatalog = map[ItemType]ItemDefinition{
	ItemShield: {
		ID:          ItemShield,
		Name:        "Shield",
		Description: "Protects from the next trap or slip",
		Emoji:       "🛡️",
		Price:       45,
		MaxUses:     1,
		Trigger:     TriggerOnObstacle,
		Stackable:   true,
	},
	ItemExtraDiceRoll: {
		ID:          ItemExtraDiceRoll,
		Name:        "Lucky Dice",
		Description: "Roll twice and choose the better result",
		Emoji:       "🎲",
		Price:       60,
		MaxUses:     3,
		Trigger:     TriggerBeforeDice,
		Stackable:   false,
	},
	ItemPointMultiplier: {
		ID:          ItemPointMultiplier,
		Name:        "Point Booster",
		Description: "1.5x points on next 2 correct answers",
		Emoji:       "⭐",
		Price:       75,
		MaxUses:     2,
		Trigger:     TriggerOnMathProblem,
		Stackable:   false,
	},
	ItemTeleport: {
		ID:          ItemTeleport,
		Name:        "Teleporter",
		Description: "Move to any tile (no obstacles)",
		Emoji:       "🌀",
		Price:       90,
		MaxUses:     1,
		Trigger:     TriggerManual,
		Stackable:   true,
	},
}

// PointMultiplierFactor is the score multiplier applied by an active Point
// Booster on a correct answer.
const PointMultiplierFactor = 1.5

// CanAffordItem reports whether the player has enough coins for the item.
func CanAffordItem(player Player, itemType ItemType) bool {
	def, ok := ItemCatalog[itemType]
	return ok && player.Coins >= def.Price
}

// PurchaseItem debits the price and adds uses, creating a new inventory
// entry or topping up an existing one. The purchase fails with no state
// change when the item is unaffordable, unknown, or non-stackable and
// already owned.
func PurchaseItem(player Player, itemType ItemType) (Player, bool) {
	def, ok := ItemCatalog[itemType]
	if !ok || player.Coins < def.Price {
		return player, false
	}

	existing := -1
	for i, item := range player.Inventory {
		if item.ItemType == itemType {
			existing = i
			break
		}
	}
	if existing >= 0 && !def.Stackable {
		return player, false
	}

	inventory := append([]PlayerItem(nil), player.Inventory...)
	if existing >= 0 {
		inventory[existing].UsesRemaining += def.MaxUses
	} else {
		inventory = append(inventory, PlayerItem{ItemType: itemType, UsesRemaining: def.MaxUses})
	}

	player.Coins -= def.Price
	player.Inventory = inventory
	return player, true
}

// UseItem consumes one use of an owned item, removing the inventory entry
// when it hits zero. Using an absent or exhausted item is a no-op.
func UseItem(player Player, itemType ItemType) Player {
	idx := -1
	for i, item := range player.Inventory {
		if item.ItemType == itemType && item.UsesRemaining > 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return player
	}

	inventory := append([]PlayerItem(nil), player.Inventory...)
	inventory[idx].UsesRemaining--
	if inventory[idx].UsesRemaining <= 0 {
		inventory = append(inventory[:idx], inventory[idx+1:]...)
	}
	player.Inventory = inventory
	return player
}

// ActivateItem flags an owned item as active for multi-turn effects.
func ActivateItem(player Player, itemType ItemType) Player {
	return setItemActive(player, itemType, true)
}

// DeactivateItem clears an item's active flag.
func DeactivateItem(player Player, itemType ItemType) Player {
	return setItemActive(player, itemType, false)
}

func setItemActive(player Player, itemType ItemType, active bool) Player {
	inventory := append([]PlayerItem(nil), player.Inventory...)
	for i := range inventory {
		if inventory[i].ItemType == itemType {
			inventory[i].IsActive = active
		}
	}
	player.Inventory = inventory
	return player
}

// AwardCoins credits coins unconditionally.
func AwardCoins(player Player, amount int) Player {
	player.Coins += amount
	return player
}

// HasItem reports whether the player owns the item with uses remaining.
func HasItem(player Player, itemType ItemType) bool {
	for _, item := range player.Inventory {
		if item.ItemType == itemType && item.UsesRemaining > 0 {
			return true
		}
	}
	return false
}

// ActiveItem returns the owned, active entry of the given type, or nil.
func ActiveItem(player Player, itemType ItemType) *PlayerItem {
	for i, item := range player.Inventory {
		if item.ItemType == itemType && item.IsActive {
			return &player.Inventory[i]
		}
	}
	return nil
}

// ItemsForTrigger returns the owned items eligible for a trigger context.
func ItemsForTrigger(player Player, trigger ItemTrigger) []PlayerItem {
	var items []PlayerItem
	for _, item := range player.Inventory {
		def, ok := ItemCatalog[item.ItemType]
		if ok && def.Trigger == trigger && item.UsesRemaining > 0 {
			items = append(items, item)
		}
	}
	return items
}
