package game

// Shop item IDs sold between waves. Weapons are bought through the arsenal.
const (
	ItemRestoreShield = "restore_shield"
	ItemFireRate      = "fire_rate"
	ItemBomb          = "bomb"
)

// ShopItem is a purchasable between-wave upgrade
type ShopItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        int    `json:"price"` // coins
	MaxPurchases int    `json:"max,omitempty"`
	Description  string `json:"desc"`
}

var ShopCatalog = []ShopItem{
	{ID: ItemRestoreShield, Name: "Shield Recharge", Price: 100, Description: "Fully restores the shield"},
	{ID: ItemFireRate, Name: "Overclock", Price: 50, MaxPurchases: MaxFireRateUpgrades, Description: "+25% fire rate"},
	{ID: ItemBomb, Name: "Screen-Clear Bomb", Price: 150, Description: "Pops every bubble on screen"},
}

// ShopCatalogMap provides lookup by item ID
var ShopCatalogMap map[string]ShopItem

func init() {
	ShopCatalogMap = make(map[string]ShopItem, len(ShopCatalog))
	for _, item := range ShopCatalog {
		ShopCatalogMap[item.ID] = item
	}
}
