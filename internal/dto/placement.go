package dto

// PlacementItem is one line of an order being placed. Price is the unit price
// snapshot taken from the request.
type PlacementItem struct {
	MenuItemID string
	Quantity   int
	Price      float64
}

type PlaceOrderCommand struct {
	CustomerID      string
	RestaurantID    string
	Items           []PlacementItem
	Total           float64
	DeliveryAddress string
	DeliveryLat     *float64
	DeliveryLng     *float64
}
