package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// BuildOrderMessage renders the human-readable order summary the operator
// receives through the messenger hand-off. Items are grouped per restaurant,
// matching the storefront's cart layout.
func BuildOrderMessage(o *Order) string {
	var b strings.Builder

	b.WriteString("🛒 E-Run Calinan Delivery ORDER\n\n")
	fmt.Fprintf(&b, "👤 Customer: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "📞 Contact: %s\n", o.ContactNumber)
	b.WriteString("📍 Service: Delivery\n")
	fmt.Fprintf(&b, "🏠 Address: %s\n", o.Address)
	if o.Landmark != "" {
		fmt.Fprintf(&b, "🗺️ Landmark: %s\n", o.Landmark)
	}

	b.WriteString("\n📋 ORDER DETAILS:\n")
	for _, group := range groupByRestaurant(o.Items) {
		fmt.Fprintf(&b, "\n🏪 %s\n", group.name)
		for _, item := range group.items {
			line := "• " + item.Name
			if item.Variation != "" {
				line += fmt.Sprintf(" (%s)", item.Variation)
			}
			if len(item.AddOns) > 0 {
				parts := make([]string, len(item.AddOns))
				for i, a := range item.AddOns {
					parts[i] = a.Name
					if a.Quantity > 1 {
						parts[i] = fmt.Sprintf("%s x%d", a.Name, a.Quantity)
					}
				}
				line += " + " + strings.Join(parts, ", ")
			}
			lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			fmt.Fprintf(&b, "%s x%d - ₱%s\n", line, item.Quantity, lineTotal.StringFixed(2))
		}
	}

	fmt.Fprintf(&b, "\n💰 Subtotal: ₱%s\n", o.Subtotal.StringFixed(2))
	if o.DistanceKm > 0 {
		fmt.Fprintf(&b, "🛵 Delivery Fee: ₱%s (%.1f km)\n", o.DeliveryFee.StringFixed(2), o.DistanceKm)
	} else {
		fmt.Fprintf(&b, "🛵 Delivery Fee: ₱%s\n", o.DeliveryFee.StringFixed(2))
	}
	if o.PromoCode != "" {
		fmt.Fprintf(&b, "🏷️ Promo Code: %s (-₱%s)\n", o.PromoCode, o.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "💰 TOTAL: ₱%s\n", o.Total.StringFixed(2))

	b.WriteString("\n⚠️ Notice: The price will be different at the store or restaurant.\n")
	fmt.Fprintf(&b, "\n💳 Payment: %s\n", o.PaymentMethod)
	b.WriteString("📸 Payment Screenshot: Please attach your payment receipt screenshot\n")
	if o.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Notes: %s\n", o.Notes)
	}
	b.WriteString("\nPlease confirm this order to proceed. Thank you for choosing E-Run Calinan Delivery! 🛵")

	return b.String()
}

// MessengerLink builds the m.me deep link that opens the operator chat with
// the order summary pre-filled.
func MessengerLink(pageID, message string) string {
	return "https://m.me/" + pageID + "?text=" + url.QueryEscape(message)
}

type restaurantGroup struct {
	name  string
	items []OrderItem
}

// groupByRestaurant groups items preserving first-seen restaurant order.
func groupByRestaurant(items []OrderItem) []restaurantGroup {
	var groups []restaurantGroup
	index := make(map[string]int)

	for _, item := range items {
		name := item.RestaurantName
		if name == "" {
			name = "Other Items"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, restaurantGroup{name: name})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}
