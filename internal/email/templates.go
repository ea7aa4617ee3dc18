package email

import (
	"fmt"
	"strings"
)

// OrderItem carries what the templates need for one order line. Price is in
// cents.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int64
}

func BuildOrderConfirmationBody(orderID string, total int64, items []OrderItem) string {
	var rows strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			name,
			item.Quantity,
			FormatCents(item.Price),
			FormatCents(item.Price*int64(item.Quantity)),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #1a1a2e; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: #e94560; margin: 0; font-size: 24px;">Thanks for your order!</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Your haul is confirmed and being prepared for shipping.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Item</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Unit</th>
					<th style="padding: 12px; text-align: right;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total incl. shipping</span>
			<span style="font-size: 24px; font-weight: bold; color: #e94560; margin-left: 10px;">%s</span>
		</div>

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. Reply to this email and a human will get back to you.
		</p>
	</div>
</body>
</html>`, orderID, rows.String(), FormatCents(total))
}

func BuildStatusUpdateBody(customerName, orderID, status string) string {
	line := statusLine(status)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 20px;">Hi %s,</h1>
	<p>%s</p>
	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px;">
		<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
		<p style="margin: 5px 0 0 0; font-weight: bold; font-family: monospace;">%s</p>
	</div>
</body>
</html>`, customerName, line, orderID)
}

func BuildRestockAlertBody(productName, productURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 20px; color: #e94560;">It's back!</h1>
	<p><strong>%s</strong> is in stock again. These tend to sell out fast.</p>
	<p><a href="%s" style="display: inline-block; background: #e94560; color: #fff; padding: 12px 24px; border-radius: 5px; text-decoration: none;">Grab yours</a></p>
</body>
</html>`, productName, productURL)
}

func statusLabel(status string) string {
	switch status {
	case "SHIPPED":
		return "on its way"
	case "DELIVERED":
		return "delivered"
	case "CANCELLED":
		return "cancelled"
	default:
		return strings.ToLower(status)
	}
}

func statusLine(status string) string {
	switch status {
	case "SHIPPED":
		return "Good news: your order has shipped and is on its way to you."
	case "DELIVERED":
		return "Your order has been delivered. Enjoy!"
	case "CANCELLED":
		return "Your order has been cancelled. Any reserved stock has been released and you have not been charged."
	default:
		return fmt.Sprintf("Your order status changed to %s.", status)
	}
}

// FormatCents renders a minor-unit amount as dollars, e.g. 5800 -> $58.00.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
