package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/artistgrade/storefront/internal/core/domain"
)

var funcs = template.FuncMap{
	"money": func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) },
	"subtotal": func(it domain.LineItem) string {
		return it.Subtotal().StringFixed(2)
	},
}

var requestConfirmationTmpl = template.Must(template.New("request").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Hello {{.Req.Name}},</p>
<p>Thank you for your custom request for <strong>{{.Req.Product}}</strong>. Our team will get back to you shortly.</p>
{{if .Req.Details}}<p><em>Details:</em> {{.Req.Details}}</p>{{end}}
<p>{{.Store}}</p>
</body></html>`))

var orderReceiptTmpl = template.Must(template.New("receipt").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Hello {{.Order.FullName}},</p>
<p>We received your order <strong>{{.Order.ID}}</strong>.</p>
<table cellpadding="4" style="border-collapse:collapse">
<tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Subtotal</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money .Price}}</td><td align="right">{{subtotal .}}</td></tr>
{{end}}<tr><td colspan="3" align="right"><strong>Total</strong></td><td align="right"><strong>{{money .Order.TotalAmount}}</strong></td></tr>
</table>
<p>Shipping to: {{.Order.Address}}, {{.Order.City}}, {{.Order.State}} {{.Order.Zip}}</p>
<p>Status: {{.Order.Status}}. The attached QR code identifies your order at pickup or support.</p>
<p>{{.Store}}</p>
</body></html>`))

func renderRequestConfirmation(store string, req *domain.CustomRequest) (string, error) {
	var buf bytes.Buffer
	if err := requestConfirmationTmpl.Execute(&buf, struct {
		Store string
		Req   *domain.CustomRequest
	}{store, req}); err != nil {
		return "", fmt.Errorf("render request confirmation: %w", err)
	}
	return buf.String(), nil
}

func renderOrderReceipt(store string, order *domain.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderReceiptTmpl.Execute(&buf, struct {
		Store string
		Order *domain.Order
	}{store, order}); err != nil {
		return "", fmt.Errorf("render order receipt: %w", err)
	}
	return buf.String(), nil
}
