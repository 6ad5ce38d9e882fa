package shopify

import (
	"encoding/json"
	"fmt"
	"time"
)

// Order is the upstream order payload as returned by the Admin API.
// Money fields stay strings the way the API sends them; callers parse
// them when persisting.
type Order struct {
	ID                    int64         `json:"id"`
	OrderNumber           int64         `json:"order_number"`
	Email                 string        `json:"email"`
	Phone                 string        `json:"phone"`
	Currency              string        `json:"currency"`
	TotalPrice            string        `json:"total_price"`
	SubtotalPrice         string        `json:"subtotal_price"`
	TotalTax              string        `json:"total_tax"`
	TotalDiscounts        string        `json:"total_discounts"`
	TotalShippingPriceSet MoneySet      `json:"total_shipping_price_set"`
	FinancialStatus       string        `json:"financial_status"`
	FulfillmentStatus     string        `json:"fulfillment_status"`
	PaymentGatewayNames   []string      `json:"payment_gateway_names"`
	Tags                  string        `json:"tags"`
	Note                  string        `json:"note"`
	Customer              *Customer     `json:"customer"`
	ShippingAddress       *Address      `json:"shipping_address"`
	LineItems             []LineItem    `json:"line_items"`
	Fulfillments          []Fulfillment `json:"fulfillments"`
	Refunds               []Refund      `json:"refunds"`
	Disputes              []Dispute     `json:"disputes"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
	CancelledAt           *time.Time    `json:"cancelled_at"`
	ClosedAt              *time.Time    `json:"closed_at"`
}

// HasSuccessfulRefund reports whether any refund completed.
func (o Order) HasSuccessfulRefund() bool {
	for _, r := range o.Refunds {
		if r.Status == "success" {
			return true
		}
	}
	return false
}

// HasOpenDispute reports whether any dispute is still unresolved.
func (o Order) HasOpenDispute() bool {
	for _, d := range o.Disputes {
		if d.Status != "won" && d.Status != "lost" {
			return true
		}
	}
	return false
}

// RequiresEngraving reports whether any line item carries the
// engraving marker property.
func (o Order) RequiresEngraving() bool {
	for _, item := range o.LineItems {
		if item.RequiresEngraving() {
			return true
		}
	}
	return false
}

// LatestFulfillment returns the most recent fulfillment record, nil when none.
func (o Order) LatestFulfillment() *Fulfillment {
	if len(o.Fulfillments) == 0 {
		return nil
	}
	return &o.Fulfillments[len(o.Fulfillments)-1]
}

type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

// DisplayName prefers the API-provided name, falling back to first/last.
func (c *Customer) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.Name != "" {
		return c.Name
	}
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type Address struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Zip         string `json:"zip"`
	CountryCode string `json:"country_code"`
}

type MoneySet struct {
	ShopMoney Money `json:"shop_money"`
}

type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency_code"`
}

type LineItem struct {
	ID           int64      `json:"id"`
	ProductID    int64      `json:"product_id"`
	VariantID    int64      `json:"variant_id"`
	SKU          string     `json:"sku"`
	Title        string     `json:"title"`
	VariantTitle string     `json:"variant_title"`
	Quantity     int        `json:"quantity"`
	Price        string     `json:"price"`
	Properties   []Property `json:"properties"`
}

// Property is a free-form name/value pair attached to a line item
// (engraving text, customization options).
type Property struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ValueString renders the property value the way it was entered.
func (p Property) ValueString() string {
	switch v := p.Value.(type) {
	case string:
		return v
	case nil:
		return ""
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PropertyMap flattens properties into a lookup map. Later duplicates win.
func (li LineItem) PropertyMap() map[string]string {
	if len(li.Properties) == 0 {
		return nil
	}
	m := make(map[string]string, len(li.Properties))
	for _, p := range li.Properties {
		m[p.Name] = p.ValueString()
	}
	return m
}

func (li LineItem) RequiresEngraving() bool {
	for _, p := range li.Properties {
		if p.Name != "_requires_engraving" {
			continue
		}
		v := p.ValueString()
		return v != "" && v != "false"
	}
	return false
}

// EngravingText returns the requested engraving, empty when absent.
func (li LineItem) EngravingText() string {
	for _, p := range li.Properties {
		if p.Name == "engraving_text" {
			return p.ValueString()
		}
	}
	return ""
}

type Fulfillment struct {
	ID              int64        `json:"id"`
	Status          string       `json:"status"`
	TrackingNumber  string       `json:"tracking_number"`
	TrackingURL     string       `json:"tracking_url"`
	TrackingCompany string       `json:"tracking_company"`
	TrackingInfo    TrackingInfo `json:"tracking_info"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type TrackingInfo struct {
	Status string `json:"status"`
}

type Refund struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type Dispute struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}
