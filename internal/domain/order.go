package domain

import "time"

// LineItem is the frozen copy of a product at the moment of purchase. It is
// captured once during checkout and never recomputed from the live catalog.
type LineItem struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Specification  string `json:"specification,omitempty"`
	TotalCents     int64  `json:"totalCents"`
}

// AddressSnapshot is the immutable copy of the buyer's chosen address taken
// at order time.
type AddressSnapshot struct {
	ID            string `json:"id"`
	ReceiverName  string `json:"receiverName"`
	ReceiverPhone string `json:"receiverPhone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	Detail        string `json:"detail"`
}

type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	BuyerID       string          `json:"buyerId"`
	StoreID       string          `json:"storeId"`
	Lines         []LineItem      `json:"lineItems"`
	TotalCents    int64           `json:"totalCents"`
	Address       AddressSnapshot `json:"shippingAddress"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	PaymentTime   *time.Time      `json:"paymentTime,omitempty"`
	ShippingTime  *time.Time      `json:"shippingTime,omitempty"`
	Status        Status          `json:"status"`
	RefundReason  string          `json:"refundReason,omitempty"`
	Remark        string          `json:"remark,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
