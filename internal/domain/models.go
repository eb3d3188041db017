package domain

import "time"

// ProductStatus lifecycle state of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product represents a stocked item together with its generated QR pair
type Product struct {
	ID              string        `json:"id" gorm:"primaryKey;size:36"`
	ProductID       string        `json:"product_id" gorm:"uniqueIndex;size:64;not null"`
	Name            string        `json:"name" gorm:"size:255;not null"`
	Value           float64       `json:"value" gorm:"not null"`
	Stock           int64         `json:"stock" gorm:"not null;default:0"`
	PrintedQuantity int64         `json:"printed_quantity" gorm:"not null;default:0"`
	Status          ProductStatus `json:"status" gorm:"size:16;not null;default:active"`
	QRCodeData      string        `json:"qr_code_data,omitempty" gorm:"column:qr_code_data;type:text"`
	QRCodeImage     string        `json:"qr_code_image,omitempty" gorm:"column:qr_code_image;type:text"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// ProductPatch is a partial update. A nil field means "leave as is";
// field presence is explicit, there are no sentinel values.
type ProductPatch struct {
	Name            *string        `json:"name"`
	Value           *float64       `json:"value"`
	Stock           *int64         `json:"stock"`
	PrintedQuantity *int64         `json:"printed_quantity"`
	Status          *ProductStatus `json:"status"`
}

// Ticket is a voucher issued against product stock. It snapshots the
// product's name and value at issuance; the product reference is not
// ownership and may dangle after a product delete.
type Ticket struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	TicketNumber string     `json:"ticket_number" gorm:"uniqueIndex;size:16;not null"`
	ProductID    string     `json:"product_id" gorm:"index;size:64;not null"`
	ProductName  string     `json:"product_name" gorm:"size:255;not null"`
	ProductValue float64    `json:"product_value" gorm:"not null"`
	Quantity     int64      `json:"quantity" gorm:"not null;default:1"`
	IsRedeemed   bool       `json:"is_redeemed" gorm:"not null;default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

// StatusCheck heartbeat record, append-only
type StatusCheck struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	ClientName string    `json:"client_name" gorm:"size:255;not null"`
	Timestamp  time.Time `json:"timestamp"`
}

func (StatusCheck) TableName() string { return "status_checks" }
