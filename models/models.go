package models

import (
	"time"

	_ "github.com/lib/pq"
)

// SalesUser represents a row in usuarios_admin. Each console user is bound to
// exactly one vendedor_id, which partitions customers and quotations.
type SalesUser struct {
	ID         int       `json:"id" example:"1"`
	Username   string    `json:"username" example:"mgomez"`
	Password   string    `json:"-"`
	Nombre     string    `json:"nombre" example:"Maria Gomez"`
	VendedorID int       `json:"vendedor_id" example:"3"`
	Activo     bool      `json:"activo" example:"true"`
	CreatedAt  time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type Session struct {
	UserID    int       `json:"user_id" example:"1"`
	SessionID string    `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	HostName  string    `json:"host_name" example:"mgomez"`
	IPAddress string    `json:"ip_address" example:"192.168.1.10"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-16T10:30:00Z"`
}

type Customer struct {
	ID         int       `json:"id" example:"1"`
	Nombre     string    `json:"nombre" example:"Ferreteria El Tornillo"`
	Telefono   string    `json:"telefono" example:"573001234567"`
	NIT        string    `json:"nit,omitempty" example:"900123456-7"`
	Email      string    `json:"email,omitempty" example:"compras@eltornillo.co"`
	Direccion  string    `json:"direccion" example:"Calle 45 #12-30"`
	Ciudad     string    `json:"ciudad" example:"Bogota"`
	VendedorID int       `json:"vendedor_id" example:"3"`
	CreatedAt  time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// Product is the canonical product record. The source tables carry legacy
// duplicate columns (price vs price_cop, product_name vs name, image_url_png
// vs main_image_url); storage resolves those with COALESCE so nothing past the
// data-access boundary ever sees them.
type Product struct {
	ID               int       `json:"id" example:"1"`
	SKU              string    `json:"sku" example:"PROD-001"`
	Name             string    `json:"product_name" example:"Teclado Mecanico RGB"`
	Brand            string    `json:"brand,omitempty" example:"Logitech"`
	PriceCOP         float64   `json:"price_cop" example:"185000"`
	ShortDescription string    `json:"short_description,omitempty" example:"Switch azul, retroiluminado"`
	Description      string    `json:"description,omitempty"`
	ImageURL         string    `json:"image_url,omitempty" example:"https://cdn.example.com/p/1.png"`
	AvailableStock   int       `json:"available_stock" example:"12"`
	WarrantyMonths   int       `json:"warranty_months" example:"12"`
	CategoryID       *int      `json:"category_id,omitempty" example:"2"`
	SubcategoryID    *int      `json:"subcategory_id,omitempty" example:"5"`
	IsActive         bool      `json:"is_active" example:"true"`
	IsFeatured       bool      `json:"is_featured" example:"false"`
	CategoryName     string    `json:"category_name,omitempty" example:"Perifericos"`
	CreatedAt        time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type Category struct {
	ID        int       `json:"id" example:"1"`
	Name      string    `json:"name" example:"Perifericos"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type Subcategory struct {
	ID         int       `json:"id" example:"5"`
	CategoryID int       `json:"category_id" example:"1"`
	Name       string    `json:"name" example:"Teclados"`
	CreatedAt  time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// Quotation statuses as stored in cotizaciones.estado.
const (
	QuotationPending  = "pendiente"
	QuotationAccepted = "aceptada"
	QuotationRejected = "rechazada"
)

type Quotation struct {
	ID            int       `json:"id" example:"1"`
	Numero        int       `json:"numero" example:"1042"`
	ClienteID     int       `json:"cliente_id" example:"1"`
	VendedorID    int       `json:"vendedor_id" example:"3"`
	Fecha         time.Time `json:"fecha" example:"2024-01-15T10:30:00Z"`
	Subtotal      float64   `json:"subtotal" example:"150000"`
	Descuento     float64   `json:"descuento" example:"10"`
	IVA           float64   `json:"iva" example:"19"`
	Total         float64   `json:"total" example:"160650"`
	ValidezDias   int       `json:"validez_dias" example:"5"`
	Observaciones string    `json:"observaciones,omitempty"`
	Estado        string    `json:"estado" example:"pendiente"`
	ClienteNombre string    `json:"cliente_nombre,omitempty" example:"Ferreteria El Tornillo"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// QuotationItem is one line of a quotation. ProductoID is nil for ad-hoc
// items; PrecioUnitario is snapshotted at creation and never follows later
// product price changes.
type QuotationItem struct {
	ID             int     `json:"id" example:"1"`
	CotizacionID   int     `json:"cotizacion_id" example:"1"`
	ProductoID     *int    `json:"producto_id,omitempty" example:"7"`
	Descripcion    string  `json:"descripcion,omitempty" example:"Instalacion en sitio"`
	Cantidad       int     `json:"cantidad" example:"3"`
	PrecioUnitario float64 `json:"precio_unitario" example:"50000"`
	Subtotal       float64 `json:"subtotal" example:"150000"`
}

// QuotationItemView is a line item resolved against the product catalog for
// rendering: canonical name, flattened description and image reference.
type QuotationItemView struct {
	ProductName    string  `json:"product_name"`
	Description    string  `json:"description,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Subtotal       float64 `json:"subtotal"`
}

// QuotationView is the fully-resolved document the renderers and the detail
// endpoint work from.
type QuotationView struct {
	Quotation Quotation           `json:"cotizacion"`
	Cliente   Customer            `json:"cliente"`
	Items     []QuotationItemView `json:"items"`
}

// ==================== REQUEST PAYLOADS ====================

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"mgomez"`
	Password string `json:"password" binding:"required" example:"secret"`
	IP       string `json:"ip,omitempty" example:"192.168.1.10"`
}

type CreateCustomerRequest struct {
	Nombre    string `json:"nombre" binding:"required" example:"Ferreteria El Tornillo"`
	Telefono  string `json:"telefono" example:"573001234567"`
	NIT       string `json:"nit" example:"900123456-7"`
	Email     string `json:"email" example:"compras@eltornillo.co"`
	Direccion string `json:"direccion" example:"Calle 45 #12-30"`
	Ciudad    string `json:"ciudad" example:"Bogota"`
}

type CreateProductRequest struct {
	SKU              string  `json:"sku" binding:"required" example:"PROD-001"`
	Name             string  `json:"product_name" binding:"required" example:"Teclado Mecanico RGB"`
	Brand            string  `json:"brand" example:"Logitech"`
	PriceCOP         float64 `json:"price_cop" example:"185000"`
	ShortDescription string  `json:"short_description"`
	Description      string  `json:"description"`
	ImageURL         string  `json:"image_url"`
	AvailableStock   int     `json:"available_stock" example:"12"`
	WarrantyMonths   int     `json:"warranty_months" example:"12"`
	CategoryID       *int    `json:"category_id"`
	SubcategoryID    *int    `json:"subcategory_id"`
}

type QuotationItemRequest struct {
	ProductoID     *int    `json:"producto_id"`
	Descripcion    string  `json:"descripcion"`
	Cantidad       int     `json:"cantidad" binding:"required" example:"3"`
	PrecioUnitario float64 `json:"precio_unitario" example:"50000"`
}

type CreateQuotationRequest struct {
	ClienteID     int                    `json:"cliente_id" example:"1"`
	Descuento     float64                `json:"descuento" example:"10"`
	IVA           float64                `json:"iva" example:"19"`
	ValidezDias   int                    `json:"validez_dias" example:"5"`
	Observaciones string                 `json:"observaciones"`
	Items         []QuotationItemRequest `json:"items"`
}

type UpdateQuotationStatusRequest struct {
	Estado string `json:"estado" binding:"required" example:"aceptada"`
}

// ==================== RESPONSE ENVELOPES ====================

type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid session"`
	Details string `json:"details,omitempty"`
}

type LoginResponse struct {
	Message     string    `json:"message" example:"Login successful"`
	AccessToken string    `json:"access_token"`
	SessionID   string    `json:"session_id"`
	ExpiresIn   int       `json:"expires_in" example:"86400"`
	User        SalesUser `json:"user"`
}

type CustomerResponse struct {
	Success bool      `json:"success" example:"true"`
	Message string    `json:"message" example:"Customer created successfully"`
	Data    *Customer `json:"data,omitempty"`
}

type CustomerListResponse struct {
	Success bool       `json:"success" example:"true"`
	Message string     `json:"message" example:"Customers retrieved successfully"`
	Data    []Customer `json:"data"`
}

type ProductResponse struct {
	Success bool     `json:"success" example:"true"`
	Message string   `json:"message" example:"Product created successfully"`
	Data    *Product `json:"data,omitempty"`
}

type ProductListResponse struct {
	Success bool      `json:"success" example:"true"`
	Message string    `json:"message" example:"Products retrieved successfully"`
	Data    []Product `json:"data"`
}

type CategoryResponse struct {
	Success bool      `json:"success" example:"true"`
	Message string    `json:"message" example:"Category created successfully"`
	Data    *Category `json:"data,omitempty"`
}

type CategoryListResponse struct {
	Success       bool          `json:"success" example:"true"`
	Message       string        `json:"message" example:"Categories retrieved successfully"`
	Data          []Category    `json:"data"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

type QuotationResponse struct {
	Success bool       `json:"success" example:"true"`
	Message string     `json:"message" example:"Quotation created successfully"`
	Data    *Quotation `json:"data,omitempty"`
}

type QuotationListResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Quotations retrieved successfully"`
	Data    []Quotation `json:"data"`
}

type QuotationViewResponse struct {
	Success bool           `json:"success" example:"true"`
	Message string         `json:"message" example:"Quotation retrieved successfully"`
	Data    *QuotationView `json:"data,omitempty"`
}

type DashboardStats struct {
	Cotizaciones int `json:"cotizaciones" example:"42"`
	Clientes     int `json:"clientes" example:"17"`
	Productos    int `json:"productos" example:"130"`
}

type ReportStats struct {
	TotalCotizaciones   int     `json:"total_cotizaciones" example:"42"`
	TotalVentas         float64 `json:"total_ventas" example:"12400000"`
	CotizacionesEsteMes int     `json:"cotizaciones_este_mes" example:"6"`
	VentasEsteMes       float64 `json:"ventas_este_mes" example:"2100000"`
	ClientesActivos     int     `json:"clientes_activos" example:"17"`
}

type WhatsAppLinkResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
	URL     string `json:"url" example:"https://wa.me/573001234567?text=..."`
	Mensaje string `json:"mensaje,omitempty"`
}
