package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"stockpass/internal/domain"
	"stockpass/internal/repository"
	"stockpass/internal/service"
)

type Server struct {
	engine   *gin.Engine
	products *service.ProductService
	tickets  *service.TicketService
	status   *service.StatusService
}

func NewServer(products *service.ProductService, tickets *service.TicketService, status *service.StatusService) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	// no auth layer: any origin is allowed
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsCfg))

	s := &Server{engine: r, products: products, tickets: tickets, status: status}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	{
		api.GET("/", s.root)

		api.POST("/status", s.createStatusCheck)
		api.GET("/status", s.listStatusChecks)

		products := api.Group("/products")
		products.POST("", s.createProduct)
		products.GET("", s.listProducts)
		products.GET(":product_id", s.getProduct)
		products.PUT(":product_id", s.updateProduct)
		products.DELETE(":product_id", s.deleteProduct)

		tickets := api.Group("/tickets")
		tickets.POST("", s.issueTickets)
		tickets.GET("", s.listTickets)
		tickets.GET(":id", s.getTicket)
		tickets.GET("product/:product_id", s.listTicketsByProduct)
		tickets.POST("redeem", s.redeemTicket)
	}
}

// @Summary API root
// @Tags misc
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
}

// Product handlers
type createProductReq struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name" binding:"required"`
	Value     float64 `json:"value"`
	Stock     int64   `json:"stock"`
}

// @Summary Create product
// @Description Creates a product and its QR pair. product_id is optional and generated when absent.
// @Tags products
// @Accept json
// @Produce json
// @Param input body createProductReq true "Product"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Create(c, service.CreateInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Value:     req.Value,
		Stock:     req.Stock,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param status query string false "Filter by status (active|inactive)"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	if v := c.Query("status"); v != "" {
		st := domain.ProductStatus(v)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		f.Status = &st
	}
	list, err := s.products.List(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product
// @Tags products
// @Produce json
// @Param product_id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{product_id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.Get(c, c.Param("product_id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product
// @Description Partial update; only fields present in the body are applied. QR pair is recomputed when name or value changes.
// @Tags products
// @Accept json
// @Produce json
// @Param product_id path string true "Product ID"
// @Param input body domain.ProductPatch true "Patch"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{product_id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Update(c, c.Param("product_id"), patch)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Description Removes the product. Tickets referencing it are kept.
// @Tags products
// @Produce json
// @Param product_id path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{product_id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	productID := c.Param("product_id")
	if err := s.products.Delete(c, productID); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product " + productID + " deleted"})
}

// Ticket handlers
type issueTicketsReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int64 `json:"quantity"`
}

// @Summary Issue tickets
// @Description Creates quantity tickets (default 1) against the product, decrementing its stock atomically.
// @Tags tickets
// @Accept json
// @Produce json
// @Param input body issueTicketsReq true "Issuance"
// @Success 200 {array} domain.Ticket
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets [post]
func (s *Server) issueTickets(c *gin.Context) {
	var req issueTicketsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	qty := int64(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	tickets, err := s.tickets.Issue(c, req.ProductID, qty)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// @Summary List tickets
// @Tags tickets
// @Produce json
// @Success 200 {array} domain.Ticket
// @Router /tickets [get]
func (s *Server) listTickets(c *gin.Context) {
	list, err := s.tickets.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get ticket
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} domain.Ticket
// @Failure 404 {object} map[string]string
// @Router /tickets/{id} [get]
func (s *Server) getTicket(c *gin.Context) {
	t, err := s.tickets.Get(c, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary List tickets for a product
// @Tags tickets
// @Produce json
// @Param product_id path string true "Product ID"
// @Success 200 {array} domain.Ticket
// @Router /tickets/product/{product_id} [get]
func (s *Server) listTicketsByProduct(c *gin.Context) {
	list, err := s.tickets.ListByProduct(c, c.Param("product_id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

type redeemTicketReq struct {
	TicketID string `json:"ticket_id" binding:"required"`
}

// @Summary Redeem ticket
// @Description One-way redemption; a second call on the same ticket fails.
// @Tags tickets
// @Accept json
// @Produce json
// @Param input body redeemTicketReq true "Redemption"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickets/redeem [post]
func (s *Server) redeemTicket(c *gin.Context) {
	var req redeemTicketReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := s.tickets.Redeem(c, req.TicketID)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ticket redeemed", "ticket": t})
}

// Status handlers
type createStatusReq struct {
	ClientName string `json:"client_name" binding:"required"`
}

// @Summary Record status check
// @Tags status
// @Accept json
// @Produce json
// @Param input body createStatusReq true "Heartbeat"
// @Success 200 {object} domain.StatusCheck
// @Failure 400 {object} map[string]string
// @Router /status [post]
func (s *Server) createStatusCheck(c *gin.Context) {
	var req createStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	check, err := s.status.Record(c, req.ClientName)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, check)
}

// @Summary List status checks
// @Tags status
// @Produce json
// @Success 200 {array} domain.StatusCheck
// @Router /status [get]
func (s *Server) listStatusChecks(c *gin.Context) {
	list, err := s.status.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrAlreadyRedeemed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
