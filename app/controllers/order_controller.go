package controllers

import (
	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/resource"
)

// OrderController serves the student side of orders and the public price
// list.
type OrderController struct {
	orders  *services.OrderService
	pricing *services.PricingService
}

func NewOrderController(orders *services.OrderService, pricing *services.PricingService) *OrderController {
	return &OrderController{orders: orders, pricing: pricing}
}

// Store handles POST /api/orders.
func (o *OrderController) Store(c *ctx.Context) {
	var in services.CreateOrderInput
	if !decode(c, &in) {
		return
	}

	order, err := o.orders.Create(c.Context(), currentIdentity(c).ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(resource.Map{
		"orderId":    order.ID,
		"totalPrice": order.TotalPrice,
		"status":     order.Status,
	})
}

// Index handles GET /api/orders.
func (o *OrderController) Index(c *ctx.Context) {
	orders, err := o.orders.ListForUser(c.Context(), currentIdentity(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(resource.Collection(orders, studentOrderResource))
}

// Show handles GET /api/orders/{id}.
func (o *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		fail(c, services.ErrOrderNotFound)
		return
	}
	order, err := o.orders.GetForUser(c.Context(), currentIdentity(c).ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(resource.Item(*order, studentOrderResource))
}

// Pricing handles GET /api/pricing so the client can quote before ordering.
func (o *OrderController) Pricing(c *ctx.Context) {
	p, err := o.pricing.Current(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(resource.Item(*p, pricingResource))
}
