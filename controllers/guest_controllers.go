package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/qr-hotel-menu/cart"
	"github.com/yeremiapane/qr-hotel-menu/middlewares"
	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/services"
	"github.com/yeremiapane/qr-hotel-menu/session"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const locationContextKey = "guest_location"

type MenuLister interface {
	ListMenu(ctx context.Context) ([]models.Category, error)
}

// GuestController serves the pages behind the room, floor and building QR codes.
type GuestController struct {
	Locations *services.LocationService
	Menu      MenuLister
	Carts     *cart.Service
	Orders    *services.OrderService
}

type cartItemRequest struct {
	ProductID uint `form:"product_id" json:"product_id" binding:"required"`
	Quantity  *int `form:"quantity" json:"quantity"`
}

// ResolveLocation loads the active location named by the :slug param.
func (gc *GuestController) ResolveLocation(kind models.LocationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		loc, err := gc.Locations.ResolveSlug(c.Request.Context(), kind, c.Param("slug"))
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}
		c.Set(locationContextKey, loc)
		c.Next()
	}
}

func currentLocation(c *gin.Context) *services.Location {
	return c.MustGet(locationContextKey).(*services.Location)
}

func (gc *GuestController) MenuPage(c *gin.Context) {
	ctx := c.Request.Context()
	loc := currentLocation(c)
	sess, err := middlewares.CurrentSession(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	menu, err := gc.Menu.ListMenu(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view, err := gc.Carts.Get(ctx, sess)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var active *services.LiveOrderView
	order, err := gc.Orders.ActiveOrder(ctx, sess, loc.Ref)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if order != nil {
		v := services.NewLiveOrderView(order)
		active = &v
	}

	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"location":     loc,
		"categories":   menu,
		"cart":         view,
		"active_order": active,
	})
}

func (gc *GuestController) GetCart(c *gin.Context) {
	sess, err := middlewares.CurrentSession(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view, err := gc.Carts.Get(c.Request.Context(), sess)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart", view)
}

func (gc *GuestController) AddToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("product_id is required"))
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	gc.mutateCart(c, "Added to cart", func(ctx context.Context, sess session.Session) (cart.View, error) {
		return gc.Carts.Add(ctx, sess, req.ProductID, quantity)
	})
}

func (gc *GuestController) UpdateCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("product_id is required"))
		return
	}
	if req.Quantity == nil {
		utils.RespondError(c, http.StatusBadRequest, models.ErrInvalidQuantity)
		return
	}
	gc.mutateCart(c, "Cart updated", func(ctx context.Context, sess session.Session) (cart.View, error) {
		return gc.Carts.Update(ctx, sess, req.ProductID, *req.Quantity)
	})
}

func (gc *GuestController) RemoveFromCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("product_id is required"))
		return
	}
	gc.mutateCart(c, "Removed from cart", func(ctx context.Context, sess session.Session) (cart.View, error) {
		return gc.Carts.Remove(ctx, sess, req.ProductID)
	})
}

func (gc *GuestController) mutateCart(c *gin.Context, message string, fn func(ctx context.Context, sess session.Session) (cart.View, error)) {
	sess, err := middlewares.CurrentSession(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view, err := fn(c.Request.Context(), sess)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, view)
}

// CreateOrder checks out the session's cart to the current location.
func (gc *GuestController) CreateOrder(c *gin.Context) {
	loc := currentLocation(c)
	sess, err := middlewares.CurrentSession(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	order, err := gc.Orders.CreateOrder(c.Request.Context(), sess, loc.Ref)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{
		"order_id":     order.ID,
		"redirect_url": statusURL(loc, order.ID),
	})
}

func (gc *GuestController) OrderStatus(c *gin.Context) {
	loc := currentLocation(c)
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := gc.Orders.GetOrderAt(c.Request.Context(), id, loc.Ref)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", services.NewLiveOrderView(order))
}

func statusURL(loc *services.Location, orderID uint) string {
	return fmt.Sprintf("%s/%s/status/%d/", loc.Ref.Kind.RoutePrefix(), loc.Slug, orderID)
}
