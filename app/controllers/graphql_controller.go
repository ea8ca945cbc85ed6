package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/services"
	gql "github.com/shashiranjanraj/groupcart/pkg/graphql"
)

// GraphQLController exposes groups and settled orders as a read-only
// GraphQL query. Money is returned as decimal strings.
type GraphQLController struct {
	handler http.HandlerFunc
}

func NewGraphQLController(groups *services.GroupService, orders *services.OrderService) (*GraphQLController, error) {
	schema, err := gql.NewSchema(settlementQuery(groups, orders))
	if err != nil {
		return nil, err
	}
	return &GraphQLController{handler: gql.Handler(schema)}, nil
}

func (c *GraphQLController) Query(w http.ResponseWriter, r *http.Request) {
	c.handler(w, r)
}

// money resolves a decimal field picked by get.
func money[T any](get func(T) decimal.Decimal) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, ok := p.Source.(T)
		if !ok {
			return nil, nil
		}
		return get(v).StringFixed(2), nil
	}
}

func timestamp[T any](get func(T) *time.Time) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, ok := p.Source.(T)
		if !ok {
			return nil, nil
		}
		if t := get(v); t != nil {
			return t.UTC().Format(time.RFC3339), nil
		}
		return nil, nil
	}
}

func settlementQuery(groups *services.GroupService, orders *services.OrderService) *graphql.Object {
	member := graphql.NewObject(graphql.ObjectConfig{
		Name: "Member",
		Fields: graphql.Fields{
			"email":     &graphql.Field{Type: graphql.String},
			"firstName": &graphql.Field{Type: graphql.String},
		},
	})

	group := graphql.NewObject(graphql.ObjectConfig{
		Name: "Group",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.ID},
			"code":              &graphql.Field{Type: graphql.String},
			"status":            &graphql.Field{Type: graphql.String},
			"restaurantName":    &graphql.Field{Type: graphql.String},
			"checkoutUserEmail": &graphql.Field{Type: graphql.String},
			"venmoHandle":       &graphql.Field{Type: graphql.String},
			"members": &graphql.Field{
				Type: graphql.NewList(member),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					g, _ := p.Source.(models.Group)
					return groups.Members(p.Context, g.ID)
				},
			},
		},
	})

	item := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.Fields{
			"itemName":     &graphql.Field{Type: graphql.String},
			"quantity":     &graphql.Field{Type: graphql.Int},
			"addedByName":  &graphql.Field{Type: graphql.String},
			"addedByEmail": &graphql.Field{Type: graphql.String},
			"price": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(i models.OrderItem) decimal.Decimal { return i.Price }),
			},
		},
	})

	summary := graphql.NewObject(graphql.ObjectConfig{
		Name: "UserSummary",
		Fields: graphql.Fields{
			"userEmail":   &graphql.Field{Type: graphql.String},
			"userName":    &graphql.Field{Type: graphql.String},
			"invoiceSent": &graphql.Field{Type: graphql.Boolean},
			"subtotal": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(s models.UserOrderSummary) decimal.Decimal { return s.Subtotal }),
			},
			"taxAmount": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(s models.UserOrderSummary) decimal.Decimal { return s.TaxAmount }),
			},
			"tipAmount": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(s models.UserOrderSummary) decimal.Decimal { return s.TipAmount }),
			},
			"totalAmount": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(s models.UserOrderSummary) decimal.Decimal { return s.TotalAmount }),
			},
		},
	})

	order := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(services.OrderDetail).Order.ID, nil
				},
			},
			"groupId": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(services.OrderDetail).Order.GroupID, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(p.Source.(services.OrderDetail).Order.Status), nil
				},
			},
			"invoicesSent": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(services.OrderDetail).Order.InvoicesSent, nil
				},
			},
			"deliveryEta": &graphql.Field{
				Type:    graphql.String,
				Resolve: timestamp(func(d services.OrderDetail) *time.Time { return d.Order.DeliveryETA }),
			},
			"subtotal": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(d services.OrderDetail) decimal.Decimal { return d.Order.Subtotal }),
			},
			"taxRate": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(services.OrderDetail).Order.TaxRate.String(), nil
				},
			},
			"tipRate": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(services.OrderDetail).Order.TipRate.String(), nil
				},
			},
			"taxAmount": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(d services.OrderDetail) decimal.Decimal { return d.Order.TaxAmount }),
			},
			"tipAmount": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(d services.OrderDetail) decimal.Decimal { return d.Order.TipAmount }),
			},
			"totalAmount": &graphql.Field{
				Type:    graphql.String,
				Resolve: money(func(d services.OrderDetail) decimal.Decimal { return d.Order.TotalAmount }),
			},
			"items":         &graphql.Field{Type: graphql.NewList(item)},
			"userSummaries": &graphql.Field{Type: graphql.NewList(summary)},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"group": &graphql.Field{
				Type: group,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return groups.Get(p.Context, id)
				},
			},
			"order": &graphql.Field{
				Type:        order,
				Description: "An order by id, or the order placed by groupId.",
				Args: graphql.FieldConfigArgument{
					"id":      &graphql.ArgumentConfig{Type: graphql.ID},
					"groupId": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if id, ok := p.Args["id"].(string); ok && id != "" {
						return orders.Get(p.Context, id)
					}
					if gid, ok := p.Args["groupId"].(string); ok && gid != "" {
						return orders.ByGroup(p.Context, gid)
					}
					return nil, errors.New("id or groupId is required")
				},
			},
		},
	})
}
