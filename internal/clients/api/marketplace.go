package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

// Ensure Client implements MarketplaceClient
var _ interfaces.MarketplaceClient = (*Client)(nil)

// ListProducts retrieves the public product catalog
func (c *Client) ListProducts(ctx context.Context) ([]*models.Product, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/api/products/", retryable: true})
	if err != nil {
		return nil, err
	}
	data, err := decodeList[productData](body, "products")
	if err != nil {
		return nil, err
	}
	return productsToModels(data), nil
}

// GetProduct retrieves a single product by ID
func (c *Client) GetProduct(ctx context.Context, token, id string) (*models.Product, error) {
	if id == "" {
		return nil, &models.ValidationError{Field: "product_id", Message: "product id is required"}
	}
	path := fmt.Sprintf("/api/products/%s", url.PathEscape(id))
	body, err := c.do(ctx, request{method: http.MethodGet, path: path, token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	data, err := decodeObject[productData](body, "product")
	if err != nil {
		return nil, err
	}
	return data.toModel(), nil
}

// ListRecommendations retrieves products recommended for the token's user
func (c *Client) ListRecommendations(ctx context.Context, token string) ([]*models.Product, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/api/products/recommendations", token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	data, err := decodeList[productData](body, "recommendations", "products")
	if err != nil {
		return nil, err
	}
	return productsToModels(data), nil
}

// ListInvestments retrieves the token user's investments in server order
func (c *Client) ListInvestments(ctx context.Context, token string) ([]*models.Investment, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/api/investments/", token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	data, err := decodeList[investmentData](body, "investments")
	if err != nil {
		return nil, err
	}
	out := make([]*models.Investment, 0, len(data))
	for i := range data {
		out = append(out, data[i].toModel())
	}
	return out, nil
}

type createInvestmentRequest struct {
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
}

// CreateInvestment purchases a product. Never retried.
func (c *Client) CreateInvestment(ctx context.Context, token, productID string, amount float64) (*models.Investment, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/investments/create",
		token:  token,
		body:   createInvestmentRequest{ProductID: productID, Amount: amount},
	})
	if err != nil {
		return nil, err
	}
	// The server has accepted the purchase; an unreadable body only loses
	// fields the caller fills from its validated inputs.
	data, err := decodeObject[investmentData](body, "investment")
	if err != nil {
		c.logger.Warn().Err(err).Str("product_id", productID).Msg("Investment created but response body unreadable")
		return &models.Investment{ProductID: productID}, nil
	}
	inv := data.toModel()
	if inv.ProductID == "" {
		inv.ProductID = productID
	}
	return inv, nil
}

// CancelInvestment flags an investment as cancelled. Cancel is idempotent
// and retried like a read.
func (c *Client) CancelInvestment(ctx context.Context, token, id string) error {
	if id == "" {
		return &models.ValidationError{Field: "investment_id", Message: "investment id is required"}
	}
	path := fmt.Sprintf("/api/investments/%s/cancel", url.PathEscape(id))
	_, err := c.do(ctx, request{method: http.MethodPatch, path: path, token: token, retryable: true})
	return err
}

// GetInsights retrieves the server-side portfolio analysis
func (c *Client) GetInsights(ctx context.Context, token string) (*models.Insights, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/api/insights/", token: token, retryable: true})
	if err != nil {
		return nil, err
	}
	data, err := decodeObject[insightsData](body, "insights")
	if err != nil {
		return nil, err
	}
	return data.toModel(), nil
}

type loginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Login authenticates and returns the user with a bearer token
func (c *Client) Login(ctx context.Context, email, password string, role models.Role) (*models.Session, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   loginRequest{Email: email, Password: password, Role: role},
	})
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}

// Signup registers a new account
func (c *Client) Signup(ctx context.Context, req *models.SignupRequest) (*models.Session, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/signup",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}
