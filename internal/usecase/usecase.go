package usecase

import (
	"context"

	"github.com/DRSN-tech/pos-register/internal/domain"
)

type RegisterUC interface {
	View(ctx context.Context) (*domain.View, error)
	AddToCart(ctx context.Context, req *AddToCartReq) (*OperationRes, error)
	ClearCart(ctx context.Context) (*OperationRes, error)
	Checkout(ctx context.Context, req *CheckoutReq) (*OperationRes, error)
	AddProduct(ctx context.Context, req *AddProductReq) (*OperationRes, error)
	RemoveProduct(ctx context.Context, req *RemoveProductReq) (*OperationRes, error)
	ResetAll(ctx context.Context) (*OperationRes, error)
}
