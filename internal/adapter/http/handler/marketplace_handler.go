package handler

import (
	"strconv"
	"time"

	"asset-marketplace/internal/adapter/http/dto"
	"asset-marketplace/internal/adapter/http/middleware"
	"asset-marketplace/internal/core/domain"
	"asset-marketplace/internal/core/ports"
	"asset-marketplace/pkg/apperror"
	"asset-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// MarketplaceHandler handles listing and proceeds endpoints.
type MarketplaceHandler struct {
	marketSvc     ports.MarketplaceService
	priceDecimals int32
}

// NewMarketplaceHandler creates a new MarketplaceHandler.
func NewMarketplaceHandler(marketSvc ports.MarketplaceService, priceDecimals int32) *MarketplaceHandler {
	return &MarketplaceHandler{marketSvc: marketSvc, priceDecimals: priceDecimals}
}

// ListItem handles POST /api/v1/listings.
func (h *MarketplaceHandler) ListItem(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	price, err := dto.ParsePrice(req.Price, h.priceDecimals)
	if err != nil {
		response.Error(c, apperror.ErrInvalidPrice())
		return
	}

	listing, err := h.marketSvc.ListItem(c.Request.Context(), ports.ListItemRequest{
		Asset:   req.Asset,
		TokenID: req.TokenID,
		Price:   price,
		Caller:  caller,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, h.toListingResponse(listing))
}

// GetListing handles GET /api/v1/listings/:asset/:id.
func (h *MarketplaceHandler) GetListing(c *gin.Context) {
	asset, tokenID, err := listingParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	listing, err := h.marketSvc.GetListing(c.Request.Context(), asset, tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.toListingResponse(listing))
}

// BuyItem handles POST /api/v1/listings/:asset/:id/buy.
func (h *MarketplaceHandler) BuyItem(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	asset, tokenID, err := listingParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.BuyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	paid, err := dto.ParsePrice(req.PaidAmount, h.priceDecimals)
	if err != nil {
		response.Error(c, apperror.Validation("invalid paid_amount"))
		return
	}

	listing, err := h.marketSvc.BuyItem(c.Request.Context(), ports.BuyItemRequest{
		Asset:      asset,
		TokenID:    tokenID,
		PaidAmount: paid,
		Caller:     caller,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.toListingResponse(listing))
}

// CancelListing handles DELETE /api/v1/listings/:asset/:id.
func (h *MarketplaceHandler) CancelListing(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	asset, tokenID, err := listingParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.marketSvc.CancelListing(c.Request.Context(), asset, tokenID, caller); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"canceled": true})
}

// UpdateListing handles PUT /api/v1/listings/:asset/:id.
func (h *MarketplaceHandler) UpdateListing(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	asset, tokenID, err := listingParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	price, err := dto.ParsePrice(req.Price, h.priceDecimals)
	if err != nil {
		response.Error(c, apperror.ErrInvalidPrice())
		return
	}

	listing, err := h.marketSvc.UpdateListing(c.Request.Context(), ports.UpdateListingRequest{
		Asset:    asset,
		TokenID:  tokenID,
		NewPrice: price,
		Caller:   caller,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, h.toListingResponse(listing))
}

// WithdrawProceeds handles POST /api/v1/proceeds/withdraw.
func (h *MarketplaceHandler) WithdrawProceeds(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	amount, err := h.marketSvc.WithdrawProceeds(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WithdrawResponse{
		Amount: dto.FormatPrice(amount, h.priceDecimals),
	})
}

// GetProceeds handles GET /api/v1/proceeds.
func (h *MarketplaceHandler) GetProceeds(c *gin.Context) {
	caller, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance := h.marketSvc.GetProceeds(c.Request.Context(), caller)
	response.OK(c, dto.ProceedsResponse{
		Balance: dto.FormatPrice(balance, h.priceDecimals),
	})
}

func (h *MarketplaceHandler) toListingResponse(l *domain.Listing) dto.ListingResponse {
	return dto.ListingResponse{
		Asset:    l.Asset,
		TokenID:  l.TokenID,
		Seller:   l.Seller.String(),
		Price:    dto.FormatPrice(l.Price, h.priceDecimals),
		ListedAt: l.ListedAt.UTC().Format(time.RFC3339),
	}
}

func listingParams(c *gin.Context) (string, uint64, error) {
	asset := c.Param("asset")
	if asset == "" {
		return "", 0, apperror.Validation("asset is required")
	}
	tokenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return "", 0, apperror.Validation("invalid token id")
	}
	return asset, tokenID, nil
}
