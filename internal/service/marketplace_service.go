package service

import (
	"context"
	"time"

	"asset-marketplace/internal/core/domain"
	"asset-marketplace/internal/core/ledger"
	"asset-marketplace/internal/core/ports"
	"asset-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MarketplaceServiceImpl implements ports.MarketplaceService. It is the
// sole component with side effects: it validates preconditions against
// the ledger and the ownership oracle, applies ledger transitions, and
// invokes the payment sink on withdrawal.
//
// Every operation holds the ledger's per-key (or per-seller) lock for
// its full duration, external calls included. Two concurrent buys of
// the same item therefore serialize: exactly one succeeds, the other
// observes NotListed. Operations on distinct keys run in parallel.
type MarketplaceServiceImpl struct {
	ledger     *ledger.Ledger
	oracle     ports.OwnershipOracle
	sink       ports.PaymentSink
	events     ports.EventSink
	operatorID string
	log        zerolog.Logger
}

// NewMarketplaceService creates a new MarketplaceServiceImpl.
// operatorID identifies this marketplace to the ownership oracle when
// checking transfer approvals.
func NewMarketplaceService(
	led *ledger.Ledger,
	oracle ports.OwnershipOracle,
	sink ports.PaymentSink,
	events ports.EventSink,
	operatorID string,
	log zerolog.Logger,
) *MarketplaceServiceImpl {
	return &MarketplaceServiceImpl{
		ledger:     led,
		oracle:     oracle,
		sink:       sink,
		events:     events,
		operatorID: operatorID,
		log:        log,
	}
}

// ListItem puts an item up for sale. Precondition order, first failure
// wins: positive price, caller owns the item, marketplace approved to
// transfer it, item not already listed.
func (s *MarketplaceServiceImpl) ListItem(ctx context.Context, req ports.ListItemRequest) (*domain.Listing, error) {
	if req.Price <= 0 {
		return nil, apperror.ErrInvalidPrice()
	}

	key := domain.ListingKey{Asset: req.Asset, TokenID: req.TokenID}
	unlock := s.ledger.LockKey(key)
	defer unlock()

	owner, err := s.oracle.OwnerOf(ctx, req.Asset, req.TokenID)
	if err != nil {
		return nil, apperror.ErrExternalTransferFailed(err)
	}
	if owner != req.Caller {
		return nil, apperror.ErrNotOwner()
	}

	approved, err := s.oracle.IsApprovedForTransfer(ctx, req.Asset, req.TokenID, s.operatorID)
	if err != nil {
		return nil, apperror.ErrExternalTransferFailed(err)
	}
	if !approved {
		return nil, apperror.ErrNotApprovedForMarketplace()
	}

	if _, exists := s.ledger.GetListing(req.Asset, req.TokenID); exists {
		return nil, apperror.ErrAlreadyListed(req.Asset, req.TokenID)
	}

	listing := domain.Listing{
		Asset:    req.Asset,
		TokenID:  req.TokenID,
		Seller:   req.Caller,
		Price:    req.Price,
		ListedAt: time.Now().UTC(),
	}
	if err := s.ledger.PutListing(listing); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, domain.NewEvent(domain.EventItemListed, req.Asset, req.TokenID, req.Caller, req.Price))

	s.log.Info().
		Str("key", key.String()).
		Str("seller", req.Caller.String()).
		Int64("price", req.Price).
		Msg("item listed")

	return &listing, nil
}

// BuyItem purchases a listed item. The paid amount must meet the
// listing price; any excess is retained as seller proceeds rather than
// refunded. Credit, removal and the custody transfer are applied under
// the key lock, so no observer sees the listing gone without the seller
// credited or vice versa.
func (s *MarketplaceServiceImpl) BuyItem(ctx context.Context, req ports.BuyItemRequest) (*domain.Listing, error) {
	key := domain.ListingKey{Asset: req.Asset, TokenID: req.TokenID}
	unlock := s.ledger.LockKey(key)
	defer unlock()

	listing, exists := s.ledger.GetListing(req.Asset, req.TokenID)
	if !exists {
		return nil, apperror.ErrNotListed(req.Asset, req.TokenID)
	}
	if req.PaidAmount < listing.Price {
		return nil, apperror.ErrPriceNotMet(req.Asset, req.TokenID, listing.Price)
	}

	if err := s.ledger.Credit(listing.Seller, req.PaidAmount); err != nil {
		return nil, err
	}
	s.ledger.RemoveListing(req.Asset, req.TokenID)

	// The custody transfer is the last step. If the oracle fails here the
	// credit and removal are NOT compensated: the seller keeps the
	// proceeds and the failure is surfaced to the buyer. Callers must
	// treat EXT_001 on a buy as requiring manual reconciliation.
	if err := s.oracle.Transfer(ctx, req.Asset, req.TokenID, listing.Seller, req.Caller); err != nil {
		s.log.Error().Err(err).
			Str("key", key.String()).
			Str("seller", listing.Seller.String()).
			Str("buyer", req.Caller.String()).
			Int64("paid", req.PaidAmount).
			Msg("custody transfer failed after ledger mutation")
		return nil, apperror.ErrExternalTransferFailed(err)
	}

	s.events.Emit(ctx, domain.NewEvent(domain.EventItemBought, req.Asset, req.TokenID, req.Caller, req.PaidAmount))

	s.log.Info().
		Str("key", key.String()).
		Str("buyer", req.Caller.String()).
		Int64("paid", req.PaidAmount).
		Msg("item bought")

	return &listing, nil
}

// CancelListing removes an active listing. Only the seller may cancel.
func (s *MarketplaceServiceImpl) CancelListing(ctx context.Context, asset string, tokenID uint64, caller uuid.UUID) error {
	key := domain.ListingKey{Asset: asset, TokenID: tokenID}
	unlock := s.ledger.LockKey(key)
	defer unlock()

	listing, exists := s.ledger.GetListing(asset, tokenID)
	if !exists || listing.Seller != caller {
		return apperror.ErrNotOwner()
	}

	s.ledger.RemoveListing(asset, tokenID)

	s.events.Emit(ctx, domain.NewEvent(domain.EventItemCanceled, asset, tokenID, caller, 0))

	s.log.Info().
		Str("key", key.String()).
		Str("seller", caller.String()).
		Msg("listing canceled")

	return nil
}

// UpdateListing changes the price of an active listing. Only the seller
// may update. Creation and price update are observably identical: both
// emit ItemListed.
func (s *MarketplaceServiceImpl) UpdateListing(ctx context.Context, req ports.UpdateListingRequest) (*domain.Listing, error) {
	if req.NewPrice <= 0 {
		return nil, apperror.ErrInvalidPrice()
	}

	key := domain.ListingKey{Asset: req.Asset, TokenID: req.TokenID}
	unlock := s.ledger.LockKey(key)
	defer unlock()

	listing, exists := s.ledger.GetListing(req.Asset, req.TokenID)
	if !exists {
		return nil, apperror.ErrNotListed(req.Asset, req.TokenID)
	}
	if listing.Seller != req.Caller {
		return nil, apperror.ErrNotOwner()
	}

	listing.Price = req.NewPrice
	if err := s.ledger.PutListing(listing); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, domain.NewEvent(domain.EventItemListed, req.Asset, req.TokenID, req.Caller, req.NewPrice))

	s.log.Info().
		Str("key", key.String()).
		Str("seller", req.Caller.String()).
		Int64("price", req.NewPrice).
		Msg("listing price updated")

	return &listing, nil
}

// WithdrawProceeds pays out the caller's full accrued balance. The
// balance is zeroed BEFORE the payment sink is invoked: a reentrant
// withdrawal during the transfer observes balance 0 and fails with
// NoProceeds, so no double payout is possible. If the sink fails the
// zeroed balance is not restored automatically; the failure is
// surfaced as EXT_001 and requires manual reconciliation.
func (s *MarketplaceServiceImpl) WithdrawProceeds(ctx context.Context, caller uuid.UUID) (int64, error) {
	unlock := s.ledger.LockSeller(caller)
	defer unlock()

	amount, err := s.ledger.ZeroOut(caller)
	if err != nil {
		return 0, err
	}

	if err := s.sink.Pay(ctx, caller, amount); err != nil {
		s.log.Error().Err(err).
			Str("seller", caller.String()).
			Int64("amount", amount).
			Msg("payout failed after balance was zeroed")
		return 0, apperror.ErrExternalTransferFailed(err)
	}

	s.log.Info().
		Str("seller", caller.String()).
		Int64("amount", amount).
		Msg("proceeds withdrawn")

	return amount, nil
}

// GetListing returns the active listing for (asset, tokenID).
func (s *MarketplaceServiceImpl) GetListing(ctx context.Context, asset string, tokenID uint64) (*domain.Listing, error) {
	listing, exists := s.ledger.GetListing(asset, tokenID)
	if !exists {
		return nil, apperror.ErrNotListed(asset, tokenID)
	}
	return &listing, nil
}

// GetProceeds returns the seller's withdrawable balance.
func (s *MarketplaceServiceImpl) GetProceeds(ctx context.Context, seller uuid.UUID) int64 {
	return s.ledger.GetProceeds(seller)
}
