package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/dto"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CommerceService interface {
	AddToCart(ctx context.Context, user *model.User, gameID uint) (*dto.Message, error)
	Cart(ctx context.Context, user *model.User) ([]*dto.CartItemResponse, error)
	RemoveFromCart(ctx context.Context, user *model.User, itemID uint) (*dto.Message, error)
	Checkout(ctx context.Context, user *model.User, req *dto.CheckoutRequest) (*dto.OrderResponse, error)
	CreatePaymentIntent(ctx context.Context, user *model.User, req *dto.CreateIntentRequest) (*dto.CreateIntentResponse, error)
	ConfirmCheckout(ctx context.Context, user *model.User, req *dto.ConfirmCheckoutRequest) (*dto.OrderResponse, error)
	History(ctx context.Context, user *model.User) ([]*dto.OrderResponse, error)
}

type commerceServiceImpl struct {
	db          *gorm.DB
	checkoutCfg config.Checkout
	stripeCfg   config.Stripe
	stripe      client.StripeClient
	gameRepo    repository.GameRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	libraryRepo repository.LibraryRepository
	notifier    NotificationService
	logger      zerolog.Logger
}

func NewCommerceService(
	db *gorm.DB,
	checkoutCfg config.Checkout,
	stripeCfg config.Stripe,
	stripe client.StripeClient,
	gameRepo repository.GameRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	libraryRepo repository.LibraryRepository,
	notifier NotificationService,
	logger zerolog.Logger,
) CommerceService {
	return &commerceServiceImpl{
		db:          db,
		checkoutCfg: checkoutCfg,
		stripeCfg:   stripeCfg,
		stripe:      stripe,
		gameRepo:    gameRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		libraryRepo: libraryRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *commerceServiceImpl) AddToCart(ctx context.Context, user *model.User, gameID uint) (*dto.Message, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup game: %w", err)
	}
	if err != nil || game.State != model.StateApproved {
		return nil, apperr.NotFound("Juego no encontrado")
	}

	exists, err := s.cartRepo.Exists(ctx, user.ID, gameID)
	if err != nil {
		return nil, fmt.Errorf("check cart: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Ya está en el carrito")
	}

	if err := s.cartRepo.Create(ctx, &model.CartItem{UserID: user.ID, GameID: gameID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Ya está en el carrito")
		}
		return nil, fmt.Errorf("create cart item: %w", err)
	}

	return dto.OK("Juego agregado al carrito"), nil
}

func (s *commerceServiceImpl) Cart(ctx context.Context, user *model.User) ([]*dto.CartItemResponse, error) {
	items, err := s.cartRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	gameIDs := make([]uint, len(items))
	for i, item := range items {
		gameIDs[i] = item.GameID
	}

	gamesByID, err := s.gamesByID(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.CartItemResponse, len(items))
	for i, item := range items {
		resp := &dto.CartItemResponse{
			ID:      item.ID,
			GameID:  item.GameID,
			AddedAt: item.CreatedAt,
		}
		if g, ok := gamesByID[item.GameID]; ok {
			resp.Game = dto.NewGameSummary(g)
		}
		out[i] = resp
	}

	return out, nil
}

func (s *commerceServiceImpl) RemoveFromCart(ctx context.Context, user *model.User, itemID uint) (*dto.Message, error) {
	item, err := s.cartRepo.FindByIDAndUser(ctx, itemID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Item no encontrado")
		}
		return nil, fmt.Errorf("lookup cart item: %w", err)
	}

	if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}

	return dto.OK("Item eliminado del carrito"), nil
}

func (s *commerceServiceImpl) Checkout(ctx context.Context, user *model.User, req *dto.CheckoutRequest) (*dto.OrderResponse, error) {
	games, err := s.loadOrderGames(ctx, req.GameIDs)
	if err != nil {
		return nil, err
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "tarjeta"
	}

	totals := s.computeTotals(games, false)

	order, err := s.fulfillOrder(ctx, user, games, totals, paymentMethod)
	if err != nil {
		return nil, err
	}

	return s.orderResponse(ctx, order)
}

func (s *commerceServiceImpl) CreatePaymentIntent(ctx context.Context, user *model.User, req *dto.CreateIntentRequest) (*dto.CreateIntentResponse, error) {
	games, err := s.loadOrderGames(ctx, req.GameIDs)
	if err != nil {
		return nil, err
	}

	// amount is always recomputed from current prices, never trusted from
	// the client
	totals := s.computeTotals(games, true)
	amountCents := totals.total.Shift(2).IntPart()

	metadata := map[string]string{
		"user_id": strconv.FormatUint(uint64(user.ID), 10),
	}

	intent, err := s.stripe.CreatePaymentIntent(ctx, amountCents, "usd", metadata)
	if err != nil {
		return nil, apperr.Upstream("No se pudo iniciar el pago", err)
	}

	s.logger.Info().
		Str("intent_id", intent.ID).
		Int64("amount_cents", amountCents).
		Uint("user_id", user.ID).
		Msg("payment intent created")

	return &dto.CreateIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Total:        totals.total.InexactFloat64(),
	}, nil
}

func (s *commerceServiceImpl) ConfirmCheckout(ctx context.Context, user *model.User, req *dto.ConfirmCheckoutRequest) (*dto.OrderResponse, error) {
	games, err := s.loadOrderGames(ctx, req.GameIDs)
	if err != nil {
		return nil, err
	}

	intent, err := s.stripe.GetPaymentIntent(ctx, req.IntentID)
	if err != nil {
		return nil, apperr.Upstream("No se pudo verificar el pago", err)
	}

	if intent.Status != "succeeded" {
		return nil, apperr.PaymentNotCompleted("El pago no se ha completado")
	}
	if intent.Metadata["user_id"] != strconv.FormatUint(uint64(user.ID), 10) {
		return nil, apperr.PaymentMismatch("El pago no corresponde a este usuario")
	}

	totals := s.computeTotals(games, true)
	if intent.Amount != totals.total.Shift(2).IntPart() {
		return nil, apperr.PaymentMismatch("El monto pagado no coincide con el total de la compra")
	}

	order, err := s.fulfillOrder(ctx, user, games, totals, "stripe")
	if err != nil {
		return nil, err
	}

	return s.orderResponse(ctx, order)
}

func (s *commerceServiceImpl) History(ctx context.Context, user *model.User) ([]*dto.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orderIDs := make([]uint, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	lines, err := s.orderRepo.LinesByOrders(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}

	gameIDs := make([]uint, 0, len(lines))
	for _, line := range lines {
		gameIDs = append(gameIDs, line.GameID)
	}

	gamesByID, err := s.gamesByID(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	linesByOrder := make(map[uint][]*dto.OrderLineResponse)
	for _, line := range lines {
		resp := &dto.OrderLineResponse{
			ID:     line.ID,
			GameID: line.GameID,
			Price:  line.Price,
		}
		if g, ok := gamesByID[line.GameID]; ok {
			resp.Game = dto.NewGameSummary(g)
		}
		linesByOrder[line.OrderID] = append(linesByOrder[line.OrderID], resp)
	}

	out := make([]*dto.OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = dto.NewOrderResponse(o, linesByOrder[o.ID])
	}

	return out, nil
}

type orderTotals struct {
	subtotal decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
}

// computeTotals prices the order from current catalog prices. Money math is
// done in decimals, floats only appear at the storage boundary.
func (s *commerceServiceImpl) computeTotals(games []*model.Game, withProcessingFee bool) orderTotals {
	subtotal := decimal.Zero
	for _, g := range games {
		subtotal = subtotal.Add(decimal.NewFromFloat(g.Price))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(decimal.NewFromFloat(s.checkoutCfg.TaxRate)).Round(2)
	total := subtotal.Add(tax)

	if withProcessingFee {
		total = total.Add(decimal.NewFromFloat(s.stripeCfg.ProcessingFee)).Round(2)
	}

	return orderTotals{subtotal: subtotal, tax: tax, total: total}
}

func (s *commerceServiceImpl) loadOrderGames(ctx context.Context, gameIDs []uint) ([]*model.Game, error) {
	games, err := s.gameRepo.FindMany(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}

	if len(games) != len(gameIDs) {
		return nil, apperr.NotFound("Algunos juegos no existen")
	}

	return games, nil
}

func (s *commerceServiceImpl) gamesByID(ctx context.Context, gameIDs []uint) (map[uint]*model.Game, error) {
	if len(gameIDs) == 0 {
		return map[uint]*model.Game{}, nil
	}

	games, err := s.gameRepo.FindMany(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}

	byID := make(map[uint]*model.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	return byID, nil
}

// fulfillOrder writes the order, its lines, the library grants and the stat
// bumps in one transaction, then clears the purchased games from the cart.
// The confirmation mail goes out only after the commit.
func (s *commerceServiceImpl) fulfillOrder(ctx context.Context, user *model.User, games []*model.Game, totals orderTotals, paymentMethod string) (*model.Order, error) {
	orderNumber, err := generateOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	order := &model.Order{
		UserID:        user.ID,
		Subtotal:      totals.subtotal.InexactFloat64(),
		Tax:           totals.tax.InexactFloat64(),
		Total:         totals.total.InexactFloat64(),
		Status:        model.OrderCompleted,
		PaymentMethod: paymentMethod,
		OrderNumber:   orderNumber,
	}

	gameIDs := make([]uint, len(games))
	for i, g := range games {
		gameIDs[i] = g.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		lines := make([]*model.OrderLine, len(games))
		for i, g := range games {
			lines[i] = &model.OrderLine{
				OrderID: order.ID,
				GameID:  g.ID,
				Price:   g.Price,
			}
		}
		if err := s.orderRepo.CreateLines(ctx, tx, lines); err != nil {
			return fmt.Errorf("create order lines: %w", err)
		}

		for _, g := range games {
			// already-owned games stay granted, repeat purchases never fail
			if err := s.libraryRepo.Grant(ctx, tx, &model.LibraryItem{
				UserID: user.ID,
				GameID: g.ID,
				IsFree: false,
			}); err != nil {
				return fmt.Errorf("grant library item: %w", err)
			}

			if err := s.gameRepo.BumpSaleAndDownload(ctx, tx, g.ID); err != nil {
				return fmt.Errorf("bump game stats: %w", err)
			}
		}

		if _, err := s.cartRepo.DeleteByUserAndGames(ctx, tx, user.ID, gameIDs); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SendPurchaseConfirmation(ctx, user.Email, user.Name, orderNumber, games, order.Total)

	s.logger.Info().
		Str("order_number", orderNumber).
		Uint("user_id", user.ID).
		Int("games", len(games)).
		Str("payment_method", paymentMethod).
		Msg("order fulfilled")

	return order, nil
}

func (s *commerceServiceImpl) orderResponse(ctx context.Context, order *model.Order) (*dto.OrderResponse, error) {
	lines, err := s.orderRepo.LinesByOrders(ctx, []uint{order.ID})
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}

	gameIDs := make([]uint, len(lines))
	for i, line := range lines {
		gameIDs[i] = line.GameID
	}

	gamesByID, err := s.gamesByID(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	lineResponses := make([]*dto.OrderLineResponse, len(lines))
	for i, line := range lines {
		resp := &dto.OrderLineResponse{
			ID:     line.ID,
			GameID: line.GameID,
			Price:  line.Price,
		}
		if g, ok := gamesByID[line.GameID]; ok {
			resp.Game = dto.NewGameSummary(g)
		}
		lineResponses[i] = resp
	}

	return dto.NewOrderResponse(order, lineResponses), nil
}

func generateOrderNumber() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("PX-%X", b), nil
}
