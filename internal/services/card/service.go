package card

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aurapay/internal/models"
	"aurapay/internal/providers"
	"aurapay/internal/repositories"
	"aurapay/internal/repositories/cache"

	"go.uber.org/zap"
)

type service struct {
	cards    repositories.CardRepository
	registry *providers.Registry
	store    cache.Store
	logger   *zap.Logger
}

// NewService wires the card service over the provider registry, the local
// mirror and the read cache.
func NewService(
	cards repositories.CardRepository,
	registry *providers.Registry,
	store cache.Store,
	logger *zap.Logger,
) Service {
	return &service{cards: cards, registry: registry, store: store, logger: logger}
}

func (s *service) CreateCard(ctx context.Context, user *models.User, in CreateCardInput) (*CardView, error) {
	provider, err := s.registry.Card(in.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}
	formFactor := providers.FormFactor(in.FormFactor)
	if formFactor != providers.FormFactorVirtual && formFactor != providers.FormFactorPhysical {
		return nil, ErrInvalidFormFactor
	}

	holder, err := s.ensureCardholder(ctx, user, provider, in)
	if err != nil {
		return nil, err
	}

	created, err := provider.CreateCard(ctx, providers.CardInput{
		CardholderID:          holder.ProviderID,
		FormFactor:            formFactor,
		Currency:              strings.ToUpper(in.Currency),
		SpendingLimit:         in.SpendingLimit,
		SpendingLimitInterval: in.SpendingLimitInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("issuing card: %w", err)
	}

	mirror := &models.Card{
		UserID:       user.ID,
		Provider:     provider.Name(),
		ProviderID:   created.ID,
		CardholderID: holder.ProviderID,
		FormFactor:   string(created.FormFactor),
		LastFour:     created.LastFour,
		ExpiryMonth:  created.ExpiryMonth,
		ExpiryYear:   created.ExpiryYear,
		Brand:        created.Brand,
		Currency:     created.Currency,
		Status:       string(created.Status),
	}
	if err := s.cards.CreateCard(mirror); err != nil {
		return nil, fmt.Errorf("recording card: %w", err)
	}

	if err := s.store.Invalidate(ctx, cache.CardListKey(provider.Name(), holder.ProviderID)); err != nil {
		s.logger.Warn("card list invalidation failed", zap.Error(err))
	}

	s.logger.Info("card issued",
		zap.String("provider", provider.Name()),
		zap.String("card_id", created.ID),
		zap.Uint("user_id", user.ID),
		zap.String("form_factor", string(created.FormFactor)))

	view := viewFrom(provider.Name(), created)
	attachSensitive(view, created)
	return view, nil
}

// ensureCardholder returns this user's cardholder at the provider, creating it
// on first use. The composite unique index on (user, provider) backstops a
// concurrent double create.
func (s *service) ensureCardholder(ctx context.Context, user *models.User, provider providers.CardProvider, in CreateCardInput) (*models.Cardholder, error) {
	key := cache.CardholderKey(provider.Name(), user.ID)
	var cached models.Cardholder
	if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	holder, err := s.cards.GetCardholder(user.ID, provider.Name())
	if err == nil {
		s.memoCardholder(ctx, key, holder)
		return holder, nil
	}
	if !errors.Is(err, repositories.ErrCardholderNotFound) {
		return nil, err
	}

	created, err := provider.CreateCardholder(ctx, providers.CardholderInput{
		Name:  in.HolderName,
		Email: user.Email,
		Phone: in.HolderPhone,
		Address: providers.Address{
			Line1:      in.AddressLine,
			City:       in.City,
			State:      in.State,
			PostalCode: in.PostalCode,
			Country:    in.Country,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating cardholder: %w", err)
	}

	holder = &models.Cardholder{
		UserID:     user.ID,
		Provider:   provider.Name(),
		ProviderID: created.ID,
	}
	if err := s.cards.CreateCardholder(holder); err != nil {
		return nil, fmt.Errorf("recording cardholder: %w", err)
	}
	s.memoCardholder(ctx, key, holder)
	return holder, nil
}

func (s *service) memoCardholder(ctx context.Context, key string, holder *models.Cardholder) {
	if err := s.store.Set(ctx, key, holder, cache.CardholderTTL); err != nil {
		s.logger.Warn("cardholder cache write failed", zap.Error(err))
	}
}

// ListCards returns every card of the user with provider-fresh statuses.
// The refreshed snapshot is memoized per provider so repeated listings inside
// the TTL cost no provider calls.
func (s *service) ListCards(ctx context.Context, userID uint) ([]CardView, error) {
	mirror, err := s.cards.GetCardsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}

	byProvider := map[string][]models.Card{}
	for _, c := range mirror {
		byProvider[c.Provider] = append(byProvider[c.Provider], c)
	}

	views := make([]CardView, 0, len(mirror))
	for name, group := range byProvider {
		key := cache.CardListKey(name, group[0].CardholderID)

		var cached []CardView
		found, err := s.store.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("card list cache read failed", zap.Error(err))
		}
		if found {
			views = append(views, cached...)
			continue
		}

		refreshed := s.refreshGroup(ctx, name, group)
		if err := s.store.Set(ctx, key, refreshed, cache.CardListTTL); err != nil {
			s.logger.Warn("card list cache write failed", zap.Error(err))
		}
		views = append(views, refreshed...)
	}
	return views, nil
}

// refreshGroup pulls current provider state for one provider's cards, falling
// back to the mirror row when an individual lookup fails.
func (s *service) refreshGroup(ctx context.Context, name string, group []models.Card) []CardView {
	provider, err := s.registry.Card(name)
	if err != nil {
		provider = nil
	}

	refreshed := make([]CardView, 0, len(group))
	for _, c := range group {
		if provider != nil {
			fresh, err := provider.GetCard(ctx, c.ProviderID)
			if err == nil {
				s.syncMirror(&c, fresh)
				refreshed = append(refreshed, *viewFrom(name, fresh))
				continue
			}
			s.logger.Warn("card refresh failed",
				zap.String("card_id", c.ProviderID), zap.Error(err))
		}
		refreshed = append(refreshed, *mirrorView(&c))
	}
	return refreshed
}

func (s *service) GetCard(ctx context.Context, userID uint, cardID string) (*CardView, error) {
	mirror, err := s.ownedCard(userID, cardID)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Card(mirror.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}

	fresh, err := provider.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("fetching card: %w", err)
	}
	s.syncMirror(mirror, fresh)
	return viewFrom(mirror.Provider, fresh), nil
}

func (s *service) GetCardDetails(ctx context.Context, userID uint, cardID string) (*CardView, error) {
	mirror, err := s.ownedCard(userID, cardID)
	if err != nil {
		return nil, err
	}
	if mirror.FormFactor != models.CardFormFactorVirtual {
		return nil, ErrNotVirtual
	}
	provider, err := s.registry.Card(mirror.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}

	fresh, err := provider.GetCardDetails(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("fetching card details: %w", err)
	}

	s.logger.Info("card details accessed",
		zap.String("card_id", cardID), zap.Uint("user_id", userID))

	view := viewFrom(mirror.Provider, fresh)
	attachSensitive(view, fresh)
	return view, nil
}

func (s *service) UpdateStatus(ctx context.Context, userID uint, cardID, status string) (*CardView, error) {
	target := providers.CardStatus(status)
	switch target {
	case providers.CardStatusActive, providers.CardStatusSuspended, providers.CardStatusCanceled:
	default:
		return nil, ErrInvalidStatus
	}

	mirror, err := s.ownedCard(userID, cardID)
	if err != nil {
		return nil, err
	}
	// Canceled is terminal. Enforced here so the answer is the same whatever
	// the provider would say.
	if mirror.IsTerminal() {
		return nil, ErrCardTerminal
	}
	provider, err := s.registry.Card(mirror.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}

	updated, err := provider.UpdateCardStatus(ctx, cardID, target)
	if err != nil {
		return nil, fmt.Errorf("updating card status: %w", err)
	}
	s.syncMirror(mirror, updated)

	if err := s.store.Invalidate(ctx, cache.CardKeyPattern(cardID)); err != nil {
		s.logger.Warn("card cache invalidation failed", zap.Error(err))
	}
	if err := s.store.Invalidate(ctx, cache.CardListKey(mirror.Provider, mirror.CardholderID)); err != nil {
		s.logger.Warn("card list invalidation failed", zap.Error(err))
	}

	s.logger.Info("card status updated",
		zap.String("card_id", cardID),
		zap.String("status", string(updated.Status)))
	return viewFrom(mirror.Provider, updated), nil
}

func (s *service) ListTransactions(ctx context.Context, userID uint, cardID string, opts providers.ListOptions) (*providers.TransactionPage, error) {
	mirror, err := s.ownedCard(userID, cardID)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Card(mirror.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}

	// Only cursor-plain listings are memoized; date-filtered queries go
	// straight to the provider.
	cacheable := opts.From.IsZero() && opts.To.IsZero()
	key := cache.CardTransactionsKey(mirror.Provider, cardID, opts.Cursor)
	if cacheable {
		var cached providers.TransactionPage
		found, err := s.store.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("transactions cache read failed", zap.Error(err))
		}
		if found {
			return &cached, nil
		}
	}

	page, err := provider.ListTransactions(ctx, cardID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing card transactions: %w", err)
	}
	if cacheable {
		if err := s.store.Set(ctx, key, page, cache.TransactionsTTL); err != nil {
			s.logger.Warn("transactions cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

// ownedCard loads the mirror row and enforces ownership.
func (s *service) ownedCard(userID uint, cardID string) (*models.Card, error) {
	mirror, err := s.cards.GetCardByProviderID(cardID)
	if err != nil {
		if errors.Is(err, repositories.ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	if mirror.UserID != userID {
		return nil, ErrNotCardOwner
	}
	return mirror, nil
}

// syncMirror folds provider-reported state back into the local row.
func (s *service) syncMirror(mirror *models.Card, fresh *providers.Card) {
	if string(fresh.Status) == mirror.Status && fresh.LastFour == mirror.LastFour {
		return
	}
	mirror.Status = string(fresh.Status)
	if fresh.LastFour != "" {
		mirror.LastFour = fresh.LastFour
	}
	if err := s.cards.UpdateCard(mirror); err != nil {
		s.logger.Warn("mirror update failed",
			zap.String("card_id", mirror.ProviderID), zap.Error(err))
	}
}

func viewFrom(provider string, c *providers.Card) *CardView {
	return &CardView{
		ID:          c.ID,
		Provider:    provider,
		FormFactor:  string(c.FormFactor),
		Status:      string(c.Status),
		LastFour:    c.LastFour,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		Brand:       c.Brand,
		Currency:    c.Currency,
	}
}

// mirrorView builds a view from the local row alone, used when the provider
// cannot answer for an individual card. Status may be stale by up to one
// refresh interval.
func mirrorView(c *models.Card) *CardView {
	return &CardView{
		ID:          c.ProviderID,
		Provider:    c.Provider,
		FormFactor:  c.FormFactor,
		Status:      c.Status,
		LastFour:    c.LastFour,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		Brand:       c.Brand,
		Currency:    c.Currency,
	}
}

// attachSensitive copies the PAN and CVV onto the outgoing view. The view is
// built per request and never written to the cache or the database.
func attachSensitive(view *CardView, c *providers.Card) {
	if c.Sensitive == nil {
		return
	}
	view.Number = c.Sensitive.Number
	view.CVV = c.Sensitive.CVV
}
