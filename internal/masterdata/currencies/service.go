package currencies

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/currency"

	"github.com/meridian-erp/meridian/internal/shared"
)

// ErrUnknownCode is returned for codes outside ISO 4217.
var ErrUnknownCode = errors.New("unknown currency code")

const rateCacheTTL = 5 * time.Minute

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages company currencies. Latest-rate lookups are hot on every
// invoice form, so they go through redis with singleflight collapsing
// concurrent misses.
type Service struct {
	repo  Repository
	rdb   *redis.Client
	audit AuditPort
	group singleflight.Group
	now   func() time.Time
}

func NewService(repo Repository, rdb *redis.Client, audit AuditPort) *Service {
	return &Service{repo: repo, rdb: rdb, audit: audit, now: time.Now}
}

func (s *Service) List(ctx context.Context, scope shared.Scope) ([]Currency, error) {
	return s.repo.List(ctx, scope.CompanyID)
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Currency, error) {
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, req CreateCurrencyRequest) (*Currency, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	code := strings.ToUpper(req.Code)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", code, ErrUnknownCode)
	}

	places, _ := currency.Standard.Rounding(unit)
	if req.DecimalPlaces != nil {
		places = *req.DecimalPlaces
	}
	id, err := s.repo.Create(ctx, Currency{
		CompanyID:     scope.CompanyID,
		Code:          unit.String(),
		Name:          req.Name,
		Symbol:        req.Symbol,
		DecimalPlaces: places,
		CreatedBy:     scope.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, scope, "currency.create", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, req UpdateCurrencyRequest) (*Currency, error) {
	if !scope.Valid() {
		return nil, shared.ErrScopeMissing
	}
	updates := map[string]any{"updated_by": scope.UserID}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Symbol != nil {
		updates["symbol"] = *req.Symbol
	}
	if req.DecimalPlaces != nil {
		updates["decimal_places"] = *req.DecimalPlaces
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.repo.Update(ctx, scope.CompanyID, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, scope, "currency.update", id)
	return s.repo.Get(ctx, scope.CompanyID, id)
}

func (s *Service) Delete(ctx context.Context, scope shared.Scope, id int64) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if err := s.repo.SoftDelete(ctx, scope.CompanyID, id, scope.UserID); err != nil {
		return err
	}
	s.record(ctx, scope, "currency.delete", id)
	return nil
}

// SetRate records a rate and drops the cached value.
func (s *Service) SetRate(ctx context.Context, scope shared.Scope, id int64, req SetRateRequest) error {
	if !scope.Valid() {
		return shared.ErrScopeMissing
	}
	if _, err := s.repo.Get(ctx, scope.CompanyID, id); err != nil {
		return err
	}
	if err := s.repo.SetRate(ctx, id, decimal.NewFromFloat(req.Rate), req.AsOf); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, rateKey(id)).Err(); err != nil {
		return err
	}
	s.record(ctx, scope, "currency.rate", id)
	return nil
}

// LatestRate returns the most recent rate for the currency.
func (s *Service) LatestRate(ctx context.Context, scope shared.Scope, id int64) (decimal.Decimal, error) {
	if _, err := s.repo.Get(ctx, scope.CompanyID, id); err != nil {
		return decimal.Zero, err
	}

	key := rateKey(id)
	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		if d, err := decimal.NewFromString(cached); err == nil {
			return d, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return decimal.Zero, err
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		rate, err := s.repo.LatestRate(ctx, id)
		if err != nil {
			return nil, err
		}
		_ = s.rdb.Set(ctx, key, rate.Rate.String(), rateCacheTTL).Err()
		return rate.Rate, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}

func rateKey(currencyID int64) string {
	return "currency:rate:" + strconv.FormatInt(currencyID, 10)
}

func (s *Service) record(ctx context.Context, scope shared.Scope, action shared.Action, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  scope.UserID,
		Action:   action,
		Entity:   "currency",
		EntityID: fmt.Sprintf("%d", id),
		At:       s.now(),
	})
}
