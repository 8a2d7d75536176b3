package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zenithhr/expensio/internal/policy/domain"
	pkgdb "github.com/zenithhr/expensio/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Claims domain.ClaimCounter
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	claims domain.ClaimCounter
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("policy.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		claims: p.Claims,
	}
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (domain.ExpenseCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ExpenseCategory{}, domain.ErrInvalidName
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.ExpenseCategory{}, domain.ErrInvalidCode
	}

	levels := req.ApprovalLevels
	if levels == 0 {
		levels = 1
	}
	if levels < 1 {
		return domain.ExpenseCategory{}, domain.ErrInvalidLevels
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	now := time.Now().UTC()
	category := domain.ExpenseCategory{
		ID:               s.genID.Generate(),
		Name:             name,
		Code:             code,
		Currency:         currency,
		MaxAmount:        req.MaxAmount,
		RequiresReceipt:  req.RequiresReceipt,
		RequiresApproval: req.RequiresApproval,
		ApprovalLevels:   levels,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.InsertCategory(ctx, s.db, &category); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.ExpenseCategory{}, domain.ErrDuplicateCode
		}
		return domain.ExpenseCategory{}, err
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	return s.repo.ListCategories(ctx, s.db)
}

func (s *Service) CreateRule(ctx context.Context, req domain.CreateRuleRequest) (domain.PolicyRule, error) {
	categoryID, err := s.parseID(req.CategoryID)
	if err != nil {
		return domain.PolicyRule{}, err
	}

	category, err := s.repo.FindCategoryByID(ctx, s.db, categoryID)
	if err != nil {
		return domain.PolicyRule{}, err
	}
	if category == nil {
		return domain.PolicyRule{}, domain.ErrCategoryNotFound
	}

	// Decoding validates both the type discriminator and the payload shape.
	cfg, err := domain.DecodeRuleConfig(req.RuleType, datatypes.JSON(req.RuleValue))
	if err != nil {
		return domain.PolicyRule{}, err
	}
	value, err := domain.EncodeRuleConfig(cfg)
	if err != nil {
		return domain.PolicyRule{}, err
	}

	now := time.Now().UTC()
	rule := domain.PolicyRule{
		ID:         s.genID.Generate(),
		CategoryID: categoryID,
		RuleType:   req.RuleType,
		RuleValue:  value,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.InsertRule(ctx, s.db, &rule); err != nil {
		return domain.PolicyRule{}, err
	}
	return rule, nil
}

func (s *Service) ListRules(ctx context.Context, categoryID string) ([]domain.PolicyRule, error) {
	id, err := s.parseID(categoryID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRules(ctx, s.db, id)
}

func (s *Service) UpdateRule(ctx context.Context, req domain.UpdateRuleRequest) (domain.PolicyRule, error) {
	id, err := s.parseID(req.RuleID)
	if err != nil {
		return domain.PolicyRule{}, err
	}

	rule, err := s.repo.FindRuleByID(ctx, s.db, id)
	if err != nil {
		return domain.PolicyRule{}, err
	}
	if rule == nil {
		return domain.PolicyRule{}, domain.ErrRuleNotFound
	}

	if len(req.RuleValue) > 0 {
		cfg, err := domain.DecodeRuleConfig(rule.RuleType, datatypes.JSON(req.RuleValue))
		if err != nil {
			return domain.PolicyRule{}, err
		}
		value, err := domain.EncodeRuleConfig(cfg)
		if err != nil {
			return domain.PolicyRule{}, err
		}
		rule.RuleValue = value
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRule(ctx, s.db, rule); err != nil {
		return domain.PolicyRule{}, err
	}
	return *rule, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
