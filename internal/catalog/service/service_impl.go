package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req catalogdomain.CreateRequest) (catalogdomain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidPrice
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	product := catalogdomain.Product{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Active:      active,
		Metadata:    toJSONMap(req.Metadata),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return catalogdomain.Product{}, err
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, req catalogdomain.ListRequest) ([]catalogdomain.Product, error) {
	query := s.db.WithContext(ctx).Model(&catalogdomain.Product{})
	if name := strings.TrimSpace(req.Name); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if req.Active != nil {
		query = query.Where("active = ?", *req.Active)
	}

	var products []catalogdomain.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidID
	}
	return s.loadProduct(ctx, productID)
}

func (s *Service) Update(ctx context.Context, req catalogdomain.UpdateRequest) (catalogdomain.Product, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidID
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return catalogdomain.Product{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return catalogdomain.Product{}, catalogdomain.ErrInvalidName
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return catalogdomain.Product{}, catalogdomain.ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.Metadata != nil {
		product.Metadata = toJSONMap(req.Metadata)
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return catalogdomain.Product{}, err
	}
	return product, nil
}

func (s *Service) Archive(ctx context.Context, id string) (catalogdomain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return catalogdomain.Product{}, catalogdomain.ErrInvalidID
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return catalogdomain.Product{}, err
	}

	product.Active = false
	product.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return catalogdomain.Product{}, err
	}
	return product, nil
}

func (s *Service) Resolve(ctx context.Context, productID string) (catalogdomain.Snapshot, error) {
	id, err := parseID(productID)
	if err != nil {
		return catalogdomain.Snapshot{}, catalogdomain.ErrProductNotFound
	}

	var product catalogdomain.Product
	err = s.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalogdomain.Snapshot{}, catalogdomain.ErrProductNotFound
		}
		s.log.Warn("catalog resolve failed", zap.String("product_id", productID), zap.Error(err))
		return catalogdomain.Snapshot{}, catalogdomain.ErrCatalogUnavailable
	}

	return catalogdomain.Snapshot{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
	}, nil
}

func (s *Service) loadProduct(ctx context.Context, id snowflake.ID) (catalogdomain.Product, error) {
	var product catalogdomain.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalogdomain.Product{}, catalogdomain.ErrProductNotFound
		}
		return catalogdomain.Product{}, err
	}
	return product, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func toJSONMap(input map[string]any) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for key, value := range input {
		out[key] = value
	}
	return out
}
