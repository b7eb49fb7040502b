package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
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

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateRequest) (customerdomain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return customerdomain.Customer{}, customerdomain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if !validEmail(email) {
		return customerdomain.Customer{}, customerdomain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	customer := customerdomain.Customer{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		MobileNumber: req.MobileNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, req customerdomain.ListRequest) ([]customerdomain.Customer, error) {
	query := s.db.WithContext(ctx).Model(&customerdomain.Customer{})
	if name := strings.TrimSpace(req.Name); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		query = query.Where("email = ?", email)
	}

	var customers []customerdomain.Customer
	if err := query.Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Service) Get(ctx context.Context, id string) (customerdomain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return customerdomain.Customer{}, customerdomain.ErrInvalidID
	}
	return s.loadCustomer(ctx, customerID)
}

func (s *Service) Update(ctx context.Context, req customerdomain.UpdateRequest) (customerdomain.Customer, error) {
	customerID, err := parseID(req.ID)
	if err != nil {
		return customerdomain.Customer{}, customerdomain.ErrInvalidID
	}

	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return customerdomain.Customer{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return customerdomain.Customer{}, customerdomain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !validEmail(email) {
			return customerdomain.Customer{}, customerdomain.ErrInvalidEmail
		}
		customer.Email = email
	}
	if req.MobileNumber != nil {
		customer.MobileNumber = req.MobileNumber
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&customer).Error; err != nil {
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return customerdomain.ErrInvalidID
	}

	result := s.db.WithContext(ctx).Where("id = ?", customerID).Delete(&customerdomain.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return customerdomain.ErrCustomerNotFound
	}
	return nil
}

func (s *Service) loadCustomer(ctx context.Context, id snowflake.ID) (customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerdomain.Customer{}, customerdomain.ErrCustomerNotFound
		}
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}
