// Package provider wires repositories, services and gateways into a
// single dependency container shared by the HTTP server and the worker.
package provider

import (
	"time"

	"github.com/swadeshika/storefront/internal/authz"
	"github.com/swadeshika/storefront/internal/cache"
	"github.com/swadeshika/storefront/internal/config"
	"github.com/swadeshika/storefront/internal/logger"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/payment"
	"github.com/swadeshika/storefront/internal/payment/cod"
	"github.com/swadeshika/storefront/internal/payment/razorpay"
	"github.com/swadeshika/storefront/internal/queue"
	"github.com/swadeshika/storefront/internal/repository"
	"github.com/swadeshika/storefront/internal/service"
)

// Container holds every long-lived dependency of the application.
type Container struct {
	Config *config.Config

	QueueClient *queue.Client

	UserRepo        repository.UserRepository
	AddressRepo     repository.AddressRepository
	CategoryRepo    repository.CategoryRepository
	ProductRepo     repository.ProductRepository
	VariantRepo     repository.ProductVariantRepository
	CartRepo        repository.CartRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	OrderRepo       repository.OrderRepository
	PaymentRepo     repository.PaymentRepository
	SettingRepo     repository.SettingRepository

	AuthzService       *authz.Service
	AuthService        *service.AuthService
	EmailService       *service.EmailService
	CaptchaService     *service.CaptchaService
	SettingService     *service.SettingService
	ProductService     *service.ProductService
	CartService        *service.CartService
	AddressService     *service.AddressService
	CouponService      *service.CouponService
	CouponAdminService *service.CouponAdminService
	OrderService       *service.OrderService
	PaymentService     *service.PaymentService

	GatewayRegistry *payment.Registry
	RazorpayGateway *razorpay.Gateway
}

// NewContainer builds the container from loaded config. The database
// must already be initialized via models.InitDB.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := cache.InitRedis(&cfg.Redis); err != nil {
		return nil, err
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		return nil, err
	}
	c.QueueClient = queueClient

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewProductVariantRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return err
	}
	c.AuthzService = authzService

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.SettingService = service.NewSettingService(c.SettingRepo, c.Config)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.VariantRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo)

	c.GatewayRegistry = c.buildGatewayRegistry()

	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.VariantRepo,
		c.CouponRepo,
		c.CouponUsageRepo,
		c.CartRepo,
		c.PaymentRepo,
		c.AddressService,
		c.CouponService,
		c.SettingService,
		c.GatewayRegistry,
		c.QueueClient,
	)
	c.PaymentService = service.NewPaymentService(
		c.OrderRepo,
		c.PaymentRepo,
		c.CartRepo,
		c.GatewayRegistry,
		c.OrderService,
		c.RazorpayGateway,
	)
	return nil
}

// buildGatewayRegistry registers COD unconditionally and Razorpay only
// when credentials are present. A misconfigured Razorpay block disables
// the gateway instead of failing startup.
func (c *Container) buildGatewayRegistry() *payment.Registry {
	gateways := []payment.Gateway{cod.New()}
	if c.Config.Razorpay.KeyID != "" {
		gw, err := razorpay.New(razorpay.Config{
			KeyID:         c.Config.Razorpay.KeyID,
			KeySecret:     c.Config.Razorpay.KeySecret,
			WebhookSecret: c.Config.Razorpay.WebhookSecret,
			BaseURL:       c.Config.Razorpay.BaseURL,
			Timeout:       time.Duration(c.Config.Razorpay.TimeoutMS) * time.Millisecond,
		})
		if err != nil {
			logger.Warnw("razorpay gateway disabled", "error", err)
		} else {
			c.RazorpayGateway = gw
			gateways = append(gateways, gw)
		}
	}
	return payment.NewRegistry(gateways...)
}

// Close releases the container's external connections.
func (c *Container) Close() error {
	if c.QueueClient != nil {
		return c.QueueClient.Close()
	}
	return nil
}
