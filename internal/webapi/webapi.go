// Package webapi exposes the user-facing HTTP surface: auth, product CRUD,
// upload ingestion, pipeline stage runs, image generation, and credit
// purchase.
package webapi

import (
	"time"

	"github.com/launchpadhq/launchpad/internal/app"
	"github.com/launchpadhq/launchpad/internal/billing"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/ingest"
	"github.com/launchpadhq/launchpad/internal/ledger"
	"github.com/launchpadhq/launchpad/internal/pipeline"
	"github.com/launchpadhq/launchpad/internal/store"
	"github.com/launchpadhq/launchpad/internal/webserver"
	"github.com/launchpadhq/launchpad/pkg/common"
	"go.uber.org/zap"
)

// Handlers bundles the services the user-facing routes need.
type Handlers struct {
	appCtx       app.AppContext
	users        store.UserRepository
	products     store.ProductRepository
	ledger       *ledger.CreditLedger
	orchestrator *pipeline.Orchestrator
	ingestor     *ingest.Ingestor
	billing      *billing.Service
}

func NewHandlers(
	appCtx app.AppContext,
	users store.UserRepository,
	products store.ProductRepository,
	creditLedger *ledger.CreditLedger,
	orchestrator *pipeline.Orchestrator,
	ingestor *ingest.Ingestor,
	billingService *billing.Service,
) *Handlers {
	return &Handlers{
		appCtx:       appCtx,
		users:        users,
		products:     products,
		ledger:       creditLedger,
		orchestrator: orchestrator,
		ingestor:     ingestor,
		billing:      billingService,
	}
}

// Register wires every user-facing route.
func (h *Handlers) Register() {
	// Public
	webserver.PubPOST("/auth/register", h.register)
	webserver.PubPOST("/auth/login", h.login)
	webserver.PubPOST("/auth/logout", h.logout)
	webserver.PubPOST("/webhooks/stripe", h.stripeWebhook)

	// Authenticated
	webserver.ApiPOST("/upload", h.upload)
	webserver.ApiGET("/products", h.listProducts)
	webserver.ApiGET("/products/:id", h.getProduct)
	webserver.ApiPUT("/products/:id", h.renameProduct)
	webserver.ApiDELETE("/products/:id", h.deleteProduct)
	webserver.ApiPOST("/pipeline/:stage", h.runStage)
	webserver.ApiPOST("/pipeline/:stage/confirm", h.confirmStage)
	webserver.ApiPOST("/images/generate", h.generateImage)
	webserver.ApiPOST("/images/optimize-prompt", h.optimizeImagePrompt)
	webserver.ApiGET("/credits", h.getCredits)
	webserver.ApiPOST("/credits/purchase", h.purchaseCredits)
}

// writeUserLog records an audit row; failures are logged and ignored.
func (h *Handlers) writeUserLog(username, ip, action, desc string) {
	log := &domain.SysUserLog{
		ID:        common.UUIDint64(),
		Username:  username,
		UserIp:    ip,
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
	if err := h.appCtx.DB().Create(log).Error; err != nil {
		zap.L().Warn("audit log write failed", zap.Error(err))
	}
}
