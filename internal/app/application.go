// Package app wires the lifecycle services to their persistence gateways and
// manages component lifecycle. The persistence handle is injected here; the
// services hold no ambient state.
package app

import (
	"context"
	"fmt"

	"github.com/microblog/service_layer/internal/app/services/accounts"
	"github.com/microblog/service_layer/internal/app/services/messages"
	"github.com/microblog/service_layer/internal/app/storage"
	"github.com/microblog/service_layer/internal/app/storage/memory"
	"github.com/microblog/service_layer/internal/app/system"
	"github.com/microblog/service_layer/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Accounts storage.AccountStore
	Messages storage.MessageStore
}

// Application ties the lifecycle services together.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Accounts *accounts.Service
	Messages *messages.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Accounts == nil {
		stores.Accounts = mem
	}
	if stores.Messages == nil {
		stores.Messages = mem
	}

	manager := system.NewManager()

	acctService := accounts.New(stores.Accounts, log)
	msgService := messages.New(acctService, stores.Messages, log)

	for _, name := range []string{"accounts", "messages"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:  manager,
		log:      log,
		Accounts: acctService,
		Messages: msgService,
	}, nil
}

// Start starts all managed components.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all managed components in reverse order.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
