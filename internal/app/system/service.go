package system

import "context"

// Service represents a lifecycle-managed component. All application modules
// must implement this interface so the system manager can start and stop them
// deterministically.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// NoopService satisfies Service for components with no startup work.
type NoopService struct {
	ServiceName string
}

func (n NoopService) Name() string                    { return n.ServiceName }
func (n NoopService) Start(ctx context.Context) error { return nil }
func (n NoopService) Stop(ctx context.Context) error  { return nil }
