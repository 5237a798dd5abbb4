package usecase

import (
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
)

// UseCases is the produced-capability surface of the memory core. API
// handlers, agents and the CLI reach the three components only through
// these methods, usually across a worker boundary.
type UseCases struct {
	router  interfaces.StorageRouter
	events  interfaces.EventStore
	index   interfaces.VectorIndex
	factory interfaces.EmbedderFactory
}

// New wires the use case surface
func New(router interfaces.StorageRouter, events interfaces.EventStore, index interfaces.VectorIndex, factory interfaces.EmbedderFactory) *UseCases {
	return &UseCases{
		router:  router,
		events:  events,
		index:   index,
		factory: factory,
	}
}
