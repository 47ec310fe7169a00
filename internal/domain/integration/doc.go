// Package integration contains the Integration bounded context of the hub.
// It defines the ports used to reach partner providers and the value objects
// exchanged with the order dispatcher.
//
// Key concepts:
//   - ProviderAdapter: port implemented once per partner provider
//   - AdapterRegistry: resolves a provider name to its adapter
//   - CatalogSource: anything that can produce a full catalog snapshot
//   - OrderLine / LineOutcome / SaleResult: sale and checkout value objects
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
