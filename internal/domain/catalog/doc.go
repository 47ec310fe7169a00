// Package catalog contains the Catalog bounded context of the adapter hub.
// It models the canonical product shape shared by locally owned inventory and
// records imported from partner providers.
//
// Key concepts:
//   - Product: canonical sellable item, either internal or owned by a provider
//   - Attribute / Content: provider-tagged child records of a product
//   - Category: flat product classification
//   - ProductRepository: port for the local inventory store
//
// Ownership rule: a product is internal iff its Provider is blank and its
// OriginID is NoOrigin. (OriginID, Provider) is the natural key used when
// reconciling partner catalogs into the local store.
package catalog
