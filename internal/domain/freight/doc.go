// Package freight contains the Freight Rates bounded context.
// This context models sea-freight rate searches and the canonical Rate shape
// every rate provider is normalized into.
//
// Key concepts:
//   - Query: the immutable search context (ports, requested products, departure window)
//   - ContainerType: domain container names with their provider ISO-like codes
//   - PricingMode: flat (per bill of lading) or per-unit charge classification
//   - Rate: canonical rate record (sections -> offers -> fields -> values)
//   - RateProvider: port interface implemented by provider adapters (CargoFive)
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package freight
