// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel for child rows and TenantAggregateModel for aggregate roots
// - party.go: customers and suppliers
// - realty.go: property units
// - contract.go: contracts, installments and installment payments
// - treasury.go: safes, receipt/payment vouchers and document sequences
// - equity.go: partners, partners groups and share ledger entries
// - settlement.go: settlements and settlement runs
// - project.go, inventory.go: cost objects, items and stock moves
// - notification.go: user notifications and their settings
package models
