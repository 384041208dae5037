// Package models defines the core domain models for fridgeshare.
//
// # Persisted Models
//
//   - User: a registered person, optionally pointing at an active fridge
//   - Fridge: a household whose members share groceries
//   - Purchase: a fridge item bought by one member and shared by some or all members
//   - Settlement: an append-only record that one member paid another
//
// # Derived Values
//
// Pairwise contributions, net balances and suggested transactions are never
// stored. They are rebuilt from purchases and settlements on every request by
// the calculator package.
//
// # Design Principles
//
//  1. Relationships are ID strings, not pointers
//  2. Timestamps are time.Time in UTC; stores decide their column encoding
//  3. Settlements are never updated or deleted once written
package models
